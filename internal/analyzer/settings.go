package analyzer

import (
	"errors"
	"fmt"
)

// Settings is the caller-supplied parameter snapshot for one invocation.
// All fields are required; defaults belong to the caller (see internal/config).
type Settings struct {
	GridSize             int     `yaml:"grid_size"`
	MinRegionSize        int     `yaml:"min_region_size"`
	MaxRegionSize        int     `yaml:"max_region_size"`
	ColorThreshold       float64 `yaml:"color_threshold"`
	SizeRatioThreshold   float64 `yaml:"size_ratio_threshold"`
	AspectRatioThreshold float64 `yaml:"aspect_ratio_threshold"`
	TextureThreshold     float64 `yaml:"texture_threshold"`
}

// ErrInvalidSettings wraps every Settings validation failure
var ErrInvalidSettings = errors.New("invalid settings")

// Validate rejects settings the core cannot run with
func (s Settings) Validate() error {
	switch {
	case s.GridSize <= 0:
		return fmt.Errorf("%w: grid_size must be positive, got %d", ErrInvalidSettings, s.GridSize)
	case s.MinRegionSize <= 0:
		return fmt.Errorf("%w: min_region_size must be positive, got %d", ErrInvalidSettings, s.MinRegionSize)
	case s.MaxRegionSize < s.MinRegionSize:
		return fmt.Errorf("%w: max_region_size %d is below min_region_size %d", ErrInvalidSettings, s.MaxRegionSize, s.MinRegionSize)
	case s.ColorThreshold <= 0:
		return fmt.Errorf("%w: color_threshold must be positive, got %.2f", ErrInvalidSettings, s.ColorThreshold)
	case s.SizeRatioThreshold < 0, s.AspectRatioThreshold < 0, s.TextureThreshold < 0:
		return fmt.Errorf("%w: ratio and texture thresholds must not be negative", ErrInvalidSettings)
	}
	return nil
}

// scanStride is the seed grid spacing used by the scanner
func (s Settings) scanStride() int {
	if s.GridSize > MinScanStride {
		return s.GridSize
	}
	return MinScanStride
}

// growTolerance is the per-pixel color distance accepted by the grower
func (s Settings) growTolerance() float64 {
	return s.ColorThreshold * GrowThresholdFactor
}

// ShapeFilter is the plausibility prior applied to every grown region.
// The defaults describe elongated objects standing upright (socks).
type ShapeFilter struct {
	MinAspect float64 `yaml:"min_aspect"` // height/width, inclusive
	MaxAspect float64 `yaml:"max_aspect"` // height/width, inclusive
	MinHeight int     `yaml:"min_height"`
	MinWidth  int     `yaml:"min_width"`
}

// DefaultShapeFilter returns the shape prior tuned for upright socks
func DefaultShapeFilter() ShapeFilter {
	return ShapeFilter{
		MinAspect: 1.5,
		MaxAspect: 4.0,
		MinHeight: 100,
		MinWidth:  50,
	}
}

// Accept reports whether r passes the shape prior
func (sf ShapeFilter) Accept(r *Region) bool {
	aspect := float64(r.Height) / float64(r.Width)
	return aspect >= sf.MinAspect && aspect <= sf.MaxAspect &&
		r.Height >= sf.MinHeight &&
		r.Width >= sf.MinWidth
}
