package analyzer

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Scanner strides over a frame, grows a region from every eligible seed and
// keeps the regions that pass the shape prior.
type Scanner struct {
	Settings Settings
	Shape    ShapeFilter

	// SurfaceColors, when set, also rejects seeds that match the sampled
	// background surface (see SampleSurface). Empty by default.
	SurfaceColors []Color

	Log zerolog.Logger
}

// NewScanner creates a scanner with the default shape prior and no surface
func NewScanner(s Settings) *Scanner {
	return &Scanner{
		Settings: s,
		Shape:    DefaultShapeFilter(),
		Log:      zerolog.Nop(),
	}
}

// FindColorRegions scans f with the default shape prior and returns the
// accepted regions in discovery order. Texture summaries are not computed.
func FindColorRegions(f *Frame, s Settings) ([]*Region, error) {
	return NewScanner(s).Scan(f)
}

// Scan runs one scan over f. Every call owns a fresh visited grid, so
// concurrent scans of different frames are independent.
func (sc *Scanner) Scan(f *Frame) ([]*Region, error) {
	if f == nil || f.w <= 0 || f.h <= 0 {
		return nil, ErrEmptyFrame
	}
	if err := sc.Settings.Validate(); err != nil {
		return nil, err
	}

	stride := sc.Settings.scanStride()
	visited := newVisitGrid(f.w, f.h)
	regions := []*Region{}
	grown := 0

	for y := 0; y < f.h; y += stride {
		for x := 0; x < f.w; x += stride {
			if visited.has(x, y) {
				continue
			}

			c := f.At(x, y)
			if sc.isBackgroundSeed(c) {
				continue
			}

			r := growRegion(f, x, y, visited, sc.Settings)
			if r == nil {
				continue
			}
			grown++

			if sc.Shape.Accept(r) {
				regions = append(regions, r)
			}
		}
	}

	sc.Log.Debug().
		Int("stride", stride).
		Int("grown", grown).
		Int("accepted", len(regions)).
		Msg("frame scanned")

	return regions, nil
}

// isBackgroundSeed rejects white backdrop, near-black shadow and, when a
// surface was sampled, the surface color itself
func (sc *Scanner) isBackgroundSeed(c Color) bool {
	b := c.Brightness()
	if b > MaxSeedBrightness || b < MinSeedBrightness {
		return true
	}
	return len(sc.SurfaceColors) > 0 &&
		IsBackgroundColor(c, sc.SurfaceColors, sc.Settings.ColorThreshold)
}

// String describes the scanner configuration for logs
func (sc *Scanner) String() string {
	return fmt.Sprintf("scanner(stride=%d, tolerance=%.1f, shape=%.1f-%.1f)",
		sc.Settings.scanStride(), sc.Settings.growTolerance(), sc.Shape.MinAspect, sc.Shape.MaxAspect)
}
