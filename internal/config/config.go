package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/sockpair/internal/analyzer"
)

type Config struct {
	InputPath    string               `yaml:"input"`
	ReportPath   string               `yaml:"report"`
	Workers      int                  `yaml:"workers"` // 0 sizes the pool from CPU and memory
	DPI          int                  `yaml:"dpi"`
	MaxDimension int                  `yaml:"max_dimension"` // 0 keeps the source resolution
	FrameTimeout time.Duration        `yaml:"frame_timeout"`
	LogLevel     string               `yaml:"log_level"`
	Detector     string               `yaml:"detector"`
	Surface      *SurfacePoint        `yaml:"surface,omitempty"`
	Shape        analyzer.ShapeFilter `yaml:"shape"`
	Settings     analyzer.Settings    `yaml:"settings"`
	ShowStats    bool                 `yaml:"show_stats"`
	BuildVersion string               `yaml:"-"`
}

// SurfacePoint is where the background surface is sampled on every frame
type SurfacePoint struct {
	X    int `yaml:"x"`
	Y    int `yaml:"y"`
	Size int `yaml:"size"`
}

var ErrInvalidConfig = errors.New("invalid config")

// DefaultSettings returns the detection parameters the capture UI starts with
func DefaultSettings() analyzer.Settings {
	return analyzer.Settings{
		GridSize:             15,
		MinRegionSize:        2000,
		MaxRegionSize:        100000,
		ColorThreshold:       35,
		SizeRatioThreshold:   1.2,
		AspectRatioThreshold: 0.2,
		TextureThreshold:     30,
	}
}

func Default() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		DPI:          150,
		MaxDimension: 1280,
		FrameTimeout: 10 * time.Second,
		LogLevel:     "info",
		Detector:     "color",
		Shape:        analyzer.DefaultShapeFilter(),
		Settings:     DefaultSettings(),
	}
}

// Load reads a YAML config file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}

	switch {
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.DPI <= 0:
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidConfig, c.DPI)
	case c.MaxDimension < 0:
		return fmt.Errorf("%w: max_dimension must not be negative", ErrInvalidConfig)
	case c.FrameTimeout < 0:
		return fmt.Errorf("%w: frame_timeout must not be negative", ErrInvalidConfig)
	case c.Shape.MinAspect <= 0 || c.Shape.MaxAspect < c.Shape.MinAspect:
		return fmt.Errorf("%w: shape aspect range [%.2f, %.2f] is empty", ErrInvalidConfig, c.Shape.MinAspect, c.Shape.MaxAspect)
	case c.Shape.MinWidth < 1 || c.Shape.MinHeight < 1:
		return fmt.Errorf("%w: shape minimum width and height must be positive", ErrInvalidConfig)
	case c.Surface != nil && c.Surface.Size < 1:
		return fmt.Errorf("%w: surface sample size must be positive", ErrInvalidConfig)
	case c.Detector == "surface" && c.Surface == nil:
		return fmt.Errorf("%w: detector \"surface\" needs a surface sample point", ErrInvalidConfig)
	}
	return nil
}
