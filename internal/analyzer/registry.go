package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant.
// surface is only used by the "surface" variant.
func NewDetector(variant string, s Settings, surface []Color) (Detector, error) {
	switch variant {
	case "color", "":
		return NewScanner(s), nil
	case "surface":
		if len(surface) == 0 {
			return nil, fmt.Errorf("surface detector needs at least one sampled surface color")
		}
		sc := NewScanner(s)
		sc.SurfaceColors = surface
		return sc, nil
	case "ml":
		return nil, fmt.Errorf("ML detector not supported")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
