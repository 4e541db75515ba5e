package analyzer

import "math"

// Direction is the dominant orientation of a texture's edges
type Direction int

const (
	DirectionNone Direction = iota
	DirectionVertical
	DirectionHorizontal
	DirectionBoth
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionVertical:
		return "vertical"
	case DirectionHorizontal:
		return "horizontal"
	case DirectionBoth:
		return "both"
	default:
		return "unknown"
	}
}

// MarshalText lets Direction appear as its name in YAML reports
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Texture summarizes a region's local brightness variation
type Texture struct {
	Pattern         []float64 // luma samples in sampling order
	Contrast        float64   // mean of the larger gradient per sample
	VerticalEdges   int
	HorizontalEdges int
	EdgeCount       int // VerticalEdges + HorizontalEdges
	AvgBrightness   float64
	Direction       Direction
}

// EdgeDensity is the number of edges per pattern sample
func (t Texture) EdgeDensity() float64 {
	if len(t.Pattern) == 0 {
		return 0
	}
	return float64(t.EdgeCount) / float64(len(t.Pattern))
}

// sampleArea is a square patch centred on (x, y) with half-side radius
type sampleArea struct {
	x, y   int
	radius float64
}

// textureAreas returns the top-quarter, middle and bottom-quarter patches
func textureAreas(r *Region) [3]sampleArea {
	cx := floorDiv(r.MinX+r.MaxX, 2)
	radius := float64(min(r.Width, r.Height)) / 4
	h := float64(r.Height)

	return [3]sampleArea{
		{x: cx, y: int(math.Floor(float64(r.MinY) + h*0.25)), radius: radius},
		{x: cx, y: floorDiv(r.MinY+r.MaxY, 2), radius: radius},
		{x: cx, y: int(math.Floor(float64(r.MaxY) - h*0.25)), radius: radius},
	}
}

// AnalyzeTexture samples three patches of r in f and summarizes their luma
// pattern, contrast and edge orientation. It is a pure function of its inputs.
func AnalyzeTexture(f *Frame, r *Region) Texture {
	var (
		t          Texture
		contrast   float64
		brightness float64
	)

	frameLimit := float64(min(f.w, f.h)) / 4

	for _, area := range textureAreas(r) {
		radius := math.Min(area.radius, frameLimit)
		step := math.Max(1, math.Floor(radius/TextureStepDivisor))

		for i := -radius; i <= radius; i += step {
			for j := -radius; j <= radius; j += step {
				gray := f.luma(f.Clamp(offset(area.x, i), offset(area.y, j)))
				t.Pattern = append(t.Pattern, gray)
				brightness += gray

				// the first row and column have nothing above or to the left
				if i <= -radius || j <= -radius {
					continue
				}

				up := f.luma(f.Clamp(offset(area.x, i), offset(area.y, j-step)))
				left := f.luma(f.Clamp(offset(area.x, i-step), offset(area.y, j)))
				vertical := math.Abs(gray - up)
				horizontal := math.Abs(gray - left)

				contrast += math.Max(vertical, horizontal)
				if vertical > EdgeGradientThreshold {
					t.VerticalEdges++
				}
				if horizontal > EdgeGradientThreshold {
					t.HorizontalEdges++
				}
			}
		}
	}

	n := float64(len(t.Pattern))
	if n == 0 {
		return t
	}

	t.EdgeCount = t.VerticalEdges + t.HorizontalEdges
	t.Contrast = contrast / n
	t.AvgBrightness = brightness / n
	t.Direction = classifyDirection(float64(t.VerticalEdges)/n, float64(t.HorizontalEdges)/n)
	return t
}

func classifyDirection(verticalRatio, horizontalRatio float64) Direction {
	v := verticalRatio > EdgeRatioThreshold
	h := horizontalRatio > EdgeRatioThreshold
	switch {
	case v && h:
		return DirectionBoth
	case v:
		return DirectionVertical
	case h:
		return DirectionHorizontal
	default:
		return DirectionNone
	}
}

// offset floors a fractional sampling offset onto the pixel grid
func offset(base int, d float64) int {
	return int(math.Floor(float64(base) + d))
}

func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}
