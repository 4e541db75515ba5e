package analyzer

// Color is an 8-bit RGB sample. Alpha is never carried.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Brightness returns the unweighted channel mean
func (c Color) Brightness() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// Luma returns the Rec. 601 grayscale value
func (c Color) Luma() float64 {
	return float64(c.R)*0.299 + float64(c.G)*0.587 + float64(c.B)*0.114
}

// ColorDistance is the L1 (Manhattan) distance in RGB space, in [0, 765].
// It is not perceptually uniform; thresholds must be tuned per lighting.
func ColorDistance(c1, c2 Color) int {
	return absInt(int(c1.R)-int(c2.R)) +
		absInt(int(c1.G)-int(c2.G)) +
		absInt(int(c1.B)-int(c2.B))
}

// IsBackgroundColor reports whether c is closer than threshold to any of refs
func IsBackgroundColor(c Color, refs []Color, threshold float64) bool {
	for _, ref := range refs {
		if float64(ColorDistance(c, ref)) < threshold {
			return true
		}
	}
	return false
}

// SampleSurface averages a size×size patch centred on (x, y) and returns the
// average together with darker (-30, -15) and lighter (+15, +30) variants.
// The result is meant to be used as Scanner.SurfaceColors.
func SampleSurface(f *Frame, x, y, size int) []Color {
	if size < 1 {
		size = 1
	}
	x0, y0 := f.Clamp(x-size/2, y-size/2)
	x1, y1 := f.Clamp(x0+size-1, y0+size-1)

	var r, g, b, n int
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			c := f.At(px, py)
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
			n++
		}
	}

	avg := Color{
		R: uint8(roundDiv(r, n)),
		G: uint8(roundDiv(g, n)),
		B: uint8(roundDiv(b, n)),
	}

	return []Color{
		avg,
		avg.shift(-30),
		avg.shift(-15),
		avg.shift(15),
		avg.shift(30),
	}
}

// shift adds delta to every channel, saturating at 0 and 255
func (c Color) shift(delta int) Color {
	return Color{
		R: clampByte(int(c.R) + delta),
		G: clampByte(int(c.G) + delta),
		B: clampByte(int(c.B) + delta),
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// roundDiv returns sum/n rounded half up. n must be positive.
func roundDiv(sum, n int) int {
	return (2*sum + n) / (2 * n)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
