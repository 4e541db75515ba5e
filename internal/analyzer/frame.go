package analyzer

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrEmptyFrame is returned for frames with zero width or height
var ErrEmptyFrame = errors.New("empty frame")

// Frame is a read-only RGB pixel grid with its origin at (0, 0).
// Nothing in this package writes to the underlying pixels.
type Frame struct {
	rgba *image.RGBA
	w, h int
}

// NewFrame wraps img as a Frame. A zero-origin *image.RGBA is used as is;
// anything else is converted. The alpha channel is ignored.
func NewFrame(img image.Image) (*Frame, error) {
	if img == nil {
		return nil, ErrEmptyFrame
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyFrame, bounds.Dx(), bounds.Dy())
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}

	return &Frame{rgba: rgba, w: bounds.Dx(), h: bounds.Dy()}, nil
}

// Width of the frame in pixels
func (f *Frame) Width() int { return f.w }

// Height of the frame in pixels
func (f *Frame) Height() int { return f.h }

// At returns the color at (x, y). The caller guarantees the coordinate is
// inside the frame; use Clamp first when it may not be.
func (f *Frame) At(x, y int) Color {
	i := y*f.rgba.Stride + x*4
	p := f.rgba.Pix[i : i+3 : i+3]
	return Color{R: p[0], G: p[1], B: p[2]}
}

// Clamp pins (x, y) to the nearest coordinate inside the frame
func (f *Frame) Clamp(x, y int) (int, int) {
	return clampInt(x, 0, f.w-1), clampInt(y, 0, f.h-1)
}

// In reports whether (x, y) lies inside the frame
func (f *Frame) In(x, y int) bool {
	return x >= 0 && x < f.w && y >= 0 && y < f.h
}

func (f *Frame) luma(x, y int) float64 {
	return f.At(x, y).Luma()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
