package analyzer

import (
	"image"
	"sync"
)

// Region is a connected blob of color-similar pixels.
// It is immutable once returned by the grower; the texture summary is
// attached lazily by the matcher and never changes afterwards.
type Region struct {
	MinX, MaxX int
	MinY, MaxY int
	Width      int // MaxX-MinX+1
	Height     int // MaxY-MinY+1
	Size       int // member pixel count
	Color      Color

	textureOnce sync.Once
	texture     Texture
}

// Bounds returns the bounding box as an image.Rectangle (Max exclusive)
func (r *Region) Bounds() image.Rectangle {
	return image.Rect(r.MinX, r.MinY, r.MaxX+1, r.MaxY+1)
}

// Texture returns the region's texture summary, computing it from f on the
// first call. Later calls return the cached summary regardless of f, so f
// must be the frame the region was grown from.
func (r *Region) Texture(f *Frame) Texture {
	r.textureOnce.Do(func() {
		r.texture = AnalyzeTexture(f, r)
	})
	return r.texture
}

// visitGrid is the per-scan record of claimed pixels. It is shared by all
// seeds of one scan so regions never share pixels.
type visitGrid struct {
	w    int
	seen []bool
}

func newVisitGrid(w, h int) *visitGrid {
	return &visitGrid{w: w, seen: make([]bool, w*h)}
}

func (v *visitGrid) has(x, y int) bool { return v.seen[y*v.w+x] }
func (v *visitGrid) mark(x, y int)     { v.seen[y*v.w+x] = true }

// neighbors8 lists the 8-connected offsets in the order they are probed
var neighbors8 = [8]image.Point{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// growRegion flood-fills from (seedX, seedY), merging every unvisited
// 8-neighbour within the growth tolerance of the seed color. It returns nil
// when the blob ends up below the relaxed minimum size.
func growRegion(f *Frame, seedX, seedY int, visited *visitGrid, s Settings) *Region {
	seed := f.At(seedX, seedY)
	tolerance := s.growTolerance()

	r := &Region{MinX: seedX, MaxX: seedX, MinY: seedY, MaxY: seedY}

	visited.mark(seedX, seedY)
	members := []image.Point{{X: seedX, Y: seedY}}

	// members doubles as the BFS queue: head walks it while growth appends
	for head := 0; head < len(members) && len(members) < s.MaxRegionSize; head++ {
		p := members[head]

		for _, d := range neighbors8 {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !f.In(nx, ny) || visited.has(nx, ny) {
				continue
			}
			if float64(ColorDistance(f.At(nx, ny), seed)) > tolerance {
				continue
			}

			visited.mark(nx, ny)
			members = append(members, image.Point{X: nx, Y: ny})

			if nx < r.MinX {
				r.MinX = nx
			}
			if nx > r.MaxX {
				r.MaxX = nx
			}
			if ny < r.MinY {
				r.MinY = ny
			}
			if ny > r.MaxY {
				r.MaxY = ny
			}

			if len(members) >= s.MaxRegionSize {
				break
			}
		}
	}

	r.Size = len(members)
	r.Width = r.MaxX - r.MinX + 1
	r.Height = r.MaxY - r.MinY + 1
	r.Color = averageColor(f, members)

	if float64(r.Size) < float64(s.MinRegionSize)*RelaxedMinFactor {
		return nil
	}
	return r
}

// averageColor is the rounded per-channel mean over pts
func averageColor(f *Frame, pts []image.Point) Color {
	var r, g, b int
	for _, p := range pts {
		c := f.At(p.X, p.Y)
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(pts)
	return Color{
		R: uint8(roundDiv(r, n)),
		G: uint8(roundDiv(g, n)),
		B: uint8(roundDiv(b, n)),
	}
}
