package analyzer

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	green = color.RGBA{R: 40, G: 200, B: 60, A: 255}
	navy  = color.RGBA{R: 30, G: 40, B: 120, A: 255}
	beige = color.RGBA{R: 180, G: 170, B: 150, A: 255}
)

// testSettings mirrors the UI defaults in internal/config
func testSettings() Settings {
	return Settings{
		GridSize:             15,
		MinRegionSize:        2000,
		MaxRegionSize:        100000,
		ColorThreshold:       35,
		SizeRatioThreshold:   1.2,
		AspectRatioThreshold: 0.2,
		TextureThreshold:     30,
	}
}

func newCanvas(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Rect, bg)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func mustFrame(t *testing.T, img image.Image) *Frame {
	t.Helper()
	f, err := NewFrame(img)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	return f
}

// twoRectFrame is a 200x400 white frame with two 60x150 rectangles far apart
func twoRectFrame(t *testing.T, c1, c2 color.RGBA) *Frame {
	img := newCanvas(200, 400, white)
	fillRect(img, image.Rect(20, 20, 80, 170), c1)
	fillRect(img, image.Rect(120, 220, 180, 370), c2)
	return mustFrame(t, img)
}

func TestFindColorRegionsTwoIdenticalRectangles(t *testing.T) {
	f := twoRectFrame(t, gray, gray)
	s := testSettings()

	regions, err := FindColorRegions(f, s)
	if err != nil {
		t.Fatalf("FindColorRegions failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}

	want := []image.Rectangle{
		image.Rect(20, 20, 80, 170),
		image.Rect(120, 220, 180, 370),
	}
	for i, r := range regions {
		if r.Bounds() != want[i] {
			t.Errorf("Region %d: expected bounds %v, got %v", i, want[i], r.Bounds())
		}
		if r.Size != 60*150 {
			t.Errorf("Region %d: expected size %d, got %d", i, 60*150, r.Size)
		}
		if r.Color != (Color{R: 128, G: 128, B: 128}) {
			t.Errorf("Region %d: unexpected color %+v", i, r.Color)
		}
	}

	pairs, err := FindMatchingPairs(regions, s, f)
	if err != nil {
		t.Fatalf("FindMatchingPairs failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	got := map[*Region]bool{pairs[0].A: true, pairs[0].B: true}
	if !got[regions[0]] || !got[regions[1]] {
		t.Errorf("Pair does not contain both rectangles: %+v", pairs[0])
	}
}

func TestDifferentHuesAreNotPaired(t *testing.T) {
	f := twoRectFrame(t, gray, green)
	s := testSettings()

	if d := ColorDistance(Color{128, 128, 128}, Color{40, 200, 60}); float64(d) <= 3*s.ColorThreshold {
		t.Fatalf("Test colors too close: distance %d", d)
	}

	regions, err := FindColorRegions(f, s)
	if err != nil {
		t.Fatalf("FindColorRegions failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("Expected both rectangles as regions, got %d", len(regions))
	}

	pairs, err := FindMatchingPairs(regions, s, f)
	if err != nil {
		t.Fatalf("FindMatchingPairs failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs, got %d", len(pairs))
	}
}

func TestAllWhiteFrame(t *testing.T) {
	f := mustFrame(t, newCanvas(320, 240, white))
	s := testSettings()

	regions, err := FindColorRegions(f, s)
	if err != nil {
		t.Fatalf("FindColorRegions failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("Expected no regions, got %d", len(regions))
	}

	pairs, err := FindMatchingPairs(regions, s, f)
	if err != nil {
		t.Fatalf("FindMatchingPairs failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs, got %d", len(pairs))
	}
}

func TestRelaxedMinimumBoundary(t *testing.T) {
	s := testSettings()
	s.MinRegionSize = 1000 // relaxed floor is exactly 700

	tests := []struct {
		name     string
		holes    []image.Point
		wantSize int
	}{
		{"exactly at floor", nil, 700},
		{"one pixel below", []image.Point{{16, 109}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newCanvas(100, 200, white)
			fillRect(img, image.Rect(10, 10, 17, 110), gray)
			for _, p := range tt.holes {
				img.SetRGBA(p.X, p.Y, white)
			}
			f := mustFrame(t, img)

			r := growRegion(f, 10, 10, newVisitGrid(f.Width(), f.Height()), s)
			if tt.wantSize == 0 {
				if r != nil {
					t.Errorf("Expected region to be dropped, got size %d", r.Size)
				}
				return
			}
			if r == nil {
				t.Fatal("Expected region, got nil")
			}
			if r.Size != tt.wantSize {
				t.Errorf("Expected size %d, got %d", tt.wantSize, r.Size)
			}
		})
	}
}

func TestGrowRegionStopsAtMaxSize(t *testing.T) {
	s := testSettings()
	s.MinRegionSize = 100
	s.MaxRegionSize = 5000

	f := mustFrame(t, newCanvas(200, 200, gray))
	visited := newVisitGrid(f.Width(), f.Height())

	r := growRegion(f, 100, 100, visited, s)
	if r == nil {
		t.Fatal("Expected region, got nil")
	}
	if r.Size != s.MaxRegionSize {
		t.Errorf("Expected size capped at %d, got %d", s.MaxRegionSize, r.Size)
	}

	claimed := 0
	for _, v := range visited.seen {
		if v {
			claimed++
		}
	}
	if claimed != r.Size {
		t.Errorf("Visited grid has %d pixels, region has %d", claimed, r.Size)
	}
}

func TestGrowRegionUsesSeedColor(t *testing.T) {
	s := testSettings()
	s.MinRegionSize = 10

	// a horizontal gradient where each step is within tolerance of its
	// neighbour but far columns drift beyond tolerance of the seed
	img := newCanvas(100, 40, white)
	for x := 0; x < 100; x++ {
		v := uint8(60 + x)
		fillRect(img, image.Rect(x, 0, x+1, 40), color.RGBA{R: v, G: v, B: v, A: 255})
	}
	f := mustFrame(t, img)

	r := growRegion(f, 0, 0, newVisitGrid(f.Width(), f.Height()), s)
	if r == nil {
		t.Fatal("Expected region, got nil")
	}
	// distance 3*dx must stay within 35*1.8 = 63, so dx <= 21
	if r.MaxX != 21 {
		t.Errorf("Expected growth to stop at x=21, got %d", r.MaxX)
	}
}

func TestRegionGeometry(t *testing.T) {
	img := newCanvas(400, 400, white)
	fillRect(img, image.Rect(30, 30, 90, 200), gray)
	fillRect(img, image.Rect(200, 40, 270, 230), navy)
	fillRect(img, image.Rect(150, 260, 280, 380), green) // square-ish, fails the shape prior
	f := mustFrame(t, img)
	s := testSettings()

	regions, err := FindColorRegions(f, s)
	if err != nil {
		t.Fatalf("FindColorRegions failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}

	shape := DefaultShapeFilter()
	for i, r := range regions {
		if r.Width != r.MaxX-r.MinX+1 || r.Height != r.MaxY-r.MinY+1 {
			t.Errorf("Region %d: inconsistent extent %+v", i, r.Bounds())
		}
		if float64(r.Size) < float64(s.MinRegionSize)*RelaxedMinFactor {
			t.Errorf("Region %d: size %d below relaxed floor", i, r.Size)
		}
		if r.Size != r.Width*r.Height {
			t.Errorf("Region %d: solid rectangle should have size %d, got %d", i, r.Width*r.Height, r.Size)
		}
		aspect := float64(r.Height) / float64(r.Width)
		if aspect < shape.MinAspect || aspect > shape.MaxAspect || r.Height < shape.MinHeight || r.Width < shape.MinWidth {
			t.Errorf("Region %d: violates shape prior: %dx%d", i, r.Width, r.Height)
		}
	}
}

func TestScannerSurfaceColors(t *testing.T) {
	img := newCanvas(200, 400, beige)
	fillRect(img, image.Rect(20, 20, 80, 170), navy)
	fillRect(img, image.Rect(120, 220, 180, 370), navy)
	f := mustFrame(t, img)
	s := testSettings()

	plain, err := NewScanner(s).Scan(f)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	// without a sampled surface the backdrop itself grows into a region
	if len(plain) != 3 {
		t.Errorf("Expected 3 regions without surface colors, got %d", len(plain))
	}

	sc := NewScanner(s)
	sc.SurfaceColors = SampleSurface(f, 5, 5, 10)
	regions, err := sc.Scan(f)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions with surface colors, got %d", len(regions))
	}

	matches, err := NewMatcher(s).Match(regions, f)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Regime != RegimeDark {
		t.Errorf("Expected dark regime for navy pair, got %s", matches[0].Regime)
	}
}

func TestScanRejectsBadInput(t *testing.T) {
	f := mustFrame(t, newCanvas(10, 10, white))

	bad := testSettings()
	bad.MaxRegionSize = 10
	if _, err := FindColorRegions(f, bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}

	if _, err := NewFrame(image.NewRGBA(image.Rect(0, 0, 0, 5))); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame, got %v", err)
	}

	if _, err := FindMatchingPairs(nil, testSettings(), nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame for nil frame, got %v", err)
	}
}

func TestNewFrameConvertsOffsetImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	img.Set(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.Set(13, 12, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	f := mustFrame(t, img)
	if f.Width() != 4 || f.Height() != 3 {
		t.Fatalf("Expected 4x3 frame, got %dx%d", f.Width(), f.Height())
	}
	if c := f.At(0, 0); c != (Color{1, 2, 3}) {
		t.Errorf("Expected (1,2,3) at origin, got %+v", c)
	}
	if c := f.At(3, 2); c != (Color{200, 100, 50}) {
		t.Errorf("Expected (200,100,50) at corner, got %+v", c)
	}
	if x, y := f.Clamp(-5, 99); x != 0 || y != 2 {
		t.Errorf("Clamp: expected (0,2), got (%d,%d)", x, y)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		surface []Color
		wantErr bool
	}{
		{"color", nil, false},
		{"", nil, false}, // default
		{"surface", []Color{{200, 200, 200}}, false},
		{"surface", nil, true},
		{"ml", nil, true},
		{"invalid", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant, testSettings(), tt.surface)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"zero grid", func(s *Settings) { s.GridSize = 0 }, false},
		{"zero min", func(s *Settings) { s.MinRegionSize = 0 }, false},
		{"max below min", func(s *Settings) { s.MaxRegionSize = s.MinRegionSize - 1 }, false},
		{"zero color threshold", func(s *Settings) { s.ColorThreshold = 0 }, false},
		{"negative texture threshold", func(s *Settings) { s.TextureThreshold = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestScanStride(t *testing.T) {
	s := testSettings()
	if got := s.scanStride(); got != MinScanStride {
		t.Errorf("Expected stride %d for grid 15, got %d", MinScanStride, got)
	}
	s.GridSize = 32
	if got := s.scanStride(); got != 32 {
		t.Errorf("Expected stride 32, got %d", got)
	}
	if got := s.growTolerance(); math.Abs(got-63) > 1e-9 {
		t.Errorf("Expected tolerance 63, got %f", got)
	}
}
