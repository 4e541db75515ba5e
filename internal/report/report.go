package report

import (
	"github.com/ivlev/sockpair/internal/analyzer"
)

// Version of the report layout
const Version = "1.0"

// Report is the result of one batch run
type Report struct {
	Version  string            `yaml:"version"`
	Input    string            `yaml:"input"`
	Settings analyzer.Settings `yaml:"settings"`
	Frames   []Frame           `yaml:"frames"`
}

// Frame holds the regions and pairs found in a single frame
type Frame struct {
	Index   int      `yaml:"index"`
	Source  string   `yaml:"source"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Regions []Region `yaml:"regions"`
	Pairs   []Pair   `yaml:"pairs"`
	Error   string   `yaml:"error,omitempty"` // set when the frame was skipped
}

// Region is a detected blob. ID is its position in discovery order.
type Region struct {
	ID    int            `yaml:"id"`
	Rect  Rectangle      `yaml:"rect"`
	Size  int            `yaml:"size"`
	Color analyzer.Color `yaml:"color"`
}

// Pair refers to two regions of the same frame by ID
type Pair struct {
	A       int     `yaml:"a"`
	B       int     `yaml:"b"`
	Score   float64 `yaml:"score"`
	Color   float64 `yaml:"color"`
	Texture float64 `yaml:"texture"`
	Size    float64 `yaml:"size"`
	Regime  string  `yaml:"regime"`
}

// Rectangle represents a bounding box
type Rectangle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// New creates an empty report for a run over input
func New(input string, s analyzer.Settings) *Report {
	return &Report{
		Version:  Version,
		Input:    input,
		Settings: s,
		Frames:   []Frame{},
	}
}

// FromAnalysis converts scanner and matcher output into a report frame.
// Match indices must refer to regions.
func FromAnalysis(index int, source string, width, height int, regions []*analyzer.Region, matches []analyzer.Match) Frame {
	fr := Frame{
		Index:   index,
		Source:  source,
		Width:   width,
		Height:  height,
		Regions: make([]Region, len(regions)),
		Pairs:   make([]Pair, len(matches)),
	}

	for i, r := range regions {
		fr.Regions[i] = Region{
			ID:    i,
			Rect:  Rectangle{X: r.MinX, Y: r.MinY, W: r.Width, H: r.Height},
			Size:  r.Size,
			Color: r.Color,
		}
	}

	for i, m := range matches {
		fr.Pairs[i] = Pair{
			A:       m.IndexA,
			B:       m.IndexB,
			Score:   m.Score,
			Color:   m.ColorScore,
			Texture: m.TextureScore,
			Size:    m.SizeScore,
			Regime:  m.Regime.String(),
		}
	}

	return fr
}

// Totals counts frames, regions and pairs over the whole report
func (r *Report) Totals() (frames, regions, pairs int) {
	for _, f := range r.Frames {
		regions += len(f.Regions)
		pairs += len(f.Pairs)
	}
	return len(r.Frames), regions, pairs
}
