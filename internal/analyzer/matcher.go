package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// Regime selects the score weighting for a candidate pair
type Regime int

const (
	// RegimePlain is for plain-colored regions
	RegimePlain Regime = iota
	// RegimeDark is for pairs where both regions are dark
	RegimeDark
	// RegimeStrongPattern is for pairs where either region is heavily textured
	RegimeStrongPattern
)

func (r Regime) String() string {
	switch r {
	case RegimePlain:
		return "plain"
	case RegimeDark:
		return "dark"
	case RegimeStrongPattern:
		return "strong_pattern"
	default:
		return "unknown"
	}
}

// MarshalText lets Regime appear as its name in YAML reports
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type regimeParams struct {
	textureWeight float64
	colorWeight   float64
	sizeWeight    float64
	minScore      float64 // score must exceed this
	minTexture    float64 // texture score must exceed this
}

var regimes = [...]regimeParams{
	RegimePlain:         {textureWeight: 0.4, colorWeight: 0.4, sizeWeight: 0.2, minScore: 0.5, minTexture: 0.4},
	RegimeDark:          {textureWeight: 0.6, colorWeight: 0.2, sizeWeight: 0.2, minScore: 0.45, minTexture: 0.35},
	RegimeStrongPattern: {textureWeight: 0.7, colorWeight: 0.1, sizeWeight: 0.2, minScore: 0.4, minTexture: 0.3},
}

// MinScore is the composite score a pair must exceed in this regime
func (r Regime) MinScore() float64 { return regimes[r].minScore }

// MinTextureScore is the texture score a pair must exceed in this regime
func (r Regime) MinTextureScore() float64 { return regimes[r].minTexture }

func (r Regime) combine(texture, color, size float64) float64 {
	p := regimes[r]
	return texture*p.textureWeight + color*p.colorWeight + size*p.sizeWeight
}

// Match is a selected pair together with the scores that ranked it.
// IndexA and IndexB refer to the region slice passed to the matcher.
type Match struct {
	A, B           *Region
	IndexA, IndexB int
	Score          float64
	ColorScore     float64
	TextureScore   float64
	SizeScore      float64
	Regime         Regime
}

// Pair is two regions judged to be the same kind of object
type Pair struct {
	A, B *Region
}

// Matcher pairs regions by color, texture and size similarity
type Matcher struct {
	Settings Settings
	Log      zerolog.Logger
}

// NewMatcher creates a matcher that does not log
func NewMatcher(s Settings) *Matcher {
	return &Matcher{Settings: s, Log: zerolog.Nop()}
}

// FindMatchingPairs returns disjoint region pairs, best first. f must be
// the frame the regions were grown from; it is read to compute textures.
func FindMatchingPairs(regions []*Region, s Settings, f *Frame) ([]Pair, error) {
	matches, err := NewMatcher(s).Match(regions, f)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, len(matches))
	for i, m := range matches {
		pairs[i] = Pair{A: m.A, B: m.B}
	}
	return pairs, nil
}

// Match scores every unordered pair of regions, keeps the candidates that
// pass both the score and the texture gate of their regime, and greedily
// selects disjoint pairs in ranking order.
//
// The selection is greedy, not a maximum-weight matching: a high-ranked
// pair can block two lower-ranked pairs whose combined score is larger.
// Ranking is by score, except that candidates within ScoreTieBand of each
// other are ordered by texture score; callers may rely on this order.
func (m *Matcher) Match(regions []*Region, f *Frame) ([]Match, error) {
	if f == nil {
		return nil, ErrEmptyFrame
	}
	if err := m.Settings.Validate(); err != nil {
		return nil, err
	}

	candidates := m.candidates(regions, f)
	rankCandidates(candidates)

	used := make([]bool, len(regions))
	selected := []Match{}
	for _, c := range candidates {
		if used[c.IndexA] || used[c.IndexB] {
			continue
		}
		used[c.IndexA] = true
		used[c.IndexB] = true
		selected = append(selected, c)

		m.Log.Debug().
			Str("regime", c.Regime.String()).
			Float64("score", round2(c.Score)).
			Float64("color", round2(c.ColorScore)).
			Float64("texture", round2(c.TextureScore)).
			Float64("size", round2(c.SizeScore)).
			Str("a", describe(c.A)).
			Str("b", describe(c.B)).
			Msg("match selected")
	}

	return selected, nil
}

// candidates evaluates all unordered pairs in size-descending order
func (m *Matcher) candidates(regions []*Region, f *Frame) []Match {
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return regions[order[a]].Size > regions[order[b]].Size
	})

	var out []Match
	for oi, i := range order {
		r1 := regions[i]
		for _, j := range order[oi+1:] {
			r2 := regions[j]
			if c, ok := m.score(r1, r2, f); ok {
				c.IndexA, c.IndexB = i, j
				out = append(out, c)
			}
		}
	}
	return out
}

// score evaluates one candidate pair; ok is false when any gate rejects it
func (m *Matcher) score(r1, r2 *Region, f *Frame) (Match, bool) {
	overlap := max(0, min(r1.MaxX, r2.MaxX)-max(r1.MinX, r2.MinX)) *
		max(0, min(r1.MaxY, r2.MaxY)-max(r1.MinY, r2.MinY))
	if float64(overlap)/float64(min(r1.Size, r2.Size)) > MaxOverlapFraction {
		return Match{}, false
	}

	heightRatio := ratio(float64(r1.Height), float64(r2.Height))
	widthRatio := ratio(float64(r1.Width), float64(r2.Width))
	sizeRatio := ratio(float64(r1.Size), float64(r2.Size))
	if heightRatio < MinScaleRatio || widthRatio < MinScaleRatio || sizeRatio < MinScaleRatio {
		return Match{}, false
	}
	sizeScore := (heightRatio + widthRatio + sizeRatio) / 3

	t1, t2 := r1.Texture(f), r2.Texture(f)

	b1, b2 := r1.Color.Brightness(), r2.Color.Brightness()
	dark := b1 < DarkBrightness && b2 < DarkBrightness

	var colorScore float64
	if dark {
		// dark fabrics differ mostly in brightness, hue is unreliable
		colorScore = 1 - math.Abs(b1-b2)/DarkBrightness
	} else {
		colorScore = math.Max(0, 1-float64(ColorDistance(r1.Color, r2.Color))/(2*m.Settings.ColorThreshold))
	}

	textureScore := CompareTextures(t1, t2)

	regime := RegimePlain
	switch {
	case t1.EdgeCount > StrongPatternEdges || t2.EdgeCount > StrongPatternEdges:
		regime = RegimeStrongPattern
	case dark:
		regime = RegimeDark
	}

	score := regime.combine(textureScore, colorScore, sizeScore)
	if score <= regime.MinScore() || textureScore <= regime.MinTextureScore() {
		return Match{}, false
	}

	return Match{
		A:            r1,
		B:            r2,
		Score:        score,
		ColorScore:   colorScore,
		TextureScore: textureScore,
		SizeScore:    sizeScore,
		Regime:       regime,
	}, true
}

// rankCandidates orders candidates best first. Within ScoreTieBand the
// texture score decides. The comparison is not transitive, so the stable
// sort keeps the result deterministic for a given candidate order.
func rankCandidates(c []Match) {
	sort.SliceStable(c, func(i, j int) bool {
		if math.Abs(c[i].Score-c[j].Score) < ScoreTieBand {
			return c[i].TextureScore > c[j].TextureScore
		}
		return c[i].Score > c[j].Score
	})
}

func describe(r *Region) string {
	return fmt.Sprintf("(%d,%d) %dx%d size=%d rgb=%d,%d,%d",
		r.MinX, r.MinY, r.Width, r.Height, r.Size, r.Color.R, r.Color.G, r.Color.B)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
