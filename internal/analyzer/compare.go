package analyzer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CompareTextures scores the similarity of two texture summaries, roughly in
// [0, 1]. It blends the best sliding cross-correlation of the z-scored
// patterns with edge density, direction agreement and contrast agreement.
func CompareTextures(t1, t2 Texture) float64 {
	corr := maxCorrelation(t1.Pattern, t2.Pattern)
	edges := ratio(t1.EdgeDensity(), t2.EdgeDensity())
	dir := directionScore(t1.Direction, t2.Direction)
	contrast := ratio(t1.Contrast, t2.Contrast)

	return corr*correlationWeight +
		edges*edgeDensityWeight +
		dir*directionWeight +
		contrast*contrastWeight
}

// maxCorrelation slides a window of the shorter pattern's leading samples
// along the longer pattern and returns the largest |mean product| seen.
func maxCorrelation(p1, p2 []float64) float64 {
	long, short := normalize(p1), normalize(p2)
	if len(short) > len(long) {
		long, short = short, long
	}

	window := int(math.Floor(float64(len(short)) * CorrelationWindowFactor))
	if window == 0 {
		return 0
	}

	head := short[:window]
	best := 0.0
	for off := 0; off+window <= len(long); off++ {
		c := math.Abs(floats.Dot(long[off:off+window], head) / float64(window))
		if c > best {
			best = c
		}
	}
	return best
}

// normalize returns the z-scores of p; a flat pattern divides by 1
func normalize(p []float64) []float64 {
	if len(p) == 0 {
		return nil
	}
	mean, std := stat.PopMeanStdDev(p, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}

	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = (v - mean) / std
	}
	return out
}

// ratio is min/max of two non-negative values. Two zeros are identical (1);
// a single zero shares nothing with a positive value (0).
func ratio(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi == 0 {
		return 1
	}
	return math.Min(a, b) / hi
}

// directionAgreement is indexed [a][b] in Direction order
var directionAgreement = [4][4]float64{
	DirectionNone:       {sameDirectionScore, otherDirectionScore, otherDirectionScore, mixedDirectionScore},
	DirectionVertical:   {otherDirectionScore, sameDirectionScore, otherDirectionScore, mixedDirectionScore},
	DirectionHorizontal: {otherDirectionScore, otherDirectionScore, sameDirectionScore, mixedDirectionScore},
	DirectionBoth:       {mixedDirectionScore, mixedDirectionScore, mixedDirectionScore, sameDirectionScore},
}

func directionScore(a, b Direction) float64 {
	return directionAgreement[a][b]
}
