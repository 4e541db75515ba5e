package analyzer

// Tuned heuristics. These are empirical defaults validated on camera frames
// of socks on a light surface, not derived values; retune against a corpus
// before relying on them for other objects.
const (
	// Seeds brighter than this are treated as white backdrop
	MaxSeedBrightness = 240.0
	// Seeds darker than this are treated as shadow
	MinSeedBrightness = 15.0
	// Lower bound for the seed grid spacing
	MinScanStride = 20

	// Growth tolerance relative to Settings.ColorThreshold. Growing is more
	// permissive than pairing so one object survives shading gradients.
	GrowThresholdFactor = 1.8
	// Regions below MinRegionSize*RelaxedMinFactor are dropped
	RelaxedMinFactor = 0.7

	// Luma step that counts a texture sample as an edge
	EdgeGradientThreshold = 10.0
	// Edge-to-sample ratio above which a direction is considered present
	EdgeRatioThreshold = 0.1
	// Texture sampling step is radius/TextureStepDivisor
	TextureStepDivisor = 25

	// Sliding correlation window as a fraction of the shorter pattern
	CorrelationWindowFactor = 0.7

	// Candidate pairs overlapping more than this fraction of the smaller
	// region are treated as the same object
	MaxOverlapFraction = 0.3
	// Height, width and size ratios below this reject a candidate pair
	MinScaleRatio = 0.5
	// Regions with mean channel intensity below this are "dark"
	DarkBrightness = 80.0
	// Regions with more texture edges than this have a strong pattern
	StrongPatternEdges = 100
	// Candidates whose scores differ by less than this are ordered by texture
	ScoreTieBand = 0.1
)

// Texture comparator weights
const (
	correlationWeight = 0.4
	edgeDensityWeight = 0.2
	directionWeight   = 0.3
	contrastWeight    = 0.1

	sameDirectionScore  = 1.0
	mixedDirectionScore = 0.7
	otherDirectionScore = 0.3
)
