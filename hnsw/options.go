package hnsw

// EdgeSelection chooses how a full adjacency row is brought back under its
// capacity after a new edge pushes it over. Resolves the open question in
// SPEC_FULL.md §9: the source's CAGRA "keep level 0 at exactly 2M
// unpruned" mode is modeled as a pluggable strategy rather than a special
// case wired only into level 0.
type EdgeSelection int

const (
	// PruneHeuristic re-runs the occlusion rule over the full candidate
	// set to shrink it back to capacity. This is the default everywhere.
	PruneHeuristic EdgeSelection = iota
	// FillToCap keeps the nearest `cap` candidates without pruning,
	// matching the source's keep_max_size_level0 mode.
	FillToCap
)

// Options configures an Engine.
type Options struct {
	// M is the base per-node fanout for levels above 0. Default 32.
	M int
	// M0 is the level-0 fanout. Default 2*M.
	M0 int
	// EfConstruction is the candidate-pool size used during insertion.
	// Default 200.
	EfConstruction int
	// EfSearch is the default candidate-pool size used during search when
	// the caller passes efSearch <= 0. Default 64.
	EfSearch int

	// Heuristic selects the occlusion rule for neighbor selection
	// (§4.5 step 4) over simple truncation-by-distance.
	Heuristic bool

	// Level0Selection overrides edge selection at level 0 only, for the
	// CAGRA-style "do not prune, fill to 2M" mode (§9).
	Level0Selection EdgeSelection

	// MaxThreads bounds concurrent insertion/search goroutines. <=0 means
	// unbounded (GOMAXPROCS-scale, no semaphore).
	MaxThreads int

	// InitLevel0 controls whether level-0 adjacency is built during
	// insertion. false models a CAGRA import where level 0 is supplied
	// externally and only search consumes it (§4.5 point 3).
	InitLevel0 bool

	// BaseLevelOnly enables the CAGRA search path: skip descent through
	// upper levels, instead sampling NumBaseLevelSearchEntrypoints random
	// nodes as the entry point candidates for a level-0-only search.
	BaseLevelOnly                 bool
	NumBaseLevelSearchEntrypoints int

	// Seed seeds the per-engine level-assignment RNG for reproducible
	// builds (used directly by the end-to-end test scenarios).
	Seed int64
}

// DefaultOptions returns the engine defaults named in §4.5. M0 is left at
// 0 so that New derives it as 2*M from whatever M the caller settles on.
func DefaultOptions() Options {
	return Options{
		M:                             32,
		M0:                            0,
		EfConstruction:                200,
		EfSearch:                      64,
		Heuristic:                     true,
		Level0Selection:               PruneHeuristic,
		MaxThreads:                    0,
		InitLevel0:                    true,
		BaseLevelOnly:                 false,
		NumBaseLevelSearchEntrypoints: 32,
		Seed:                          1,
	}
}

func (o *Options) setDefaults() {
	if o.M <= 0 {
		o.M = 32
	}
	if o.M == 1 {
		// 1/ln(1) would divide by zero when deriving mL.
		o.M = 2
	}
	if o.M0 <= 0 {
		o.M0 = 2 * o.M
	}
	if o.EfConstruction <= 0 {
		o.EfConstruction = 200
	}
	if o.EfSearch <= 0 {
		o.EfSearch = 64
	}
	if o.NumBaseLevelSearchEntrypoints <= 0 {
		o.NumBaseLevelSearchEntrypoints = 32
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
}
