package nsg

import "log/slog"

// Options configures an NSG Engine.
type Options struct {
	// R is the fixed out-degree (fanout) of the built graph.
	R int
	// L is the candidate-list size used while navigating the seed graph
	// during Link (the source's search_on_graph pool_size).
	L int
	// C bounds how many of the sorted candidates sync_prune examines in
	// total before giving up growing the kept set.
	C int
	// SearchL is the default candidate-list size at query time, used when
	// Search is given searchL <= 0 (Search then uses max(SearchL, k)); it
	// is also the pool size of attach_unlinked's search during Build.
	SearchL int
	// GK is the seed KNN graph's per-node fanout (the source's default 64).
	GK int
	// MaxThreads bounds concurrent link/reverse-link goroutines and Search
	// calls. 0 means unbounded.
	MaxThreads int
	// MaxInvalidSeedFraction is the largest fraction of invalid entries
	// (self, out of range, or missing) tolerated in the seed KNN graph
	// before Build fails. The source hardcodes 10%; SPEC_FULL.md §9
	// resolves this as a configurable knob defaulting to the same value.
	MaxInvalidSeedFraction float64
	// Seed seeds the engine's random generator, which picks the extra ids
	// that fill a graph search's initial pool when the entry point has
	// fewer neighbors than the pool size.
	Seed int64
	// SeedGraphBuilder builds the seed KNN graph consumed by Build.
	// Defaults to BruteForceSeedBuilder.
	SeedGraphBuilder SeedGraphBuilder
	// Logger receives a debug-level degree summary after Build (§4.8).
	// nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns faiss-compatible defaults: R=16, L=R+32, C=R+100,
// GK=64.
func DefaultOptions() Options {
	return Options{
		R:                      16,
		GK:                     64,
		MaxInvalidSeedFraction: 0.10,
		Seed:                   1,
	}
}

func (o *Options) setDefaults() {
	if o.R <= 0 {
		o.R = 16
	}
	if o.L <= 0 {
		o.L = o.R + 32
	}
	if o.C <= 0 {
		o.C = o.R + 100
	}
	if o.SearchL <= 0 {
		o.SearchL = o.L
	}
	if o.GK <= 0 {
		o.GK = 64
	}
	if o.MaxInvalidSeedFraction <= 0 {
		o.MaxInvalidSeedFraction = 0.10
	}
	if o.SeedGraphBuilder == nil {
		o.SeedGraphBuilder = BruteForceSeedBuilder{}
	}
}
