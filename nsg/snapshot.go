package nsg

import (
	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
)

// BuildParams is the plain, gob-friendly subset of Options: everything
// except SeedGraphBuilder and Logger, which are behavior, not state, and
// have no business surviving a round-trip through a snapshot.
type BuildParams struct {
	R                      int
	L                      int
	C                      int
	SearchL                int
	GK                     int
	MaxThreads             int
	MaxInvalidSeedFraction float64
	Seed                   int64
}

func paramsFromOptions(o Options) BuildParams {
	return BuildParams{
		R:                      o.R,
		L:                      o.L,
		C:                      o.C,
		SearchL:                o.SearchL,
		GK:                     o.GK,
		MaxThreads:             o.MaxThreads,
		MaxInvalidSeedFraction: o.MaxInvalidSeedFraction,
		Seed:                   o.Seed,
	}
}

// State is a plain, gob-friendly copy of a built Engine's graph state: the
// single-level adjacency table, the entry point, and the build parameters
// (SPEC_FULL.md §6 "Persisted state"), mirroring hnsw.State's split between
// engine state and the wire format the caller chooses for it.
type State struct {
	EntryPoint int64
	// Adjacency[i] is node i's neighbor list.
	Adjacency [][]int32
	Params    BuildParams
}

// Export snapshots a built engine's graph state. The second return value
// is false if the engine has not completed Build.
func (e *Engine) Export() (State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return State{}, false
	}

	n := e.g.N()
	rows := make([][]int32, n)
	for i := 0; i < n; i++ {
		rows[i] = append([]int32(nil), e.g.Neighbors(i)...)
	}

	return State{
		EntryPoint: e.enterpoint,
		Adjacency:  rows,
		Params:     paramsFromOptions(e.opts),
	}, true
}

// Restore rebuilds a built Engine from a previously Exported State, over
// storage holding the same vectors the state was captured from. The
// caller is responsible for ensuring storage and state agree; Restore
// does not re-validate node ids against storage.NTotal().
func Restore(storage distance.Storage, s State) *Engine {
	e := New(storage, func(o *Options) {
		o.R = s.Params.R
		o.L = s.Params.L
		o.C = s.Params.C
		o.SearchL = s.Params.SearchL
		o.GK = s.Params.GK
		o.MaxThreads = s.Params.MaxThreads
		o.MaxInvalidSeedFraction = s.Params.MaxInvalidSeedFraction
		o.Seed = s.Params.Seed
	})

	g := graph.New(len(s.Adjacency), e.opts.R, e.stripeCount())
	for i, row := range s.Adjacency {
		ids := make([]int32, len(row))
		copy(ids, row)
		g.Lock(i)
		g.SetNeighborsLocked(i, ids)
		g.Unlock(i)
	}

	e.mu.Lock()
	e.g = g
	e.enterpoint = s.EntryPoint
	e.built = true
	e.mu.Unlock()

	return e
}
