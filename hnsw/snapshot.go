package hnsw

import (
	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
)

// State is a plain, gob-friendly copy of an Engine's graph state: the
// per-level adjacency tables, entry point, level assignments, and build
// parameters (SPEC_FULL.md §6 "Persisted state"). This package does not
// import encoding/gob itself — Export/Restore hand the caller plain data
// so it can pick its own wire format, the teacher's own hnsw/gob.go keeps
// the same separation between engine state and the encoder that walks it.
type State struct {
	EntryPoint int64
	TopLevel   int
	Levels     []int32
	// Layers[l][i] is node i's neighbor list at level l.
	Layers  [][][]int32
	Options Options
}

// Export snapshots the engine's current graph state. Safe to call
// concurrently with Search, but not recommended during an in-flight
// Insert: the returned Layers are a best-effort copy, not a consistent
// point-in-time transaction across levels.
func (e *Engine) Export() State {
	e.structuralMu.Lock()
	levels := append([]int32(nil), e.levels...)
	layers := make([][][]int32, len(e.layers))
	for l, g := range e.layers {
		if g == nil {
			continue
		}
		n := g.N()
		rows := make([][]int32, n)
		for i := 0; i < n; i++ {
			rows[i] = append([]int32(nil), g.Neighbors(i)...)
		}
		layers[l] = rows
	}
	e.structuralMu.Unlock()

	e.epMu.Lock()
	ep, top := e.ep, e.topLevel
	e.epMu.Unlock()

	return State{
		EntryPoint: ep,
		TopLevel:   top,
		Levels:     levels,
		Layers:     layers,
		Options:    e.opts,
	}
}

// Restore rebuilds an Engine from a previously Exported State, over
// storage holding the same vectors the state was captured from. The
// caller is responsible for ensuring storage and state agree; Restore
// does not re-validate node ids against storage.NTotal().
func Restore(storage distance.Storage, s State) *Engine {
	e := New(storage, func(o *Options) { *o = s.Options })

	stripes := e.stripeCount()
	layers := make([]*graph.Graph, len(s.Layers))
	for l, rows := range s.Layers {
		g := graph.New(len(rows), e.capAt(l), stripes)
		for i, row := range rows {
			ids := make([]int32, len(row))
			copy(ids, row)
			g.Lock(i)
			g.SetNeighborsLocked(i, ids)
			g.Unlock(i)
		}
		layers[l] = g
	}

	e.structuralMu.Lock()
	e.levels = append([]int32(nil), s.Levels...)
	e.layers = layers
	e.structuralMu.Unlock()

	e.epMu.Lock()
	e.ep = s.EntryPoint
	e.topLevel = s.TopLevel
	e.epMu.Unlock()

	return e
}
