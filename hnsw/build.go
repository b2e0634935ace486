package hnsw

import (
	"sort"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
	"github.com/hupe1980/navgraph/internal/occlude"
)

func (e *Engine) stripeCount() int {
	s := e.opts.MaxThreads * 4
	if s < 64 {
		s = 64
	}
	return s
}

// ensureCapacity grows per-node bookkeeping (level assignment table, and
// every existing per-level graph) so that id and every level up to
// newLevel are addressable, then records id's level. Nodes may arrive
// out of id order under concurrent insertion, so this grows to at least
// id+1 rather than assuming append-only arrival.
func (e *Engine) ensureCapacity(id uint64, newLevel int) {
	e.structuralMu.Lock()
	defer e.structuralMu.Unlock()

	need := int(id) + 1
	if need > len(e.levels) {
		grown := make([]int32, need)
		copy(grown, e.levels)
		for i := len(e.levels); i < need; i++ {
			grown[i] = -1
		}
		e.levels = grown
	}
	e.levels[id] = int32(newLevel)

	stripes := e.stripeCount()
	for l := len(e.layers); l <= newLevel; l++ {
		e.layers = append(e.layers, graph.New(need, e.capAt(l), stripes))
	}
	for l := 0; l < len(e.layers); l++ {
		if e.layers[l].N() < need {
			e.layers[l].Grow(need - e.layers[l].N())
		}
	}
}

// Insert adds node id (already materialized in storage at this id) to the
// graph, implementing §4.5's insertion algorithm end to end.
func (e *Engine) Insert(id uint64, vector []float32) error {
	if len(vector) == 0 {
		return ErrEmptyVector
	}

	release := e.acquireWorker()
	defer release()

	level := e.drawLevel()
	e.ensureCapacity(id, level)

	dc := e.storage.DistanceComputer()
	dc.SetQuery(vector)

	e.epMu.Lock()
	if e.ep == -1 {
		e.ep = int64(id)
		e.topLevel = level
		e.epMu.Unlock()
		return nil
	}
	curEp, curTop := uint64(e.ep), e.topLevel
	e.epMu.Unlock()

	e.bumpFetchCount()
	cur, curDist := e.greedyDescend(dc, curTop, level, curEp, dc.DistanceToQuery(curEp))

	top := level
	if curTop < top {
		top = curTop
	}

	e.structuralMu.Lock()
	layers := e.layers
	e.structuralMu.Unlock()

	for lvl := top; lvl >= 0; lvl-- {
		layer := layers[lvl]
		if !e.opts.InitLevel0 && lvl == 0 {
			continue
		}

		pool := e.searchLayer(dc, layer, cur, curDist, e.opts.EfConstruction)
		entries := pool.Entries()
		if len(entries) > 0 {
			cur, curDist = entries[0].ID, entries[0].Distance
		}

		selection := e.selectionAt(lvl)
		kept := e.occludeSelect(entriesToOcclude(entries), e.capAt(lvl), selection, dc)

		ids := make([]int32, len(kept))
		for i, k := range kept {
			ids[i] = int32(k.ID)
		}
		layer.Lock(int(id))
		layer.SetNeighborsLocked(int(id), ids)
		layer.Unlock(int(id))

		for _, k := range kept {
			e.linkBack(layer, lvl, k.ID, id, dc)
		}
	}

	e.epMu.Lock()
	if level > e.topLevel {
		e.ep = int64(id)
		e.topLevel = level
	}
	e.epMu.Unlock()

	return nil
}

// linkBack adds the reverse edge neighbor -> x at level, re-pruning
// neighbor's row back to capacity if the append would overflow it
// (§4.5 step 5).
func (e *Engine) linkBack(layer *graph.Graph, level int, neighbor, x uint64, dc distance.DistanceComputer) {
	n := int(neighbor)
	layer.Lock(n)
	defer layer.Unlock(n)

	if layer.ContainsLocked(n, int32(x)) {
		return
	}
	if layer.AppendLocked(n, int32(x)) {
		return
	}

	existing := layer.Neighbors(n)
	merged := make([]occlude.Candidate, 0, len(existing)+1)
	for _, c := range existing {
		merged = append(merged, occlude.Candidate{
			Distance: dc.SymmetricDistance(neighbor, uint64(c)),
			ID:       uint64(c),
		})
	}
	merged = append(merged, occlude.Candidate{
		Distance: dc.SymmetricDistance(neighbor, x),
		ID:       x,
	})
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Distance != merged[j].Distance {
			return merged[i].Distance < merged[j].Distance
		}
		return merged[i].ID < merged[j].ID
	})

	kept := e.occludeSelect(merged, e.capAt(level), e.selectionAt(level), dc)
	ids := make([]int32, len(kept))
	for i, k := range kept {
		ids[i] = int32(k.ID)
	}
	layer.SetNeighborsLocked(n, ids)
}
