package hnsw

import (
	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/candidates"
	"github.com/hupe1980/navgraph/internal/graph"
)

// greedyDescend performs the single-shortest-path descent of §4.5 step 2 /
// §4.5 search step 1: starting from cur at the top, repeatedly move to
// whichever neighbor at the given level most improves distance to the
// query, until no neighbor improves, for each level from `from` down to
// `to+1` (exclusive of `to`).
func (e *Engine) greedyDescend(dc distance.DistanceComputer, from, to int, cur uint64, curDist float32) (uint64, float32) {
	for level := from; level > to; level-- {
		if level >= len(e.layers) {
			continue
		}
		layer := e.layers[level]
		changed := true
		for changed {
			changed = false
			for _, n := range layer.Neighbors(int(cur)) {
				e.bumpFetchCount()
				d := dc.DistanceToQuery(uint64(n))
				if d < curDist {
					cur, curDist = uint64(n), d
					changed = true
				}
			}
		}
	}
	return cur, curDist
}

// searchLayer runs the bounded best-first traversal of §4.3/§4.5 step 3
// at a single level, starting from (epID, epDist), expanding through
// layer's adjacency until the candidate list is exhausted (no
// unexpanded entry remains worth expanding).
func (e *Engine) searchLayer(dc distance.DistanceComputer, layer *graph.Graph, epID uint64, epDist float32, ef int) *candidates.List {
	vs := newVisitedSet(layer.N())
	vs.Mark(epID)

	pool := candidates.New(ef)
	pool.Insert(epDist, epID)

	for {
		idx := pool.FirstUnexpanded()
		if idx == pool.Len() {
			break
		}
		entry := pool.At(idx)
		pool.MarkExpanded(idx)

		if worst, ok := pool.Worst(); ok && pool.Full() && entry.Distance > worst.Distance {
			break
		}

		for _, n := range layer.Neighbors(int(entry.ID)) {
			id := uint64(n)
			if vs.IsMarked(id) {
				continue
			}
			vs.Mark(id)

			e.bumpFetchCount()
			d := dc.DistanceToQuery(id)
			pool.Insert(d, id)
		}
	}
	return pool
}
