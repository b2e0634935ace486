package nsg

import (
	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/candidates"
	"github.com/hupe1980/navgraph/internal/graph"
	"github.com/hupe1980/navgraph/internal/occlude"
	"github.com/hupe1980/navgraph/internal/visited"
)

// searchOnGraph implements the source's search_on_graph: a bounded
// best-first beam search over g. Unlike hnsw's searchLayer (which seeds
// the pool with a single entry point), this seeds the pool with ep's own
// neighbor list, then fills any remaining slots with randomly sampled
// unvisited ids, before running the same expand-nearest-unexpanded loop.
// When collectFullset is true, every distance-evaluated node (not just
// the ones surviving in the bounded pool) is also returned, feeding
// sync_prune's wider candidate set.
func (e *Engine) searchOnGraph(g *graph.Graph, dc distance.DistanceComputer, vis *visited.Set, ep int, poolSize int, collectFullset bool) (*candidates.List, []occlude.Candidate) {
	n := g.N()
	if poolSize > n {
		poolSize = n
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool := candidates.New(poolSize)
	var fullset []occlude.Candidate

	seedIDs := make([]int, 0, poolSize)
	for _, nb := range g.Neighbors(ep) {
		if len(seedIDs) >= poolSize {
			break
		}
		id := int(nb)
		if id < 0 || id >= n || vis.IsMarked(uint64(id)) {
			continue
		}
		vis.Mark(uint64(id))
		seedIDs = append(seedIDs, id)
	}
	for len(seedIDs) < poolSize {
		id := e.randID(n)
		if vis.IsMarked(uint64(id)) {
			continue
		}
		vis.Mark(uint64(id))
		seedIDs = append(seedIDs, id)
	}

	for _, id := range seedIDs {
		e.bumpFetchCount()
		d := dc.DistanceToQuery(uint64(id))
		pool.Insert(d, uint64(id))
		if collectFullset {
			fullset = append(fullset, occlude.Candidate{ID: uint64(id), Distance: d})
		}
	}

	for {
		idx := pool.FirstUnexpanded()
		if idx == pool.Len() {
			break
		}
		entry := pool.At(idx)
		pool.MarkExpanded(idx)

		for _, nb := range g.Neighbors(int(entry.ID)) {
			id := int(nb)
			if id < 0 || id >= n || vis.IsMarked(uint64(id)) {
				continue
			}
			vis.Mark(uint64(id))

			e.bumpFetchCount()
			d := dc.DistanceToQuery(uint64(id))
			if collectFullset {
				fullset = append(fullset, occlude.Candidate{ID: uint64(id), Distance: d})
			}
			pool.Insert(d, uint64(id))
		}
	}

	return pool, fullset
}
