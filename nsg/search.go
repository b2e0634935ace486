package nsg

import (
	"math"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/visited"
)

func sentinelResults(k int) []Candidate {
	out := make([]Candidate, k)
	for i := range out {
		out[i] = Candidate{ID: NoID, Distance: float32(math.Inf(1))}
	}
	return out
}

// Search runs the bounded best-first traversal of §4.6 "Search" from the
// medoid-derived enterpoint, returning up to k results ascending by
// distance with ties broken by ascending id. An unbuilt engine, empty
// index, or k<=0 returns sentinel (NoID, +Inf) entries rather than an
// error (§7 numeric edge cases).
func (e *Engine) Search(query []float32, k int, searchL int) []Candidate {
	e.mu.RLock()
	built := e.built
	g := e.g
	ep := e.enterpoint
	e.mu.RUnlock()

	if !built || k <= 0 {
		return sentinelResults(k)
	}

	release := e.acquireWorker()
	defer release()

	n := g.N()
	poolSize := searchL
	if poolSize <= 0 {
		poolSize = e.opts.SearchL
	}
	if k > poolSize {
		poolSize = k
	}

	dc := e.storage.DistanceComputer()
	dc.SetQuery(query)
	vis := visited.New(n)

	pool, _ := e.searchOnGraph(g, dc, vis, int(ep), poolSize, false)

	metric := e.storage.Metric()
	entries := pool.Entries()
	out := make([]Candidate, k)
	for i := 0; i < k; i++ {
		if i < len(entries) {
			out[i] = Candidate{ID: entries[i].ID, Distance: distance.Output(metric, entries[i].Distance)}
		} else {
			out[i] = Candidate{ID: NoID, Distance: float32(math.Inf(1))}
		}
	}
	return out
}
