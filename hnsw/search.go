package hnsw

import (
	"math"

	"github.com/hupe1980/navgraph/distance"
)

// NoID is the sentinel id filling unused result slots, the Go
// representation of the source's "-1" node-id sentinel (§7: "k > ntotal
// returns up to ntotal results and fills remaining id slots with -1").
const NoID = ^uint64(0)

func sentinelResults(k int) []Candidate {
	out := make([]Candidate, k)
	for i := range out {
		out[i] = Candidate{ID: NoID, Distance: float32(math.Inf(1))}
	}
	return out
}

// Search runs the greedy-descent + bounded best-first top-k query of
// §4.5's search algorithm, with ef = max(efSearch, k). Results are sorted
// by ascending distance with ties broken by ascending id (§5). An empty
// index or k > ntotal returns sentinel (NoID, +Inf) pairs for the
// remaining slots rather than an error (§7 numeric edge cases).
func (e *Engine) Search(query []float32, k int, efSearch int) []Candidate {
	e.structuralMu.Lock()
	n := len(e.levels)
	layers := e.layers
	e.structuralMu.Unlock()

	if n == 0 || k <= 0 {
		return sentinelResults(k)
	}

	release := e.acquireWorker()
	defer release()

	ef := efSearch
	if ef <= 0 {
		ef = e.opts.EfSearch
	}
	if k > ef {
		ef = k
	}

	dc := e.storage.DistanceComputer()
	dc.SetQuery(query)

	cur, curDist := e.entryPointFor(dc, n)

	if !e.opts.BaseLevelOnly {
		e.epMu.Lock()
		top := e.topLevel
		e.epMu.Unlock()
		cur, curDist = e.greedyDescend(dc, top, 0, cur, curDist)
	}

	pool := e.searchLayer(dc, layers[0], cur, curDist, ef)
	entries := pool.Entries()

	out := make([]Candidate, k)
	metric := e.storage.Metric()
	for i := 0; i < k; i++ {
		if i < len(entries) {
			out[i] = Candidate{ID: entries[i].ID, Distance: distance.Output(metric, entries[i].Distance)}
		} else {
			out[i] = Candidate{ID: NoID, Distance: float32(math.Inf(1))}
		}
	}
	return out
}

// entryPointFor resolves the starting node for a query: the maintained
// global entry point normally, or NumBaseLevelSearchEntrypoints randomly
// sampled level-0 nodes scored against the query for the CAGRA
// base-level-only search path (§4.5 point 4).
func (e *Engine) entryPointFor(dc distance.DistanceComputer, n int) (uint64, float32) {
	if !e.opts.BaseLevelOnly {
		e.epMu.Lock()
		ep := uint64(e.ep)
		e.epMu.Unlock()
		e.bumpFetchCount()
		return ep, dc.DistanceToQuery(ep)
	}

	count := e.opts.NumBaseLevelSearchEntrypoints
	if count > n {
		count = n
	}
	e.rngMu.Lock()
	bestID := uint64(e.rng.Intn(n))
	e.rngMu.Unlock()
	e.bumpFetchCount()
	bestDist := dc.DistanceToQuery(bestID)
	for i := 1; i < count; i++ {
		e.rngMu.Lock()
		id := uint64(e.rng.Intn(n))
		e.rngMu.Unlock()
		e.bumpFetchCount()
		d := dc.DistanceToQuery(id)
		if d < bestDist {
			bestID, bestDist = id, d
		}
	}
	return bestID, bestDist
}

// RangeSearch returns every node within radius of query, sorted by
// ascending distance (§4.5 "range search"). It runs the same best-first
// traversal as Search but with a generously sized pool (rather than a
// k-cap) so that nodes beyond the pool's retained window are not missed;
// this trades memory for the documented ≥0.95 recall target in §8 rather
// than guaranteeing exact recall, matching the approximate nature of the
// index.
func (e *Engine) RangeSearch(query []float32, radius float32) []Candidate {
	e.structuralMu.Lock()
	n := len(e.levels)
	layers := e.layers
	e.structuralMu.Unlock()

	if n == 0 {
		return nil
	}

	release := e.acquireWorker()
	defer release()

	poolCap := 4 * e.opts.EfSearch
	if poolCap > n {
		poolCap = n
	}
	if poolCap < 1 {
		poolCap = 1
	}

	dc := e.storage.DistanceComputer()
	dc.SetQuery(query)

	cur, curDist := e.entryPointFor(dc, n)
	e.epMu.Lock()
	top := e.topLevel
	e.epMu.Unlock()
	if !e.opts.BaseLevelOnly {
		cur, curDist = e.greedyDescend(dc, top, 0, cur, curDist)
	}

	pool := e.searchLayer(dc, layers[0], cur, curDist, poolCap)

	metric := e.storage.Metric()
	var out []Candidate
	for _, entry := range pool.Entries() {
		if entry.Distance <= radius {
			out = append(out, Candidate{ID: entry.ID, Distance: distance.Output(metric, entry.Distance)})
		}
	}
	return out
}
