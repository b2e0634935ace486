package nsg

// EnterPoint returns the medoid-derived entry point id chosen during
// Build. ok is false if the engine has not been built.
func (e *Engine) EnterPoint() (id uint64, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return 0, false
	}
	return uint64(e.enterpoint), true
}

// Neighbors returns node id's live adjacency row, or nil if the engine
// has not been built.
func (e *Engine) Neighbors(id uint64) []int32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return nil
	}
	return e.g.Neighbors(int(id))
}

// DegreeHistogram returns, for each observed out-degree, the number of
// nodes holding it — a lightweight in-memory diagnostic (§4.8), replacing
// the source's file-dump print_neighbor_stats/save_degree_distribution.
func (e *Engine) DegreeHistogram() map[int]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return nil
	}

	hist := make(map[int]int)
	for i := 0; i < e.g.N(); i++ {
		hist[e.g.Degree(i)]++
	}
	return hist
}
