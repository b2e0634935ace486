package hnsw

// EntryPoint returns the current global entry point id and its level. ok
// is false for an empty graph.
func (e *Engine) EntryPoint() (id uint64, level int, ok bool) {
	e.epMu.Lock()
	defer e.epMu.Unlock()
	if e.ep == -1 {
		return 0, 0, false
	}
	return uint64(e.ep), e.topLevel, true
}

// Level returns the level assigned to node id at insertion time.
func (e *Engine) Level(id uint64) int {
	e.structuralMu.Lock()
	defer e.structuralMu.Unlock()
	if int(id) >= len(e.levels) {
		return -1
	}
	return int(e.levels[id])
}

// Neighbors returns node id's live adjacency row at level, or nil if
// level does not exist.
func (e *Engine) Neighbors(id uint64, level int) []int32 {
	e.structuralMu.Lock()
	layers := e.layers
	e.structuralMu.Unlock()
	if level < 0 || level >= len(layers) {
		return nil
	}
	return layers[level].Neighbors(int(id))
}

// LevelHistogram returns, for each level present in the graph, the number
// of nodes assigned to it — a lightweight in-memory diagnostic (§4.8),
// deliberately not writing to disk (out of scope per §1).
func (e *Engine) LevelHistogram() map[int]int {
	e.structuralMu.Lock()
	defer e.structuralMu.Unlock()

	hist := make(map[int]int)
	for _, lvl := range e.levels {
		if lvl < 0 {
			continue
		}
		hist[int(lvl)]++
	}
	return hist
}
