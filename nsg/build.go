package nsg

import (
	"context"
	"errors"
	"sort"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
	"github.com/hupe1980/navgraph/internal/occlude"
	"github.com/hupe1980/navgraph/internal/visited"
)

// Build runs the one-shot NSG construction of §4.6 over every vector
// currently in storage: seed KNN graph, medoid selection, occlusion-rule
// link/prune, reverse-edge linking, and connectivity repair. Build may
// only be called once; a second call returns ErrAlreadyBuilt.
func (e *Engine) Build(ctx context.Context) error {
	e.mu.Lock()
	if e.built {
		e.mu.Unlock()
		return ErrAlreadyBuilt
	}
	e.mu.Unlock()

	n := e.storage.NTotal()
	if n == 0 {
		return ErrEmptyStorage
	}

	seed, err := e.opts.SeedGraphBuilder.Build(e.storage, e.opts.GK)
	if err != nil {
		return err
	}
	if err := validateSeedGraph(seed, n, e.opts.GK, e.opts.MaxInvalidSeedFraction); err != nil {
		return err
	}

	enterpoint, err := e.selectMedoid(n)
	if err != nil {
		return err
	}

	g := graph.New(n, e.opts.R, e.stripeCount())
	if err := e.link(ctx, seed, g, enterpoint, n); err != nil {
		return err
	}

	degrees := make([]int32, n)
	for i := 0; i < n; i++ {
		degrees[i] = int32(g.Degree(i))
	}

	attached, err := e.treeGrow(g, degrees, enterpoint, n)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.g = g
	e.enterpoint = int64(enterpoint)
	e.built = true
	e.mu.Unlock()

	if e.opts.Logger != nil {
		hist := e.DegreeHistogram()
		e.opts.Logger.Debug("nsg build complete", "n", n, "r", e.opts.R, "attached", attached, "degree_histogram", hist)
	}
	return nil
}

// selectMedoid implements the source's init_graph: compute the centroid
// of the dataset, then return the stored node nearest to it under the
// index metric, found by a linear scan over all n vectors (§4.6 step 2).
func (e *Engine) selectMedoid(n int) (int, error) {
	d := e.storage.Dim()
	center := make([]float32, d)
	for i := 0; i < n; i++ {
		v, err := e.storage.Reconstruct(distance.ID(i))
		if err != nil {
			return 0, err
		}
		for j := 0; j < d; j++ {
			center[j] += v[j]
		}
	}
	for j := 0; j < d; j++ {
		center[j] /= float32(n)
	}

	dc := e.storage.DistanceComputer()
	dc.SetQuery(center)

	best := 0
	e.bumpFetchCount()
	bestDist := dc.DistanceToQuery(0)
	for i := 1; i < n; i++ {
		e.bumpFetchCount()
		if d := dc.DistanceToQuery(distance.ID(i)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// link implements the source's link(): for every node, search the seed
// graph for a candidate pool, sync_prune it down to R, write the
// resulting edges, then add reciprocal edges for every kept edge (§4.6
// steps 3-4). The two passes run as separate barriers, matching the
// source's two sequential omp-parallel-for loops: every sync_prune write
// finishes before any reverse-link read begins.
func (e *Engine) link(ctx context.Context, seed *graph.Graph, g *graph.Graph, enterpoint int, n int) error {
	err := e.forEachNode(ctx, n, func(i int) error {
		vec, err := e.storage.Reconstruct(distance.ID(i))
		if err != nil {
			return err
		}
		dc := e.storage.DistanceComputer()
		dc.SetQuery(vec)

		vis := visited.New(n)
		_, fullset := e.searchOnGraph(seed, dc, vis, enterpoint, e.opts.L, true)
		kept := e.syncPrune(i, fullset, dc, vis, seed)

		ids := make([]int32, len(kept))
		for k, c := range kept {
			ids[k] = int32(c.ID)
		}
		g.Lock(i)
		g.SetNeighborsLocked(i, ids)
		g.Unlock(i)
		return nil
	})
	if err != nil {
		return err
	}

	return e.forEachNode(ctx, n, func(i int) error {
		dc := e.storage.DistanceComputer()
		neighbors := g.Neighbors(i)
		kept := make([]occlude.Candidate, len(neighbors))
		for k, nb := range neighbors {
			kept[k] = occlude.Candidate{ID: uint64(nb), Distance: dc.SymmetricDistance(uint64(i), uint64(nb))}
		}
		e.addReverseLinks(i, kept, g, dc)
		return nil
	})
}

// syncPrune implements the source's sync_prune: given the raw
// distance-to-q candidate pool gathered during searchOnGraph plus any of
// q's direct seed neighbors the walk missed, keep at most R occluded
// neighbors (§4.6 step 3).
func (e *Engine) syncPrune(q int, pool []occlude.Candidate, dc distance.DistanceComputer, vis *visited.Set, seed *graph.Graph) []occlude.Candidate {
	n := seed.N()
	for _, nb := range seed.Neighbors(q) {
		id := int(nb)
		if id < 0 || id >= n || vis.IsMarked(uint64(id)) {
			continue
		}
		e.bumpFetchCount()
		pool = append(pool, occlude.Candidate{ID: uint64(id), Distance: dc.DistanceToQuery(uint64(id))})
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Distance != pool[j].Distance {
			return pool[i].Distance < pool[j].Distance
		}
		return pool[i].ID < pool[j].ID
	})

	start := 0
	if len(pool) > 0 && pool[start].ID == uint64(q) {
		start++
	}
	if start >= len(pool) {
		return nil
	}

	kept := make([]occlude.Candidate, 0, e.opts.R)
	kept = append(kept, pool[start])

	for len(kept) < e.opts.R {
		start++
		if start >= len(pool) || start >= e.opts.C {
			break
		}
		c := pool[start]
		occluded := false
		for _, k := range kept {
			if c.ID == k.ID {
				occluded = true
				break
			}
			e.bumpFetchCount()
			// Strictly less-than (not <=, unlike internal/occlude.Select)
			// to match the source exactly.
			if dc.SymmetricDistance(k.ID, c.ID) < c.Distance {
				occluded = true
				break
			}
		}
		if !occluded {
			kept = append(kept, c)
		}
	}
	return kept
}

// addReverseLinks implements the source's add_reverse_links: for every
// edge q -> des kept by syncPrune, also insert the reciprocal edge
// des -> q, re-pruning des's row back to R if it would overflow (§4.6
// step 4).
func (e *Engine) addReverseLinks(q int, kept []occlude.Candidate, g *graph.Graph, dc distance.DistanceComputer) {
	for _, edge := range kept {
		des := int(edge.ID)

		g.Lock(des)
		if g.ContainsLocked(des, int32(q)) {
			g.Unlock(des)
			continue
		}
		if g.AppendLocked(des, int32(q)) {
			g.Unlock(des)
			continue
		}

		existing := g.Neighbors(des)
		merged := make([]occlude.Candidate, 0, len(existing)+1)
		for _, nb := range existing {
			e.bumpFetchCount()
			merged = append(merged, occlude.Candidate{ID: uint64(nb), Distance: dc.SymmetricDistance(uint64(des), uint64(nb))})
		}
		merged = append(merged, occlude.Candidate{ID: uint64(q), Distance: edge.Distance})
		sort.Slice(merged, func(i, j int) bool {
			if merged[i].Distance != merged[j].Distance {
				return merged[i].Distance < merged[j].Distance
			}
			return merged[i].ID < merged[j].ID
		})

		newKept := make([]occlude.Candidate, 0, g.Fanout())
		newKept = append(newKept, merged[0])
		for idx := 1; idx < len(merged) && len(newKept) < g.Fanout(); idx++ {
			c := merged[idx]
			occluded := false
			for _, k := range newKept {
				if c.ID == k.ID {
					occluded = true
					break
				}
				e.bumpFetchCount()
				if dc.SymmetricDistance(k.ID, c.ID) < c.Distance {
					occluded = true
					break
				}
			}
			if !occluded {
				newKept = append(newKept, c)
			}
		}

		ids := make([]int32, len(newKept))
		for i, k := range newKept {
			ids[i] = int32(k.ID)
		}
		g.SetNeighborsLocked(des, ids)
		g.Unlock(des)
	}
}

// treeGrow implements the source's tree_grow: repeatedly DFS from
// enterpoint; whenever unreached nodes remain, attach one via
// attachUnlinked and continue from it, until the whole graph is a single
// connected component (§4.6 step 5).
func (e *Engine) treeGrow(g *graph.Graph, degrees []int32, enterpoint, n int) (int, error) {
	vis := visited.New(n)
	attached := 0
	cnt := 0
	for {
		cnt = dfs(g, vis, enterpoint, cnt)
		if cnt >= n {
			break
		}

		next, err := e.attachUnlinked(g, degrees, vis, enterpoint, n)
		if err != nil {
			return attached, err
		}
		enterpoint = next
		attached++
	}
	return attached, nil
}

// dfs implements the source's iterative stack-based dfs, returning the
// running count of distinct nodes visited so far.
func dfs(g *graph.Graph, vis *visited.Set, root, cnt int) int {
	if !vis.IsMarked(uint64(root)) {
		cnt++
	}
	vis.Mark(uint64(root))

	stack := []int{root}
	node := root
	for len(stack) > 0 {
		next := -1
		for _, nb := range g.Neighbors(node) {
			id := int(nb)
			if !vis.IsMarked(uint64(id)) {
				next = id
				break
			}
		}

		if next == -1 {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				break
			}
			node = stack[len(stack)-1]
			continue
		}

		node = next
		vis.Mark(uint64(node))
		stack = append(stack, node)
		cnt++
	}
	return cnt
}

// attachUnlinked implements the source's attach_unlinked: find an
// unreached node, search the graph built so far from enterpoint for the
// nearest reached node with spare out-degree, and link the unreached node
// in as its neighbor. This keeps every node's degree at most R, unlike
// the paper's original "attach to nearest tree node" rule (a deviation
// the source itself documents). Returns the node that received the new
// edge, so treeGrow can re-root DFS through it.
func (e *Engine) attachUnlinked(g *graph.Graph, degrees []int32, vis *visited.Set, enterpoint, n int) (int, error) {
	unlinked := -1
	for i := 0; i < n; i++ {
		if !vis.IsMarked(uint64(i)) {
			unlinked = i
			break
		}
	}
	if unlinked == -1 {
		return 0, errors.New("nsg: attach_unlinked called with no unlinked node")
	}

	vec, err := e.storage.Reconstruct(distance.ID(unlinked))
	if err != nil {
		return 0, err
	}
	dc := e.storage.DistanceComputer()
	dc.SetQuery(vec)

	scratch := visited.New(n)
	_, fullset := e.searchOnGraph(g, dc, scratch, enterpoint, e.opts.SearchL, true)
	sort.Slice(fullset, func(i, j int) bool {
		if fullset[i].Distance != fullset[j].Distance {
			return fullset[i].Distance < fullset[j].Distance
		}
		return fullset[i].ID < fullset[j].ID
	})

	node := -1
	for _, c := range fullset {
		if int(c.ID) != unlinked && vis.IsMarked(c.ID) && int(degrees[c.ID]) < g.Fanout() {
			node = int(c.ID)
			break
		}
	}

	if node == -1 {
		// Fallback for the case the source's own random-retry loop can
		// spin forever on: scan already-reached nodes deterministically
		// for the first one with spare degree.
		for i := 0; i < n; i++ {
			if vis.IsMarked(uint64(i)) && i != unlinked && int(degrees[i]) < g.Fanout() {
				node = i
				break
			}
		}
	}
	if node == -1 {
		return 0, errors.New("nsg: attach_unlinked found no reached node with spare degree")
	}

	g.Lock(node)
	g.AppendLocked(node, int32(unlinked))
	g.Unlock(node)
	degrees[node]++

	return node, nil
}
