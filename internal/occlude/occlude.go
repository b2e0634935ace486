// Package occlude implements the occlusion (heuristic) neighbor-selection
// rule shared by HNSW's selectNeighborsHeuristic (§4.5 step 4) and NSG's
// sync_prune (§4.6 step 3): accept candidate c for query q iff no
// already-accepted neighbor k is closer to c than q is, i.e.
//
//	dist(c, k) > dist(c, q)  for every already-kept k
//
// This prunes redundant edges while preserving navigation diversity,
// grounded on the shared derivation in faiss's NSG::sync_prune and the
// teacher's hnsw.selectNeighboursHeuristic.
package occlude

// Candidate is one distance-to-query, id pair under consideration.
// Candidates passed to Select must already be sorted ascending by
// Distance (nearest to the query first).
type Candidate struct {
	Distance float32
	ID       uint64
}

// SymmetricDistanceFunc returns the distance between two stored vectors,
// independent of any query.
type SymmetricDistanceFunc func(a, b uint64) float32

// Select applies the occlusion rule to ascending-sorted candidates,
// keeping at most cap of them. It always keeps the nearest candidate
// first (there is nothing yet to occlude it), then greedily admits each
// subsequent candidate only if every already-kept neighbor is farther
// from it than the query is.
func Select(candidates []Candidate, cap int, symmetric SymmetricDistanceFunc) []Candidate {
	if cap <= 0 || len(candidates) == 0 {
		return nil
	}

	kept := make([]Candidate, 0, cap)
	for _, c := range candidates {
		if len(kept) >= cap {
			break
		}
		ok := true
		for _, k := range kept {
			if symmetric(c.ID, k.ID) <= c.Distance {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, c)
		}
	}
	return kept
}

// FillToCap is the alternate edge-selection strategy named in
// SPEC_FULL.md §9 (the CAGRA "keep_max_size_level0" mode): it performs no
// pruning at all, simply truncating ascending-sorted candidates to cap
// without applying the occlusion test.
func FillToCap(candidates []Candidate, cap int) []Candidate {
	if cap > len(candidates) {
		cap = len(candidates)
	}
	out := make([]Candidate, cap)
	copy(out, candidates[:cap])
	return out
}
