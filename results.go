package navgraph

import (
	"math"

	"github.com/hupe1980/navgraph/hnsw"
	"github.com/hupe1980/navgraph/nsg"
)

// NoID is the sentinel id filling unused result slots, shared by both
// underlying engines.
const NoID = ^uint64(0)

// Candidate is one unified search result across both engines: a node id
// and its output-facing distance (already re-negated for inner product).
type Candidate struct {
	ID       uint64
	Distance float32
}

func fromHNSW(in []hnsw.Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		out[i] = Candidate{ID: c.ID, Distance: c.Distance}
	}
	return out
}

func fromNSG(in []nsg.Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		out[i] = Candidate{ID: c.ID, Distance: c.Distance}
	}
	return out
}

// overfetchK expands the pool size passed to the underlying engine when a
// selector is present, since filtered-out nodes still consume slots in
// the bounded candidate pool before being dropped at the façade boundary.
// This is an approximation, not an exact top-k guarantee: a selector that
// rejects most of the graph can still starve the returned set, the same
// recall/memory tradeoff RangeSearch documents.
func overfetchK(k, ntotal int, selector Selector) int {
	if selector == nil {
		return k
	}
	want := k * 4
	if want > ntotal {
		want = ntotal
	}
	if want < k {
		want = k
	}
	return want
}

// filterCandidates drops entries the selector rejects and any sentinel
// entries, then truncates or pads the result to exactly k entries.
func filterCandidates(in []Candidate, k int, selector Selector) []Candidate {
	out := make([]Candidate, 0, k)
	for _, c := range in {
		if c.ID == NoID {
			continue
		}
		if selector != nil && !selector.Contains(c.ID) {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			return out
		}
	}
	for len(out) < k {
		out = append(out, Candidate{ID: NoID, Distance: float32(math.Inf(1))})
	}
	return out
}

// filterRange drops entries the selector rejects from a range search
// result. A nil selector passes every entry through unchanged.
func filterRange(in []Candidate, selector Selector) []Candidate {
	if selector == nil {
		return in
	}
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if selector.Contains(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
