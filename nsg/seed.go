package nsg

import (
	"fmt"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
)

// SeedGraphBuilder builds the approximate KNN seed graph that Build
// refines into the final R-regular graph (§4.6 step 1). gk is the
// per-node fanout of the returned graph.
//
// NNDescent is named in the source (IndexNSG.cpp's build_type==1 path) as
// an alternative to brute force, but is intentionally not implemented
// here (§4.8 of SPEC_FULL.md): no NNDescentSeedBuilder type is registered
// by default, since NNDescent's approximate KNN-graph construction is a
// separate, non-trivial algorithm of its own.
type SeedGraphBuilder interface {
	Build(storage distance.Storage, gk int) (*graph.Graph, error)
}

// BruteForceSeedBuilder builds the seed graph via Storage.Assign, the
// source's build_type==0 path: each node's seed neighbors are the gk
// nearest other stored vectors found by brute-force search.
type BruteForceSeedBuilder struct{}

var _ SeedGraphBuilder = BruteForceSeedBuilder{}

// Build implements SeedGraphBuilder.
func (BruteForceSeedBuilder) Build(storage distance.Storage, gk int) (*graph.Graph, error) {
	n := storage.NTotal()
	if n == 0 {
		return nil, ErrEmptyStorage
	}

	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		v, err := storage.Reconstruct(distance.ID(i))
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}

	neighbors, err := storage.Assign(vectors, gk+1)
	if err != nil {
		return nil, err
	}

	g := graph.New(n, gk, 1)
	for i := 0; i < n; i++ {
		row := make([]int32, 0, gk)
		for _, id := range neighbors[i] {
			// Always filter self by id equality, never positional index,
			// so this works correctly for inner-product ties too (§9
			// resolved open question).
			if int(id) == i {
				continue
			}
			row = append(row, int32(id))
			if len(row) == gk {
				break
			}
		}
		g.Lock(i)
		g.SetNeighborsLocked(i, row)
		g.Unlock(i)
	}
	return g, nil
}

// ErrInvalidSeedGraph is returned by Build when the seed KNN graph
// exceeds Options.MaxInvalidSeedFraction invalid entries (self, out of
// range, or missing because storage held fewer than gk+1 vectors).
type ErrInvalidSeedGraph struct {
	Invalid, Total        int
	Fraction, MaxFraction float64
}

func (e *ErrInvalidSeedGraph) Error() string {
	return fmt.Sprintf("nsg: seed knn graph has %d/%d invalid entries (%.1f%%, max %.1f%%)",
		e.Invalid, e.Total, e.Fraction*100, e.MaxFraction*100)
}

// validateSeedGraph counts invalid entries in g (the source's
// check_knn_graph): an entry is invalid if it is out of range, equal to
// its own row, or simply absent because the row is shorter than gk.
func validateSeedGraph(g *graph.Graph, n, gk int, maxFraction float64) error {
	total := n * gk
	if total == 0 {
		return nil
	}

	invalid := 0
	for i := 0; i < n; i++ {
		row := g.Neighbors(i)
		invalid += gk - len(row)
		for _, id := range row {
			if id < 0 || int(id) >= n || int(id) == i {
				invalid++
			}
		}
	}

	frac := float64(invalid) / float64(total)
	if frac > maxFraction {
		return &ErrInvalidSeedGraph{Invalid: invalid, Total: total, Fraction: frac, MaxFraction: maxFraction}
	}
	return nil
}
