package nsg

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/navgraph/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEngine(t *testing.T, d, r, gk int, metric distance.Metric, vectors [][]float32) (*Engine, *distance.FlatStorage) {
	t.Helper()
	storage := distance.NewFlatStorage(d, metric)
	_, err := storage.Add(vectors)
	require.NoError(t, err)

	eng := New(storage, func(o *Options) {
		o.R = r
		o.GK = gk
		o.Seed = 7
	})
	require.NoError(t, eng.Build(context.Background()))
	return eng, storage
}

func randomGaussianVectors(d, n int, seed int64) [][]float32 {
	r := rand.New(rand.NewSource(seed))
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, d)
		for j := range v {
			v[j] = float32(r.NormFloat64())
		}
		out[i] = v
	}
	return out
}

// Scenario 3: d=8, R=16, GK=32 on 1024 random gaussian vectors; post-build
// DFS from enterpoint visits exactly 1024 nodes (the graph is weakly
// connected).
func TestScenarioConnectivity(t *testing.T) {
	d, n := 8, 1024
	vectors := randomGaussianVectors(d, n, 1)
	eng, _ := buildEngine(t, d, 16, 32, distance.L2, vectors)

	ep, ok := eng.EnterPoint()
	require.True(t, ok)

	visitedCount := 0
	stack := []int{int(ep)}
	seen := make([]bool, n)
	seen[ep] = true
	visitedCount++
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range eng.Neighbors(uint64(node)) {
			if !seen[nb] {
				seen[nb] = true
				visitedCount++
				stack = append(stack, int(nb))
			}
		}
	}
	assert.Equal(t, n, visitedCount)
}

// Scenario 5: inner-product NSG returns positive similarities in
// descending order, and the top-1 for a known query equals the
// brute-force argmax.
func TestScenarioInnerProduct(t *testing.T) {
	d, n := 6, 400
	vectors := randomGaussianVectors(d, n, 2)
	eng, storage := buildEngine(t, d, 16, 32, distance.InnerProduct, vectors)

	query := vectors[0]

	var bestID int
	var bestScore float32 = float32(math.Inf(-1))
	for i, v := range vectors {
		var dot float32
		for j := range v {
			dot += v[j] * query[j]
		}
		if dot > bestScore {
			bestScore, bestID = dot, i
		}
	}

	results := eng.Search(query, 5, 64)
	require.Len(t, results, 5)
	assert.Equal(t, uint64(bestID), results[0].ID)
	assert.InDelta(t, bestScore, results[0].Distance, 1e-3)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
	_ = storage
}

func TestBuildTwiceFails(t *testing.T) {
	eng, _ := buildEngine(t, 3, 8, 16, distance.L2, randomGaussianVectors(3, 50, 3))
	err := eng.Build(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestBuildEmptyStorageFails(t *testing.T) {
	storage := distance.NewFlatStorage(4, distance.L2)
	eng := New(storage)
	err := eng.Build(context.Background())
	assert.ErrorIs(t, err, ErrEmptyStorage)
}

func TestSearchBeforeBuildReturnsSentinels(t *testing.T) {
	storage := distance.NewFlatStorage(4, distance.L2)
	eng := New(storage)
	results := eng.Search([]float32{1, 2, 3, 4}, 3, 32)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, NoID, r.ID)
		assert.True(t, math.IsInf(float64(r.Distance), 1))
	}
}

func TestAdjacencyRespectsRAndNoDuplicatesOrSelf(t *testing.T) {
	d, n, r := 5, 300, 12
	eng, _ := buildEngine(t, d, r, 24, distance.L2, randomGaussianVectors(d, n, 4))

	for id := 0; id < n; id++ {
		row := eng.Neighbors(uint64(id))
		assert.LessOrEqual(t, len(row), r)

		seen := map[int32]bool{}
		for _, nb := range row {
			assert.NotEqual(t, int32(id), nb)
			assert.False(t, seen[nb], "duplicate neighbor")
			seen[nb] = true
		}
	}
}

func TestDegreeHistogramSumsToNTotal(t *testing.T) {
	n := 200
	eng, _ := buildEngine(t, 4, 8, 16, distance.L2, randomGaussianVectors(4, n, 5))
	hist := eng.DegreeHistogram()

	total := 0
	for _, count := range hist {
		total += count
	}
	assert.Equal(t, n, total)
}

func TestKGreaterThanNTotalFillsSentinels(t *testing.T) {
	eng, _ := buildEngine(t, 3, 8, 4, distance.L2, randomGaussianVectors(3, 5, 6))
	results := eng.Search([]float32{0, 0, 0}, 8, 32)
	require.Len(t, results, 8)
	assert.Equal(t, NoID, results[7].ID)
}
