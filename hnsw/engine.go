// Package hnsw implements the HNSW graph engine (C5): multi-level
// insertion with greedy-descent search, heuristic neighbor selection, and
// entry-point maintenance, on top of a distance.Storage.
//
// Grounded on the teacher's simpler, mutex-based hnsw.HNSW (hnsw/hnsw.go),
// generalized from a hard-coded DistanceFunc over raw [][]float32 rows to
// the distance.Storage/DistanceComputer contract, from container/heap
// priority queues to the shared internal/candidates bounded list, and
// from a single global insert mutex to per-row striped locks
// (internal/graph) plus a dedicated entry-point mutex, so that concurrent
// insertion (§5) is actually concurrent rather than serialized.
package hnsw

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/candidates"
	"github.com/hupe1980/navgraph/internal/graph"
	"github.com/hupe1980/navgraph/internal/occlude"
	"github.com/hupe1980/navgraph/internal/visited"
	"golang.org/x/sync/semaphore"
)

// ErrEmptyVector is returned when Insert is given a zero-length vector.
var ErrEmptyVector = errors.New("hnsw: empty vector")

// Engine is the HNSW multi-level graph over a distance.Storage.
type Engine struct {
	storage distance.Storage
	opts    Options
	mL      float64

	sem *semaphore.Weighted

	// structuralMu guards level assignment and layer-graph
	// creation/growth: short critical sections only, never held during
	// search/heuristic-selection work.
	structuralMu sync.Mutex
	levels       []int32
	layers       []*graph.Graph // layers[l] holds adjacency for level l

	// epMu guards the shared entry point / top level, promoted only
	// monotonically (§4.5 step 6).
	epMu     sync.Mutex
	ep       int64
	topLevel int

	rngMu sync.Mutex
	rng   *rand.Rand

	fetchCount *atomic.Uint64 // nil unless fetch-count instrumentation is enabled
}

// New creates an empty HNSW engine over storage.
func New(storage distance.Storage, optFns ...func(*Options)) *Engine {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.setDefaults()

	var sem *semaphore.Weighted
	if opts.MaxThreads > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxThreads))
	}

	return &Engine{
		storage:  storage,
		opts:     opts,
		mL:       1 / math.Log(float64(opts.M)),
		sem:      sem,
		ep:       -1,
		topLevel: -1,
		rng:      rand.New(rand.NewSource(opts.Seed)),
	}
}

// EnableFetchCount turns on the monotonic "last search fetch count"
// instrumentation (§4.7), off by default. It is idempotent.
func (e *Engine) EnableFetchCount() {
	if e.fetchCount == nil {
		e.fetchCount = &atomic.Uint64{}
	}
}

// FetchCount returns the number of distance evaluations performed since
// the counter was enabled, or 0 if instrumentation is disabled.
func (e *Engine) FetchCount() uint64 {
	if e.fetchCount == nil {
		return 0
	}
	return e.fetchCount.Load()
}

func (e *Engine) bumpFetchCount() {
	if e.fetchCount != nil {
		e.fetchCount.Add(1)
	}
}

// NTotal returns the number of nodes inserted into the graph.
func (e *Engine) NTotal() int {
	e.structuralMu.Lock()
	defer e.structuralMu.Unlock()
	return len(e.levels)
}

// Reset clears the graph back to empty. The underlying storage is not
// touched; callers reset it separately (§3 lifecycle: "reset clears both
// engine and storage").
func (e *Engine) Reset() {
	e.structuralMu.Lock()
	e.levels = nil
	e.layers = nil
	e.structuralMu.Unlock()

	e.epMu.Lock()
	e.ep = -1
	e.topLevel = -1
	e.epMu.Unlock()
}

// drawLevel samples a level from the geometric distribution of §3:
// ℓ = ⌊−ln(U)·mL⌋, U ~ Uniform(0,1].
func (e *Engine) drawLevel() int {
	e.rngMu.Lock()
	u := e.rng.Float64()
	e.rngMu.Unlock()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(u) * e.mL))
}

func (e *Engine) capAt(level int) int {
	if level == 0 {
		return e.opts.M0
	}
	return e.opts.M
}

func (e *Engine) selectionAt(level int) EdgeSelection {
	if !e.opts.Heuristic {
		return FillToCap
	}
	if level == 0 {
		return e.opts.Level0Selection
	}
	return PruneHeuristic
}

// acquireWorker blocks until a worker slot is available, honoring MaxThreads.
// Returns a no-op release function if unbounded.
func (e *Engine) acquireWorker() func() {
	if e.sem == nil {
		return func() {}
	}
	_ = e.sem.Acquire(context.Background(), 1) //nolint:errcheck // background context never errors
	return func() { e.sem.Release(1) }
}

// Candidate is one search result: a node id and its output-facing
// distance (already re-negated for inner product, per distance.Output).
type Candidate struct {
	ID       uint64
	Distance float32
}

func entriesToOcclude(entries []candidates.Entry) []occlude.Candidate {
	out := make([]occlude.Candidate, len(entries))
	for i, c := range entries {
		out[i] = occlude.Candidate{Distance: c.Distance, ID: c.ID}
	}
	return out
}

func (e *Engine) occludeSelect(cands []occlude.Candidate, cap int, sel EdgeSelection, dc distance.DistanceComputer) []occlude.Candidate {
	switch sel {
	case FillToCap:
		return occlude.FillToCap(cands, cap)
	default:
		return occlude.Select(cands, cap, func(a, b uint64) float32 {
			e.bumpFetchCount()
			return dc.SymmetricDistance(a, b)
		})
	}
}

func newVisitedSet(n int) *visited.Set {
	if n < 1 {
		n = 1
	}
	return visited.New(n)
}
