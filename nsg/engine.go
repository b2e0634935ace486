// Package nsg implements the NSG (Navigating Spreading-out Graph) engine
// (C6): a one-shot, medoid-centered build over a seed KNN graph, pruned by
// the occlusion rule and repaired into a single connected component, on
// top of a distance.Storage.
//
// Grounded directly on the source's impl/NSG.h/NSG.cpp and IndexNSG.cpp:
// init_graph (medoid selection), link/sync_prune (occlusion-rule pruning
// of the seed graph into the final R-regular graph), add_reverse_links
// (reciprocal edges with re-pruning), and tree_grow/dfs/attach_unlinked
// (connectivity repair). Unlike the teacher's omp-parallel-for loops, this
// implementation uses bounded goroutine fan-out (internal/graph's striped
// locks plus a golang.org/x/sync/semaphore.Weighted worker cap) and the
// shared internal/candidates, internal/visited, and internal/occlude
// packages already built for the hnsw engine.
package nsg

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/internal/graph"
	"golang.org/x/sync/semaphore"
)

// ErrAlreadyBuilt is returned by Build when the engine has already been
// built; NSG does not support incremental addition (§4.6 failure
// semantics).
var ErrAlreadyBuilt = errors.New("nsg: index already built; NSG does not support incremental addition")

// ErrEmptyStorage is returned by Build when storage holds no vectors.
var ErrEmptyStorage = errors.New("nsg: storage has no vectors to build from")

// ErrNotBuilt is returned by operations that require a completed Build.
var ErrNotBuilt = errors.New("nsg: index has not been built")

// NoID is the sentinel id filling unused result slots, mirroring
// hnsw.NoID.
const NoID = ^uint64(0)

// Candidate is one search result: a node id and its output-facing
// distance (already re-negated for inner product, per distance.Output).
type Candidate struct {
	ID       uint64
	Distance float32
}

// Engine is the single-level NSG graph over a distance.Storage. It is
// built once via Build and is read-only thereafter.
type Engine struct {
	storage distance.Storage
	opts    Options

	sem *semaphore.Weighted

	rngMu sync.Mutex
	rng   *rand.Rand

	mu         sync.RWMutex
	built      bool
	g          *graph.Graph
	enterpoint int64

	fetchCount *atomic.Uint64 // nil unless fetch-count instrumentation is enabled
}

// New creates an empty, unbuilt NSG engine over storage.
func New(storage distance.Storage, optFns ...func(*Options)) *Engine {
	opts := DefaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	opts.setDefaults()

	var sem *semaphore.Weighted
	if opts.MaxThreads > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxThreads))
	}

	return &Engine{
		storage:    storage,
		opts:       opts,
		sem:        sem,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		enterpoint: -1,
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

// IsBuilt reports whether Build has completed successfully.
func (e *Engine) IsBuilt() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.built
}

// Reset discards the built graph, returning the engine to its unbuilt
// state. The underlying storage is not touched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.built = false
	e.g = nil
	e.enterpoint = -1
}

func (e *Engine) stripeCount() int {
	s := e.opts.MaxThreads * 4
	if s < 64 {
		s = 64
	}
	return s
}

// acquireWorker blocks until a worker slot is available, honoring
// MaxThreads. Returns a no-op release function if unbounded.
func (e *Engine) acquireWorker() func() {
	if e.sem == nil {
		return func() {}
	}
	_ = e.sem.Acquire(context.Background(), 1) //nolint:errcheck // background context never errors
	return func() { e.sem.Release(1) }
}

func (e *Engine) randID(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// forEachNode runs fn for every i in [0,n), fanned out across bounded
// worker goroutines, checking ctx for cooperative cancellation between
// chunks (§5: "an interrupt check fires between chunks"). The first
// non-nil error from fn (or ctx.Err()) aborts the remaining chunks.
func (e *Engine) forEachNode(ctx context.Context, n int, fn func(i int) error) error {
	const chunk = 256

	for start := 0; start < n; start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + chunk
		if end > n {
			end = n
		}

		var wg sync.WaitGroup
		var errOnce sync.Once
		var firstErr error

		for i := start; i < end; i++ {
			i := i
			release := e.acquireWorker()
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer release()
				if err := fn(i); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
			}()
		}
		wg.Wait()

		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}
