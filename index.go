// Package navgraph provides a graph-based approximate nearest neighbor
// index façade (C7) over two interchangeable engines — HNSW, which
// supports incremental insertion, and NSG, a one-shot batch build from a
// seed KNN graph — both built against a pluggable distance.Storage.
//
// Grounded on the teacher's top-level Vecgo[T] façade: functional
// options, a small exported error taxonomy with translateError at the
// package boundary, and an slog-based Logger wrapper, all generalized
// from the teacher's single-engine, WAL-backed design down to the two
// engines this module actually implements.
package navgraph

import (
	"context"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/hnsw"
	"github.com/hupe1980/navgraph/nsg"
)

// Kind selects which engine an Index wraps.
type Kind int

const (
	// HNSW is the multi-level incremental graph engine (C5).
	HNSW Kind = iota
	// NSG is the single-level, one-shot batch-built graph engine (C6).
	NSG
)

// Index is the unified add/search surface over a distance.Storage,
// forwarding to either the HNSW or NSG engine depending on how it was
// constructed (§4.7). The façade always owns the Storage passed at
// construction: there is no separate "owns storage" flag, since no
// storage-sharing use case is in scope (§9 "Ownership of storage").
type Index struct {
	kind    Kind
	storage distance.Storage

	hnsw *hnsw.Engine
	nsg  *nsg.Engine

	logger     *Logger
	fetchCount bool
}

// NewHNSW creates an Index backed by the incremental HNSW engine over
// storage.
func NewHNSW(storage distance.Storage, optFns ...Option) *Index {
	o := applyOptions(optFns)
	eng := hnsw.New(storage, o.hnswOptions...)
	if o.fetchCount {
		eng.EnableFetchCount()
	}
	return &Index{kind: HNSW, storage: storage, hnsw: eng, logger: o.logger, fetchCount: o.fetchCount}
}

// NewNSG creates an Index backed by the one-shot batch NSG engine over
// storage. Vectors may be added freely until Build is called; afterward
// Add returns a UsageError (§4.6 "NSG does not support incremental
// addition").
func NewNSG(storage distance.Storage, optFns ...Option) *Index {
	o := applyOptions(optFns)
	eng := nsg.New(storage, o.nsgOptions...)
	if o.fetchCount {
		eng.EnableFetchCount()
	}
	return &Index{kind: NSG, storage: storage, nsg: eng, logger: o.logger, fetchCount: o.fetchCount}
}

// Kind reports which engine this Index wraps.
func (idx *Index) Kind() Kind { return idx.kind }

// Train prepares the underlying storage for Add (e.g. fitting a
// quantizer). FlatStorage has nothing to learn, so Train is a no-op for
// the reference storage, but remains part of the surface so PQ/SQ-style
// storages can slot in without changing the façade (§4.7).
func (idx *Index) Train(vectors [][]float32) error {
	if err := idx.storage.Train(vectors); err != nil {
		return translateError(err)
	}
	return nil
}

// Add appends vectors to storage and, for an HNSW-backed Index, inserts
// each one into the graph immediately. For an NSG-backed Index, vectors
// accumulate in storage only; Build performs the actual graph
// construction, and Add after Build returns a UsageError.
func (idx *Index) Add(ctx context.Context, vectors [][]float32) ([]uint64, error) {
	if idx.kind == NSG && idx.nsg.IsBuilt() {
		return nil, translateError(nsg.ErrAlreadyBuilt)
	}

	ids, err := idx.storage.Add(vectors)
	if err != nil {
		idx.logger.LogAdd(ctx, len(vectors), err)
		return nil, translateError(err)
	}

	if idx.kind == HNSW {
		for i, id := range ids {
			if cerr := ctx.Err(); cerr != nil {
				idx.logger.LogAdd(ctx, i, cerr)
				return ids[:i], translateError(cerr)
			}
			if err := idx.hnsw.Insert(id, vectors[i]); err != nil {
				idx.logger.LogAdd(ctx, i, err)
				return ids[:i], translateError(err)
			}
		}
	}

	idx.logger.LogAdd(ctx, len(ids), nil)
	return ids, nil
}

// Build runs the NSG construction pipeline over every vector currently in
// storage (§4.6). It is a no-op returning nil for an HNSW-backed Index,
// since HNSW builds incrementally via Add instead.
func (idx *Index) Build(ctx context.Context) error {
	if idx.kind != NSG {
		return nil
	}
	err := idx.nsg.Build(ctx)
	idx.logger.LogBuild(ctx, idx.storage.NTotal(), err)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Search returns up to k nearest neighbors of query, ascending by
// distance. param is the engine-specific candidate-pool size (efSearch
// for HNSW, searchL for NSG; param <= 0 selects the engine's configured
// EfSearch or SearchL); a selector, if non-nil, restricts results
// to ids it accepts without affecting graph traversal itself (§3
// "Selector").
func (idx *Index) Search(query []float32, k int, param int, selector Selector) []Candidate {
	if k <= 0 {
		return filterCandidates(nil, k, selector)
	}

	fetchK := overfetchK(k, idx.storage.NTotal(), selector)

	var results []Candidate
	switch idx.kind {
	case HNSW:
		results = fromHNSW(idx.hnsw.Search(query, fetchK, param))
	case NSG:
		results = fromNSG(idx.nsg.Search(query, fetchK, param))
	}

	out := filterCandidates(results, k, selector)
	return out
}

// RangeSearch returns every node within radius of query, ascending by
// distance (§4.5 "range search"). Only the HNSW engine supports range
// search; calling it on an NSG-backed Index returns a UsageError.
func (idx *Index) RangeSearch(query []float32, radius float32, selector Selector) ([]Candidate, error) {
	if idx.kind != HNSW {
		return nil, &UsageError{Msg: "range search is only supported by the HNSW engine"}
	}
	raw := fromHNSW(idx.hnsw.RangeSearch(query, radius))
	return filterRange(raw, selector), nil
}

// Reconstruct returns the vector originally added as id.
func (idx *Index) Reconstruct(id uint64) ([]float32, error) {
	v, err := idx.storage.Reconstruct(id)
	if err != nil {
		return nil, translateError(err)
	}
	return v, nil
}

// Reset discards both the graph and the underlying storage, returning the
// Index to its empty, unbuilt state (§3 lifecycle: "reset clears both
// engine and storage").
func (idx *Index) Reset() {
	idx.storage.Reset()
	switch idx.kind {
	case HNSW:
		idx.hnsw.Reset()
	case NSG:
		idx.nsg.Reset()
	}
}

// FetchCount returns the number of distance evaluations performed since
// fetch-count instrumentation was enabled via WithFetchCount, or 0 if it
// was never enabled (§4.7).
func (idx *Index) FetchCount() uint64 {
	switch idx.kind {
	case HNSW:
		return idx.hnsw.FetchCount()
	case NSG:
		return idx.nsg.FetchCount()
	}
	return 0
}

// NTotal returns the number of vectors currently held in storage.
func (idx *Index) NTotal() int {
	return idx.storage.NTotal()
}
