package navgraph

import (
	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/hnsw"
	"github.com/hupe1980/navgraph/nsg"
)

// GraphSnapshot is the persisted state of an Index: the adjacency
// table(s), entry point, level assignments, build parameters, and a
// reference to the storage backing it (§6 "Persisted state"). It carries
// exactly these fields as a plain Go struct, with no encoding/gob
// dependency of its own, so a caller picks the wire format — gob, the
// teacher's own idiom (see distance/gob.go), or anything else that can walk
// exported fields.
type GraphSnapshot struct {
	Kind    Kind
	Storage *distance.FlatStorage
	HNSW    *hnsw.State
	NSG     *nsg.State
}

// Snapshot captures the Index's current state for later restoration via
// Restore. Only *distance.FlatStorage is supported as the storage
// reference today; a custom Storage implementation can still snapshot its
// own state separately and rebuild the Index around it.
//
// For an NSG-backed Index that has not completed Build, Snapshot returns
// a GraphSnapshot with a nil NSG field: there is no graph state yet, only
// vectors already captured in Storage.
func (idx *Index) Snapshot() (GraphSnapshot, error) {
	flat, ok := idx.storage.(*distance.FlatStorage)
	if !ok {
		return GraphSnapshot{}, &UsageError{Msg: "Snapshot requires *distance.FlatStorage; wrap a custom Storage's own snapshot separately"}
	}

	snap := GraphSnapshot{Kind: idx.kind, Storage: flat}

	switch idx.kind {
	case HNSW:
		state := idx.hnsw.Export()
		snap.HNSW = &state
	case NSG:
		if state, ok := idx.nsg.Export(); ok {
			snap.NSG = &state
		}
	}

	return snap, nil
}

// Restore rebuilds an Index from a GraphSnapshot previously produced by
// Snapshot. WithLogger and WithFetchCount apply to the restored Index.
// Engine tunables come from the snapshot's own state: WithHNSWOptions,
// WithNSGOptions and WithMaxThreads are only used for an NSG snapshot
// that has no graph state yet, and are ignored otherwise.
func Restore(snap GraphSnapshot, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	switch snap.Kind {
	case HNSW:
		if snap.HNSW == nil {
			return nil, &InputError{Msg: "GraphSnapshot has no HNSW state"}
		}
		eng := hnsw.Restore(snap.Storage, *snap.HNSW)
		if o.fetchCount {
			eng.EnableFetchCount()
		}
		return &Index{kind: HNSW, storage: snap.Storage, hnsw: eng, logger: o.logger, fetchCount: o.fetchCount}, nil
	case NSG:
		if snap.NSG == nil {
			eng := nsg.New(snap.Storage, o.nsgOptions...)
			if o.fetchCount {
				eng.EnableFetchCount()
			}
			return &Index{kind: NSG, storage: snap.Storage, nsg: eng, logger: o.logger, fetchCount: o.fetchCount}, nil
		}
		eng := nsg.Restore(snap.Storage, *snap.NSG)
		if o.fetchCount {
			eng.EnableFetchCount()
		}
		return &Index{kind: NSG, storage: snap.Storage, nsg: eng, logger: o.logger, fetchCount: o.fetchCount}, nil
	default:
		return nil, &UsageError{Msg: "unknown snapshot kind"}
	}
}
