package navgraph

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/hupe1980/navgraph/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gobRoundTrip(t *testing.T, snap GraphSnapshot) GraphSnapshot {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(snap))

	var out GraphSnapshot
	require.NoError(t, gob.NewDecoder(&buf).Decode(&out))
	return out
}

func TestHNSWSnapshotRoundTrip(t *testing.T) {
	storage := distance.NewFlatStorage(4, distance.L2)
	idx := NewHNSW(storage)

	vectors := randomVectors(4, 100, 11)
	ids, err := idx.Add(context.Background(), vectors)
	require.NoError(t, err)

	want := idx.Search(vectors[3], 5, 64, nil)

	snap, err := idx.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.HNSW)
	require.Equal(t, HNSW, snap.Kind)

	restoredSnap := gobRoundTrip(t, snap)

	restored, err := Restore(restoredSnap)
	require.NoError(t, err)
	assert.Equal(t, idx.NTotal(), restored.NTotal())

	got := restored.Search(vectors[3], 5, 64, nil)
	require.Len(t, got, 5)
	assert.Equal(t, want, got)
	assert.Equal(t, ids[3], got[0].ID)
}

func TestNSGSnapshotRoundTrip(t *testing.T) {
	storage := distance.NewFlatStorage(5, distance.L2)
	idx := NewNSG(storage)

	vectors := randomVectors(5, 200, 12)
	_, err := idx.Add(context.Background(), vectors)
	require.NoError(t, err)
	require.NoError(t, idx.Build(context.Background()))

	want := idx.Search(vectors[0], 4, 64, nil)

	snap, err := idx.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.NSG)

	restoredSnap := gobRoundTrip(t, snap)

	restored, err := Restore(restoredSnap)
	require.NoError(t, err)

	got := restored.Search(vectors[0], 4, 64, nil)
	require.Len(t, got, 4)
	assert.Equal(t, want, got)
}

func TestNSGSnapshotBeforeBuildHasNoGraphState(t *testing.T) {
	storage := distance.NewFlatStorage(3, distance.L2)
	idx := NewNSG(storage)
	_, err := idx.Add(context.Background(), randomVectors(3, 10, 13))
	require.NoError(t, err)

	snap, err := idx.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, snap.NSG)
	assert.Equal(t, 10, snap.Storage.NTotal())
}
