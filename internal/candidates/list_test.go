package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListInsertSortedAscending(t *testing.T) {
	l := New(3)
	assert.True(t, l.Insert(5, 1))
	assert.True(t, l.Insert(1, 2))
	assert.True(t, l.Insert(3, 3))

	assert.Equal(t, []Entry{
		{Distance: 1, ID: 2},
		{Distance: 3, ID: 3},
		{Distance: 5, ID: 1},
	}, stripExpanded(l.Entries()))
}

func TestListEvictsWorstWhenFull(t *testing.T) {
	l := New(2)
	l.Insert(5, 1)
	l.Insert(3, 2)
	// Worse than both: rejected.
	assert.False(t, l.Insert(9, 3))
	assert.Equal(t, 2, l.Len())

	// Better than worst: evicts it.
	assert.True(t, l.Insert(1, 4))
	w, ok := l.Worst()
	assert.True(t, ok)
	assert.Equal(t, float32(3), w.Distance)
}

func TestListRejectsDuplicateID(t *testing.T) {
	l := New(5)
	l.Insert(2, 7)
	assert.False(t, l.Insert(2, 7))
	assert.False(t, l.Insert(9, 7))
	assert.Equal(t, 1, l.Len())
}

func TestListFirstUnexpanded(t *testing.T) {
	l := New(3)
	l.Insert(1, 1)
	l.Insert(2, 2)
	assert.Equal(t, 0, l.FirstUnexpanded())
	l.MarkExpanded(0)
	assert.Equal(t, 1, l.FirstUnexpanded())
	l.MarkExpanded(1)
	assert.Equal(t, l.Len(), l.FirstUnexpanded())
}

func TestListTieBreakByAscendingID(t *testing.T) {
	l := New(4)
	l.Insert(1, 5)
	l.Insert(1, 2)
	entries := l.Entries()
	assert.Equal(t, uint64(2), entries[0].ID)
	assert.Equal(t, uint64(5), entries[1].ID)
}

func stripExpanded(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Distance: e.Distance, ID: e.ID}
	}
	return out
}
