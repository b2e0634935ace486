package navgraph

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
)

// Selector is an id-membership filter applied to search results only
// (§3 "Selector (expansion)"): the best-first traversal still visits and
// expands through filtered-out nodes for navigation, it just never
// returns them as a top-k hit.
type Selector interface {
	Contains(id uint64) bool
}

// BitSetSelector adapts *bitset.BitSet to Selector, a dense representation
// well suited to small or densely-populated id-allow-lists.
type BitSetSelector struct {
	*bitset.BitSet
}

var _ Selector = BitSetSelector{}

// Contains implements Selector. A nil BitSet selects nothing.
func (s BitSetSelector) Contains(id uint64) bool {
	if s.BitSet == nil {
		return false
	}
	return s.BitSet.Test(uint(id))
}

// RoaringSelector adapts *roaring.Bitmap to Selector, a more
// memory-efficient representation for large, sparse id-allow-lists.
type RoaringSelector struct {
	*roaring.Bitmap
}

var _ Selector = RoaringSelector{}

// Contains implements Selector. A nil Bitmap selects nothing.
func (s RoaringSelector) Contains(id uint64) bool {
	if s.Bitmap == nil {
		return false
	}
	return s.Bitmap.Contains(uint32(id))
}
