package occlude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A tiny 1-D coordinate space so symmetric distance is just |a-b|,
// letting us reason about occlusion by hand.
func coord1D(points map[uint64]float32) SymmetricDistanceFunc {
	return func(a, b uint64) float32 {
		d := points[a] - points[b]
		if d < 0 {
			d = -d
		}
		return d
	}
}

func TestSelectAlwaysKeepsNearest(t *testing.T) {
	points := map[uint64]float32{1: 1, 2: 1.1, 3: 5}
	cands := []Candidate{{Distance: 1, ID: 1}, {Distance: 1.1, ID: 2}, {Distance: 5, ID: 3}}
	kept := Select(cands, 3, coord1D(points))
	// id 2 sits right next to id 1 (distance 0.1) which is less than
	// dist(2, q)=1.1, so it is occluded by 1. id 3 is far from 1 (distance
	// 4) which exceeds dist(3, q)=5? No: 4 < 5 so 3 IS occluded too.
	assert.Equal(t, []Candidate{{Distance: 1, ID: 1}}, kept)
}

func TestSelectRespectsCap(t *testing.T) {
	points := map[uint64]float32{1: -10, 2: 10, 3: 30}
	cands := []Candidate{{Distance: 10, ID: 1}, {Distance: 10, ID: 2}, {Distance: 30, ID: 3}}
	kept := Select(cands, 2, coord1D(points))
	assert.Len(t, kept, 2)
	assert.Equal(t, uint64(1), kept[0].ID)
	assert.Equal(t, uint64(2), kept[1].ID)
}

func TestSelectIdempotent(t *testing.T) {
	points := map[uint64]float32{1: -10, 2: 10, 3: 30, 4: 31}
	cands := []Candidate{{Distance: 10, ID: 1}, {Distance: 10, ID: 2}, {Distance: 30, ID: 3}, {Distance: 31, ID: 4}}
	sym := coord1D(points)
	first := Select(cands, 4, sym)
	second := Select(first, 4, sym)
	assert.Equal(t, first, second)
}

func TestFillToCapSkipsOcclusion(t *testing.T) {
	cands := []Candidate{{Distance: 1, ID: 1}, {Distance: 1.1, ID: 2}, {Distance: 5, ID: 3}}
	kept := FillToCap(cands, 2)
	assert.Equal(t, []Candidate{{Distance: 1, ID: 1}, {Distance: 1.1, ID: 2}}, kept)
}

func TestSelectEmptyInput(t *testing.T) {
	assert.Nil(t, Select(nil, 4, coord1D(nil)))
}
