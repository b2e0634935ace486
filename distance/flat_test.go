package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatStorageAddReconstruct(t *testing.T) {
	s := NewFlatStorage(3, L2)
	require.NoError(t, s.Train(nil))

	ids, err := s.Add([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []ID{0, 1}, ids)
	assert.Equal(t, 2, s.NTotal())

	v, err := s.Reconstruct(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5, 6}, v)

	_, err = s.Reconstruct(99)
	assert.Error(t, err)
}

func TestFlatStorageAddDimensionMismatch(t *testing.T) {
	s := NewFlatStorage(3, L2)
	_, err := s.Add([][]float32{{1, 2}})
	require.Error(t, err)
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestFlatStorageAssignBruteForce(t *testing.T) {
	s := NewFlatStorage(2, L2)
	_, err := s.Add([][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}})
	require.NoError(t, err)

	out, err := s.Assign([][]float32{{0, 0}}, 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []ID{0, 1, 2}, out[0])
}

func TestFlatStorageReset(t *testing.T) {
	s := NewFlatStorage(2, L2)
	_, _ = s.Add([][]float32{{1, 1}})
	s.Reset()
	assert.Equal(t, 0, s.NTotal())
}

func TestDistanceComputer(t *testing.T) {
	s := NewFlatStorage(2, InnerProduct)
	_, err := s.Add([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	dc := s.DistanceComputer()
	dc.SetQuery([]float32{1, 0})
	// inner product is negated internally so smaller is better
	assert.Equal(t, float32(-1), dc.DistanceToQuery(0))
	assert.Equal(t, float32(0), dc.DistanceToQuery(1))
	assert.Equal(t, float32(0), dc.SymmetricDistance(0, 1))
}

func TestOutputNegatesInnerProduct(t *testing.T) {
	assert.Equal(t, float32(5), Output(InnerProduct, -5))
	assert.Equal(t, float32(5), Output(L2, 5))
}
