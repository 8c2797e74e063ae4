package model_selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	s, err := TrainTestSplit(10, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, s.Test, 2)
	assert.Len(t, s.Train, 8)

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, s.Train...), s.Test...) {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 10)
	assert.IsIncreasing(t, s.Train)
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	a, err := TrainTestSplit(100, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTestSplit(100, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := TrainTestSplit(100, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, c.Test)
}

func TestTrainTestSplit_RoundsTestUp(t *testing.T) {
	s, err := TrainTestSplit(7, 0.2, 1)
	require.NoError(t, err)
	assert.Len(t, s.Test, 2)
}

func TestTrainTestSplit_Invalid(t *testing.T) {
	for _, tc := range []struct {
		n    int
		size float64
	}{
		{10, 0},
		{10, 1},
		{1, 0.5},
		{2, 0.9},
	} {
		_, err := TrainTestSplit(tc.n, tc.size, 0)
		assert.Error(t, err, "n=%d size=%v", tc.n, tc.size)
	}
}

func TestTake(t *testing.T) {
	assert.Equal(t, []float64{30, 10}, Take([]float64{10, 20, 30}, []int{2, 0}))
}
