// Package model_selection splits samples into train and test sets.
package model_selection

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ezoic/carprice/pkg/errors"
)

// Split holds row indices of one train/test split, each sorted ascending.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles [0, n) with seed and puts ceil(testSize*n) rows in
// Test, the rest in Train. testSize must be in (0, 1) and both sides must end
// up non-empty.
func TrainTestSplit(n int, testSize float64, seed int64) (*Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if n < 2 || nTest >= n {
		return nil, errors.NewValidationError("n_samples",
			"too few samples for a train/test split", n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	s := &Split{
		Test:  append([]int(nil), perm[:nTest]...),
		Train: append([]int(nil), perm[nTest:]...),
	}
	sort.Ints(s.Test)
	sort.Ints(s.Train)
	return s, nil
}

// Take returns values[i] for every i in indices.
func Take(values []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for k, i := range indices {
		out[k] = values[i]
	}
	return out
}
