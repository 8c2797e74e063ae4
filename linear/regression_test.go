package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/metrics"
	"github.com/ezoic/carprice/pkg/errors"
)

func TestLinearRegression_Fit(t *testing.T) {
	tests := []struct {
		name    string
		X       *mat.Dense
		y       *mat.VecDense
		wantErr error
	}{
		{
			name: "y = 2x + 1",
			X:    mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
			y:    mat.NewVecDense(5, []float64{3, 5, 7, 9, 11}),
		},
		{
			name: "two features",
			X: mat.NewDense(5, 2, []float64{
				1, 2,
				2, 1,
				3, 4,
				4, 3,
				5, 5,
			}),
			y: mat.NewVecDense(5, []float64{5, 4, 11, 10, 15}),
		},
		{
			name:    "empty data",
			X:       &mat.Dense{},
			y:       &mat.VecDense{},
			wantErr: errors.ErrEmptyData,
		},
		{
			name:    "row mismatch",
			X:       mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}),
			y:       mat.NewVecDense(2, []float64{1, 2}),
			wantErr: errors.ErrDimensionMismatch,
		},
		{
			name: "collinear columns without penalty",
			X: mat.NewDense(4, 2, []float64{
				1, 2,
				2, 4,
				3, 6,
				4, 8,
			}),
			y:       mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			wantErr: errors.ErrSingularMatrix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression()
			err := lr.Fit(tt.X, tt.y)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, lr.IsFitted())
				return
			}
			require.NoError(t, err)
			assert.True(t, lr.IsFitted())
		})
	}
}

func TestLinearRegression_Predict(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
		mat.NewVecDense(5, []float64{3, 5, 7, 9, 11}),
	))

	pred, err := lr.Predict(mat.NewDense(3, 1, []float64{0, 6, 10}))
	require.NoError(t, err)
	r, c := pred.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	for i, want := range []float64{1, 13, 21} {
		assert.InDelta(t, want, pred.At(i, 0), 1e-9)
	}
	assert.InDelta(t, 2.0, lr.GetWeights()[0], 1e-9)
	assert.InDelta(t, 1.0, lr.GetIntercept(), 1e-9)

	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))
}

func TestLinearRegression_PredictNotFitted(t *testing.T) {
	_, err := NewLinearRegression().Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// y = x1 + 2*x2 + 3
	X := mat.NewDense(6, 2, []float64{
		1, 1,
		2, 1,
		1, 2,
		3, 2,
		2, 3,
		4, 3,
	})
	y := mat.NewVecDense(6, []float64{6, 7, 8, 10, 11, 13})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(mat.NewDense(2, 2, []float64{5, 1, 1, 4}))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred.At(0, 0), 1e-6)
	assert.InDelta(t, 12.0, pred.At(1, 0), 1e-6)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestLinearRegression_RidgeShrinks(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewVecDense(5, []float64{3, 5, 7, 9, 11})

	ridge := NewLinearRegression(WithAlpha(10))
	require.NoError(t, ridge.Fit(X, y))
	assert.Equal(t, "Ridge", ridge.Name())

	// Centered x has sum of squares 10, so w = 20 / (10 + 10).
	assert.InDelta(t, 1.0, ridge.GetWeights()[0], 1e-9)
	// The intercept keeps predictions centered on mean(y) at mean(x).
	pred, err := ridge.Predict(mat.NewDense(1, 1, []float64{3}))
	require.NoError(t, err)
	assert.InDelta(t, 7.0, pred.At(0, 0), 1e-9)
}

func TestLinearRegression_RidgeHandlesOneHotGroups(t *testing.T) {
	// Two indicator columns that always sum to one.
	X := mat.NewDense(4, 3, []float64{
		1, 0, 1,
		0, 1, 2,
		1, 0, 3,
		0, 1, 4,
	})
	y := mat.NewVecDense(4, []float64{10, 20, 12, 22})

	require.Error(t, NewLinearRegression().Fit(X, y))

	ridge := NewLinearRegression(WithAlpha(1))
	require.NoError(t, ridge.Fit(X, y))
	pred, err := ridge.Predict(X)
	require.NoError(t, err)
	predVec, err := metrics.ColumnVector(pred)
	require.NoError(t, err)
	r2, err := metrics.R2Score(y, predVec)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.8)
}

func TestLinearRegression_NoisyData(t *testing.T) {
	// y ≈ 3x + 5
	X := mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	y := mat.NewVecDense(10, []float64{8.1, 11.2, 14.1, 17.2, 20.1, 23.2, 26.1, 29.2, 32.1, 35.2})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.InDelta(t, 3.0, lr.GetWeights()[0], 0.05)
	assert.InDelta(t, 5.0, lr.GetIntercept(), 0.3)
	assert.False(t, math.IsNaN(lr.GetIntercept()))
}

func BenchmarkLinearRegression_Fit(b *testing.B) {
	const nSamples, nFeatures = 1000, 10
	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		var sum float64
		for j := 0; j < nFeatures; j++ {
			v := math.Sin(float64(i*nFeatures + j))
			X.Set(i, j, v)
			sum += v * float64(j+1)
		}
		y.SetVec(i, sum)
	}
	lr := NewLinearRegression()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lr.Fit(X, y)
	}
}
