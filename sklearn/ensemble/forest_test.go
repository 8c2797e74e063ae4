package ensemble

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/pkg/errors"
)

// ageData: price falls by 800 per year of age, engine_cc adds 2 per cc.
func ageData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		age := float64(i % 15)
		cc := 1000 + float64((i*37)%1500)
		X.Set(i, 0, age)
		X.Set(i, 1, cc)
		y.SetVec(i, 20000-800*age+2*cc)
	}
	return X, y
}

func TestRandomForestRegressor_Fit(t *testing.T) {
	X, y := ageData(300)
	f := NewRandomForestRegressor(
		WithNEstimators(20),
		WithMaxDepth(8),
		WithMinSamplesLeaf(2),
		WithRandomState(42),
	)
	require.NoError(t, f.Fit(X, y))
	assert.Len(t, f.Trees, 20)
	assert.True(t, f.IsFitted())

	pred, err := f.Predict(X)
	require.NoError(t, err)
	var mae float64
	for i := 0; i < 300; i++ {
		mae += math.Abs(pred.At(i, 0) - y.AtVec(i))
	}
	mae /= 300
	assert.Less(t, mae, 600.0)

	imp := f.GetFeatureImportances()
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
	assert.Greater(t, imp[0], imp[1], "age drives more variance than engine size")
}

func TestRandomForestRegressor_DeterministicAcrossWorkers(t *testing.T) {
	X, y := ageData(120)
	a := NewRandomForestRegressor(WithNEstimators(8), WithRandomState(42), WithNJobs(1))
	b := NewRandomForestRegressor(WithNEstimators(8), WithRandomState(42), WithNJobs(4))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, err := a.Predict(X)
	require.NoError(t, err)
	pb, err := b.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(pa, pb))

	c := NewRandomForestRegressor(WithNEstimators(8), WithRandomState(7))
	require.NoError(t, c.Fit(X, y))
	pc, err := c.Predict(X)
	require.NoError(t, err)
	assert.False(t, mat.Equal(pa, pc))
}

func TestRandomForestRegressor_NoBootstrapMatchesSingleTree(t *testing.T) {
	X, y := ageData(50)
	f := NewRandomForestRegressor(WithNEstimators(3), WithBootstrap(false))
	require.NoError(t, f.Fit(X, y))
	pred, err := f.Predict(X)
	require.NoError(t, err)
	single, err := f.Trees[0].Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(pred, single, 1e-9))
}

func TestRandomForestRegressor_GobRoundTrip(t *testing.T) {
	X, y := ageData(80)
	f := NewRandomForestRegressor(WithNEstimators(5), WithMaxDepth(4), WithRandomState(1))
	require.NoError(t, f.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(f, &buf))
	loaded := NewRandomForestRegressor()
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))

	want, err := f.Predict(X)
	require.NoError(t, err)
	got, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
	assert.Equal(t, 5, loaded.NEstimators)
}

func TestRandomForestRegressor_Errors(t *testing.T) {
	f := NewRandomForestRegressor()
	_, err := f.Predict(mat.NewDense(1, 2, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	var verr *errors.ValidationError
	err = NewRandomForestRegressor(WithNEstimators(0)).Fit(ageData(10))
	assert.True(t, errors.As(err, &verr))
}
