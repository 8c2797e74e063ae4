package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/linear"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/sklearn/compose"
	"github.com/ezoic/carprice/sklearn/ensemble"
)

// price = 20000 - 1000*age, +3000 for Diesel.
func trainingTable(t *testing.T) (*dataset.Table, []float64) {
	t.Helper()
	tbl := dataset.MustNewTable("car_age", "fuel_type")
	var y []float64
	for age := 1; age <= 10; age++ {
		for _, fuel := range []string{"Petrol", "Diesel"} {
			require.NoError(t, tbl.AppendValues(age, fuel))
			price := 20000 - 1000*float64(age)
			if fuel == "Diesel" {
				price += 3000
			}
			y = append(y, price)
		}
	}
	return tbl, y
}

func newLinear() *Pipeline {
	return New(
		compose.NewColumnTransformer([]string{"car_age"}, []string{"fuel_type"}),
		linear.NewLinearRegression(linear.WithAlpha(1e-6)),
	)
}

func TestPipeline_LinearFitPredict(t *testing.T) {
	tbl, y := trainingTable(t)
	p := newLinear()
	require.NoError(t, p.Fit(tbl, y))
	assert.Equal(t, "Ridge", p.RegressorName())
	assert.Equal(t, []string{"car_age", "fuel_type_Diesel", "fuel_type_Petrol"}, p.FeatureNamesOut())

	one := dataset.MustNewTable("car_age", "fuel_type")
	require.NoError(t, one.AppendValues(5, "Diesel"))
	pred, err := p.Predict(one)
	require.NoError(t, err)
	require.Len(t, pred, 1)
	assert.InDelta(t, 18000, pred[0], 1)
}

func TestPipeline_ForestGobRoundTrip(t *testing.T) {
	tbl, y := trainingTable(t)
	p := New(
		compose.NewColumnTransformer([]string{"car_age"}, []string{"fuel_type"}),
		ensemble.NewRandomForestRegressor(ensemble.WithNEstimators(10), ensemble.WithRandomState(42)),
	)
	require.NoError(t, p.Fit(tbl, y))
	want, err := p.Predict(tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(p, &buf))
	var loaded Pipeline
	require.NoError(t, model.LoadModelFromReader(&loaded, &buf))

	assert.True(t, loaded.IsFitted())
	assert.Equal(t, "RandomForestRegressor", loaded.RegressorName())
	got, err := loaded.Predict(tbl)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPipeline_Errors(t *testing.T) {
	tbl, y := trainingTable(t)
	p := newLinear()

	_, err := p.Predict(tbl)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = p.Fit(tbl, y[:3])
	assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))

	var verr *errors.ValidationError
	assert.True(t, errors.As(New(nil, nil).Fit(tbl, y), &verr))
}
