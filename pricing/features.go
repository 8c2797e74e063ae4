// Package pricing trains, stores and serves the used-car price model.
//
// Training reads a cleaned listings table, derives features, fits a
// pipeline (scaling + one-hot encoding + regressor) on an 80/20 split and
// writes an Artifact: the fitted pipeline, its ordered feature list and
// metadata with test-set MAE and R².
//
// The model's "brand" feature is the bucketed brand: brands seen fewer than
// BrandMinCount times in training are folded into "Other", and the
// Predictor applies the same folding to its input.
package pricing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
)

// Model feature columns.
const (
	FeatureBrand = "brand"
)

var (
	// NumericFeatures are standardized.
	NumericFeatures = []string{dataset.ColCarAge, dataset.ColEngineCC, dataset.ColMileageKmpl}
	// CategoricalFeatures are one-hot encoded.
	CategoricalFeatures = []string{FeatureBrand, dataset.ColFuelType, dataset.ColServiceHistory, dataset.ColOwnerType}
)

// Features returns the ordered model input columns.
func Features() []string {
	out := append([]string(nil), NumericFeatures...)
	return append(out, CategoricalFeatures...)
}

// featureTable projects a derived table onto the model features and the
// price target. Rows with a missing or malformed numeric feature or target
// are dropped and returned as *errors.RowError.
func featureTable(derived *dataset.Table) (*dataset.Table, []float64, []error, error) {
	source := map[string]string{FeatureBrand: dataset.ColBrandBucketed}
	cols := Features()
	needed := []string{dataset.ColPriceUSD}
	for _, c := range cols {
		if s, ok := source[c]; ok {
			needed = append(needed, s)
		} else {
			needed = append(needed, c)
		}
	}
	if err := derived.Require(needed...); err != nil {
		return nil, nil, nil, err
	}

	out := dataset.MustNewTable(cols...)
	var (
		y       []float64
		skipped []error
	)
	for i := 0; i < derived.Len(); i++ {
		r := derived.Row(i)
		price, err := features.RequiredFloat(r, dataset.ColPriceUSD, i+1)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		row := make([]dataset.Value, len(cols))
		ok := true
		for j, c := range cols {
			src := c
			if s, found := source[c]; found {
				src = s
			}
			v := r.Get(src)
			if j < len(NumericFeatures) {
				if _, err := features.RequiredFloat(r, src, i+1); err != nil {
					skipped = append(skipped, err)
					ok = false
					break
				}
			}
			row[j] = v
		}
		if !ok {
			continue
		}
		if err := out.Append(row); err != nil {
			return nil, nil, nil, errors.Wrap(err, "build feature table")
		}
		y = append(y, price)
	}
	return out, y, skipped, nil
}

func vec(v []float64) *mat.VecDense {
	return mat.NewVecDense(len(v), append([]float64(nil), v...))
}
