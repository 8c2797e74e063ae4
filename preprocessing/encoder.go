package preprocessing

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/pkg/errors"
)

// OneHotEncoder expands each categorical column into one indicator column per
// category seen during Fit. Categories unseen at Fit time encode as all zeros
// for that column, so a fitted model accepts brands or fuel types it was not
// trained on.
type OneHotEncoder struct {
	State *model.StateManager

	// Categories は各特徴量のカテゴリ一覧（ソート済み）
	Categories [][]string
	// CategoryToIdx は各特徴量のカテゴリ→インデックス
	CategoryToIdx []map[string]int

	NFeatures int
	NOutputs  int
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{State: model.NewStateManager()}
}

// Fit collects the sorted distinct categories of every column of data
// (n_samples × n_features).
func (e *OneHotEncoder) Fit(data [][]string) (err error) {
	defer errors.Recover(&err, "OneHotEncoder.Fit")
	if len(data) == 0 || len(data[0]) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	if e.State == nil {
		e.State = model.NewStateManager()
	}

	nFeatures := len(data[0])
	for _, row := range data {
		if len(row) != nFeatures {
			return errors.NewDimensionError("OneHotEncoder.Fit", nFeatures, len(row), 1)
		}
	}

	e.NFeatures = nFeatures
	e.Categories = make([][]string, nFeatures)
	e.CategoryToIdx = make([]map[string]int, nFeatures)
	e.NOutputs = 0
	for j := 0; j < nFeatures; j++ {
		seen := make(map[string]struct{})
		for _, row := range data {
			seen[row[j]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		idx := make(map[string]int, len(cats))
		for k, c := range cats {
			idx[c] = k
		}
		e.Categories[j] = cats
		e.CategoryToIdx[j] = idx
		e.NOutputs += len(cats)
	}

	e.State.SetFitted()
	e.State.SetDimensions(nFeatures, len(data))
	return nil
}

// Transform returns the len(data) × NOutputs indicator matrix.
func (e *OneHotEncoder) Transform(data [][]string) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(data) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "no rows", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(data), e.NOutputs, nil)
	for i, row := range data {
		if len(row) != e.NFeatures {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, len(row), 1)
		}
		offset := 0
		for j, v := range row {
			if k, ok := e.CategoryToIdx[j][v]; ok {
				out.Set(i, offset+k, 1)
			}
			offset += len(e.Categories[j])
		}
	}
	return out, nil
}

// FitTransform fits on data and returns Transform(data).
func (e *OneHotEncoder) FitTransform(data [][]string) (mat.Matrix, error) {
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}

// IsFitted reports whether Fit has succeeded.
func (e *OneHotEncoder) IsFitted() bool {
	return e.State.IsFitted()
}

// GetFeatureNamesOut names the output columns "<input>_<category>". Missing
// input names default to x0, x1, ...
func (e *OneHotEncoder) GetFeatureNamesOut(inputFeatures []string) []string {
	if !e.IsFitted() {
		return nil
	}
	names := make([]string, 0, e.NOutputs)
	for j, cats := range e.Categories {
		prefix := "x" + strconv.Itoa(j)
		if j < len(inputFeatures) {
			prefix = inputFeatures[j]
		}
		for _, c := range cats {
			names = append(names, prefix+"_"+c)
		}
	}
	return names
}
