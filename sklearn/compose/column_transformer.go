// Package compose turns listing tables into design matrices.
//
// ColumnTransformer routes numeric columns through a StandardScaler and
// categorical columns through a OneHotEncoder, then stacks the results side
// by side: [scaled numeric | one-hot categorical].
package compose

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/preprocessing"
)

// MissingCategory replaces missing categorical cells before encoding.
const MissingCategory = "missing"

// ColumnTransformer is the preprocessing half of a price pipeline.
type ColumnTransformer struct {
	State *model.StateManager

	Numeric     []string
	Categorical []string

	Scaler  *preprocessing.StandardScaler
	Encoder *preprocessing.OneHotEncoder
}

// NewColumnTransformer creates an unfitted transformer for the named columns.
func NewColumnTransformer(numeric, categorical []string) *ColumnTransformer {
	return &ColumnTransformer{
		State:       model.NewStateManager(),
		Numeric:     append([]string(nil), numeric...),
		Categorical: append([]string(nil), categorical...),
		Scaler:      preprocessing.NewStandardScalerDefault(),
		Encoder:     preprocessing.NewOneHotEncoder(),
	}
}

// Columns returns the input columns, numeric first.
func (ct *ColumnTransformer) Columns() []string {
	cols := make([]string, 0, len(ct.Numeric)+len(ct.Categorical))
	cols = append(cols, ct.Numeric...)
	return append(cols, ct.Categorical...)
}

// Fit learns scaling statistics and category sets from t.
func (ct *ColumnTransformer) Fit(t *dataset.Table) (err error) {
	defer errors.Recover(&err, "ColumnTransformer.Fit")
	if len(ct.Numeric)+len(ct.Categorical) == 0 {
		return errors.NewValidationError("columns", "no input columns configured", 0)
	}
	if t.Len() == 0 {
		return errors.NewModelError("ColumnTransformer.Fit", "empty table", errors.ErrEmptyData)
	}
	if err := t.Require(ct.Columns()...); err != nil {
		return err
	}
	if ct.State == nil {
		ct.State = model.NewStateManager()
	}

	if len(ct.Numeric) > 0 {
		num, err := NumericMatrix(t, ct.Numeric)
		if err != nil {
			return err
		}
		if err := ct.Scaler.Fit(num); err != nil {
			return err
		}
	}
	if len(ct.Categorical) > 0 {
		if err := ct.Encoder.Fit(CategoricalRows(t, ct.Categorical)); err != nil {
			return err
		}
	}

	ct.State.SetFitted()
	ct.State.SetDimensions(ct.NOutputs(), t.Len())
	return nil
}

// Transform builds the t.Len() × NOutputs design matrix.
func (ct *ColumnTransformer) Transform(t *dataset.Table) (_ *mat.Dense, err error) {
	defer errors.Recover(&err, "ColumnTransformer.Transform")
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if t.Len() == 0 {
		return nil, errors.NewModelError("ColumnTransformer.Transform", "empty table", errors.ErrEmptyData)
	}
	if err := t.Require(ct.Columns()...); err != nil {
		return nil, err
	}

	out := mat.NewDense(t.Len(), ct.NOutputs(), nil)
	offset := 0
	if len(ct.Numeric) > 0 {
		num, err := NumericMatrix(t, ct.Numeric)
		if err != nil {
			return nil, err
		}
		scaled, err := ct.Scaler.Transform(num)
		if err != nil {
			return nil, err
		}
		out.Slice(0, t.Len(), 0, len(ct.Numeric)).(*mat.Dense).Copy(scaled)
		offset = len(ct.Numeric)
	}
	if len(ct.Categorical) > 0 {
		enc, err := ct.Encoder.Transform(CategoricalRows(t, ct.Categorical))
		if err != nil {
			return nil, err
		}
		out.Slice(0, t.Len(), offset, offset+ct.Encoder.NOutputs).(*mat.Dense).Copy(enc)
	}
	return out, nil
}

// FitTransform fits on t and returns Transform(t).
func (ct *ColumnTransformer) FitTransform(t *dataset.Table) (*mat.Dense, error) {
	if err := ct.Fit(t); err != nil {
		return nil, err
	}
	return ct.Transform(t)
}

// NOutputs is the width of the design matrix.
func (ct *ColumnTransformer) NOutputs() int {
	n := len(ct.Numeric)
	if ct.Encoder != nil {
		n += ct.Encoder.NOutputs
	}
	return n
}

// IsFitted reports whether Fit has succeeded.
func (ct *ColumnTransformer) IsFitted() bool {
	return ct.State.IsFitted()
}

// FeatureNamesOut names the design matrix columns: numeric names unchanged,
// then "<column>_<category>" for every indicator.
func (ct *ColumnTransformer) FeatureNamesOut() []string {
	names := append([]string(nil), ct.Numeric...)
	if len(ct.Categorical) > 0 {
		names = append(names, ct.Encoder.GetFeatureNamesOut(ct.Categorical)...)
	}
	return names
}

// NumericMatrix parses the named columns of t as floats. A missing or
// unparseable cell is a *errors.RowError.
func NumericMatrix(t *dataset.Table, columns []string) (*mat.Dense, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	out := mat.NewDense(t.Len(), len(columns), nil)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		for j, col := range columns {
			v, err := features.RequiredFloat(r, col, i+1)
			if err != nil {
				return nil, err
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// CategoricalRows extracts the named columns as strings, trimming spaces and
// mapping missing or blank cells to MissingCategory.
func CategoricalRows(t *dataset.Table, columns []string) [][]string {
	rows := make([][]string, t.Len())
	for i := range rows {
		r := t.Row(i)
		row := make([]string, len(columns))
		for j, col := range columns {
			s, ok := r.Get(col).Get()
			s = strings.TrimSpace(s)
			if !ok || s == "" {
				s = MissingCategory
			}
			row[j] = s
		}
		rows[i] = row
	}
	return rows
}
