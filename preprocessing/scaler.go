// Package preprocessing provides the feature transformers used by the price
// pipeline.
//
//   - StandardScaler: centers numeric columns and scales them to unit variance
//   - OneHotEncoder: expands categorical columns into 0/1 indicator columns
//
// Both follow the Fit / Transform / FitTransform pattern and keep their
// learned state in exported fields so a fitted pipeline can be gob-encoded
// into the model artifact.
//
//	scaler := preprocessing.NewStandardScalerDefault()
//	if err := scaler.Fit(XTrain); err != nil {
//		return err
//	}
//	XScaled, err := scaler.Transform(XTest)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/pkg/errors"
)

// StandardScaler standardizes features as (x - mean) / std.
type StandardScaler struct {
	State *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64
	// Scale は各特徴量の標準偏差 (分散0の列は1)
	Scale []float64

	NFeatures int
	WithMean  bool
	WithStd   bool
}

// NewStandardScaler creates a scaler. withMean subtracts the column mean,
// withStd divides by the population standard deviation.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		State:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault returns NewStandardScaler(true, true).
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns per-column mean and scale from X.
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if s.State == nil {
		s.State = model.NewStateManager()
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	for j := 0; j < c; j++ {
		if s.WithMean {
			var sum float64
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		s.Scale[j] = 1
		if s.WithStd {
			var ss float64
			for i := 0; i < r; i++ {
				d := X.At(i, j) - s.Mean[j]
				ss += d * d
			}
			// 分散がほぼ0の列はそのまま
			if std := math.Sqrt(ss / float64(r)); std >= 1e-8 {
				s.Scale[j] = std
			}
		}
	}

	s.State.SetFitted()
	s.State.SetDimensions(c, r)
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

// FitTransform fits on X and returns Transform(X).
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// IsFitted reports whether Fit has succeeded.
func (s *StandardScaler) IsFitted() bool {
	return s.State.IsFitted()
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
