// Package metrics provides regression evaluation metrics.
//
//   - MAE: mean absolute error, in target units
//   - MSE / RMSE: mean squared error and its root
//   - R2Score: coefficient of determination
//
// All functions take true and predicted values as vectors of equal length.
// Evaluate computes the full set at once for training reports:
//
//	report, err := metrics.Evaluate(yTest, yPred)
//	fmt.Printf("MAE: %.2f  R2: %.3f\n", report.MAE, report.R2)
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/carprice/pkg/errors"
)

// RegressionReport holds the metrics of one evaluation.
type RegressionReport struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
	N    int
}

func check(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewModelError(op, "empty vector", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE calculates the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := check("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE is the square root of MSE.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := check("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination, 1 - RSS/TSS.
//
// The score is 1 for perfect predictions and can be negative. When yTrue is
// constant, TSS is zero: the score is then 1 if every prediction is exact
// and 0 otherwise.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := check("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	mean := stat.Mean(mat.Col(nil, 0, yTrue), nil)

	var tss, rss float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		d := t - yPred.AtVec(i)
		tss += (t - mean) * (t - mean)
		rss += d * d
	}
	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// Evaluate computes every metric in RegressionReport.
func Evaluate(yTrue, yPred *mat.VecDense) (*RegressionReport, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return &RegressionReport{
		MAE:  mae,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   r2,
		N:    yTrue.Len(),
	}, nil
}

// ColumnVector copies an n×1 matrix, such as a Predict result, into a vector.
func ColumnVector(m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, errors.NewValueError("ColumnVector", "matrix must have exactly one column")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
