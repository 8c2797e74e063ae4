// Package linear provides the linear baseline price model.
//
// LinearRegression fits y = X·w + b by least squares with an optional L2
// penalty on w (ridge). The intercept is never penalized: X and y are
// centered before solving
//
//	(XcᵀXc + αI) w = Xcᵀyc,    b = mean(y) - mean(X)·w
//
// One-hot encoded categoricals make XcᵀXc singular (each group of indicator
// columns sums to one), so the trainer uses a positive Alpha. With Alpha 0
// a rank-deficient design returns errors.ErrSingularMatrix.
//
//	lr := linear.NewLinearRegression(linear.WithAlpha(1.0))
//	if err := lr.Fit(X, y); err != nil {
//		return err
//	}
//	pred, err := lr.Predict(XTest)
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/core/parallel"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
)

const (
	// parallelThreshold is the row count below which loops stay sequential.
	parallelThreshold = 1000
	// maxCondition bounds the condition number of the normal equations.
	maxCondition = 1e10
)

// LinearRegression is a least squares regressor. Exported fields are the
// fitted state and are gob-encoded with the model.
type LinearRegression struct {
	State     *model.StateManager
	Alpha     float64
	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
	logger    log.Logger
}

// Option configures a LinearRegression.
type Option func(*LinearRegression)

// WithAlpha sets the L2 penalty. Negative values are treated as 0.
func WithAlpha(alpha float64) Option {
	return func(lr *LinearRegression) {
		if alpha < 0 {
			alpha = 0
		}
		lr.Alpha = alpha
	}
}

// NewLinearRegression creates an unfitted model. Without options it is
// ordinary least squares.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{State: model.NewStateManager()}
	for _, opt := range opts {
		opt(lr)
	}
	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, lr.Name(),
		log.ComponentKey, "linear",
	)
	return lr
}

// Name returns "LinearRegression", or "Ridge" when Alpha is positive.
func (lr *LinearRegression) Name() string {
	if lr.Alpha > 0 {
		return "Ridge"
	}
	return "LinearRegression"
}

// Fit estimates weights and intercept. y must be an n×1 column.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	start := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if lr.State == nil {
		lr.State = model.NewStateManager()
	}
	lr.logInfo("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	xMean := make([]float64, c)
	var yMean float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			xMean[j] += X.At(i, j)
		}
		yMean += y.At(i, 0)
	}
	for j := range xMean {
		xMean[j] /= float64(r)
	}
	yMean /= float64(r)

	Xc := mat.NewDense(r, c, nil)
	yc := mat.NewVecDense(r, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < c; j++ {
				Xc.Set(i, j, X.At(i, j)-xMean[j])
			}
			yc.SetVec(i, y.At(i, 0)-yMean)
		}
	})

	var gram mat.SymDense
	gram.SymOuterK(1, Xc.T())
	for j := 0; j < c; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lr.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(Xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok || chol.Cond() > maxCondition {
		return errors.NewModelError("LinearRegression.Fit", "normal equations are not positive definite", errors.ErrSingularMatrix)
	}
	w := mat.NewVecDense(c, nil)
	if err := chol.SolveVecTo(w, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return errors.NewModelError("LinearRegression.Fit", "solve failed", err)
		}
		if lr.logger != nil {
			lr.logger.Warn("Normal equations are ill-conditioned", "condition", float64(cond))
		}
	}

	lr.Weights = w
	lr.Intercept = yMean - mat.Dot(mat.NewVecDense(c, xMean), w)
	lr.NFeatures = c
	lr.State.SetFitted()
	lr.State.SetDimensions(c, r)

	lr.logInfo("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Predict returns an n×1 matrix of predictions.
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "LinearRegression.Predict")
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := lr.Intercept
			for j := 0; j < c; j++ {
				p += X.At(i, j) * lr.Weights.AtVec(j)
			}
			out.Set(i, 0, p)
		}
	})
	if lr.logger != nil {
		lr.logger.Debug("Prediction completed",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.PredsKey, r,
		)
	}
	return out, nil
}

// GetWeights returns a copy of the coefficients, or nil before Fit.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept returns the intercept, or 0 before Fit.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score returns R² of the predictions for X against y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	var mean float64
	for i := 0; i < r; i++ {
		mean += y.At(i, 0)
	}
	mean /= float64(r)
	var tss, rss float64
	for i := 0; i < r; i++ {
		d := y.At(i, 0) - mean
		e := y.At(i, 0) - pred.At(i, 0)
		tss += d * d
		rss += e * e
	}
	if tss == 0 {
		return 0, errors.NewValueError("LinearRegression.Score", "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// IsFitted reports whether Fit has succeeded.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}

// GetParams returns the hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":      lr.Alpha,
		"n_features": lr.NFeatures,
		"fitted":     lr.IsFitted(),
	}
}

func (lr *LinearRegression) logInfo(msg string, fields ...interface{}) {
	if lr.logger != nil {
		lr.logger.Info(msg, fields...)
	}
}
