// Package ensemble provides bagged tree ensembles.
package ensemble

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/core/parallel"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/sklearn/tree"
)

// RandomForestRegressor averages regression trees, each grown on a bootstrap
// draw of the training rows. Every tree gets its own seed derived from
// RandomState before any tree is fitted, so the forest is identical for a
// given seed regardless of how many workers build it.
type RandomForestRegressor struct {
	State *model.StateManager

	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	NJobs           int

	Trees              []*tree.DecisionTreeRegressor
	NFeatures          int
	FeatureImportances []float64

	logger log.Logger
}

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(f *RandomForestRegressor) { f.NEstimators = n }
}

// WithMaxDepth limits the depth of every tree; 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(f *RandomForestRegressor) { f.MaxDepth = depth }
}

// WithMinSamplesSplit sets the minimum node size that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(f *RandomForestRegressor) { f.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum leaf size of every tree.
func WithMinSamplesLeaf(n int) Option {
	return func(f *RandomForestRegressor) { f.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the features tried per split; 0 tries all.
func WithMaxFeatures(n int) Option {
	return func(f *RandomForestRegressor) { f.MaxFeatures = n }
}

// WithBootstrap toggles bootstrap sampling. Without it every tree sees all rows.
func WithBootstrap(b bool) Option {
	return func(f *RandomForestRegressor) { f.Bootstrap = b }
}

// WithRandomState seeds the forest.
func WithRandomState(seed int64) Option {
	return func(f *RandomForestRegressor) { f.RandomState = seed }
}

// WithNJobs sets the number of trees fitted concurrently; 0 uses GOMAXPROCS.
func WithNJobs(n int) Option {
	return func(f *RandomForestRegressor) { f.NJobs = n }
}

// NewRandomForestRegressor creates an unfitted forest with 100 unlimited-depth
// trees and bootstrap sampling.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	f := &RandomForestRegressor{
		State:           model.NewStateManager(),
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = log.GetLoggerWithName("ensemble").With(
		log.ModelNameKey, f.Name(),
		log.ComponentKey, "ensemble",
	)
	return f
}

// Name returns "RandomForestRegressor".
func (f *RandomForestRegressor) Name() string {
	return "RandomForestRegressor"
}

// Fit grows NEstimators trees in parallel.
func (f *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")

	start := time.Now()
	r, c := X.Dims()
	ry, _ := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("RandomForestRegressor.Fit", r, ry, 0)
	}
	if f.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", f.NEstimators)
	}
	if f.State == nil {
		f.State = model.NewStateManager()
	}
	f.info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		"n_estimators", f.NEstimators,
	)

	master := rand.New(rand.NewSource(f.RandomState))
	seeds := make([]int64, f.NEstimators)
	for k := range seeds {
		seeds[k] = master.Int63()
	}

	trees := make([]*tree.DecisionTreeRegressor, f.NEstimators)
	errs := make([]error, f.NEstimators)
	workers := f.NJobs
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	parallel.ParallelizeWorkers(f.NEstimators, workers, func(lo, hi int) {
		for k := lo; k < hi; k++ {
			trees[k], errs[k] = f.fitTree(X, y, r, seeds[k])
		}
	})
	for k, e := range errs {
		if e != nil {
			return errors.Wrapf(e, "tree %d", k)
		}
	}

	importances := make([]float64, c)
	for _, t := range trees {
		for j, v := range t.FeatureImportances {
			importances[j] += v / float64(len(trees))
		}
	}

	f.Trees = trees
	f.NFeatures = c
	f.FeatureImportances = importances
	f.State.SetFitted()
	f.State.SetDimensions(c, r)

	f.info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, r,
	)
	return nil
}

func (f *RandomForestRegressor) fitTree(X, y mat.Matrix, n int, seed int64) (*tree.DecisionTreeRegressor, error) {
	rng := rand.New(rand.NewSource(seed))
	sample := make([]int, n)
	for i := range sample {
		if f.Bootstrap {
			sample[i] = rng.Intn(n)
		} else {
			sample[i] = i
		}
	}
	t := tree.NewDecisionTreeRegressor(
		tree.WithMaxDepth(f.MaxDepth),
		tree.WithMinSamplesSplit(f.MinSamplesSplit),
		tree.WithMinSamplesLeaf(f.MinSamplesLeaf),
		tree.WithMaxFeatures(f.MaxFeatures),
		tree.WithRandomState(rng.Int63()),
	)
	if err := t.FitSample(X, y, sample); err != nil {
		return nil, err
	}
	return t, nil
}

// Predict returns the mean of the tree predictions as an n×1 matrix.
func (f *RandomForestRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Predict")
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", f.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, 256, func(lo, hi int) {
		row := make([]float64, c)
		for i := lo; i < hi; i++ {
			mat.Row(row, i, X)
			var sum float64
			for _, t := range f.Trees {
				sum += t.PredictRow(row)
			}
			out.Set(i, 0, sum/float64(len(f.Trees)))
		}
	})
	if f.logger != nil {
		f.logger.Debug("Prediction completed",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.PredsKey, r,
		)
	}
	return out, nil
}

// IsFitted reports whether Fit has succeeded.
func (f *RandomForestRegressor) IsFitted() bool {
	return f.State.IsFitted() && len(f.Trees) > 0
}

// GetFeatureImportances returns the mean of the per-tree importances.
func (f *RandomForestRegressor) GetFeatureImportances() []float64 {
	return append([]float64(nil), f.FeatureImportances...)
}

// GetParams returns the hyperparameters.
func (f *RandomForestRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      f.NEstimators,
		"max_depth":         f.MaxDepth,
		"min_samples_split": f.MinSamplesSplit,
		"min_samples_leaf":  f.MinSamplesLeaf,
		"max_features":      f.MaxFeatures,
		"bootstrap":         f.Bootstrap,
		"random_state":      f.RandomState,
	}
}

func (f *RandomForestRegressor) String() string {
	return fmt.Sprintf("RandomForestRegressor(n_estimators=%d, max_depth=%d, min_samples_leaf=%d, random_state=%d)",
		f.NEstimators, f.MaxDepth, f.MinSamplesLeaf, f.RandomState)
}

func (f *RandomForestRegressor) info(msg string, fields ...interface{}) {
	if f.logger != nil {
		f.logger.Info(msg, fields...)
	}
}
