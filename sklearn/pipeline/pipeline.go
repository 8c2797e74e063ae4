// Package pipeline chains table preprocessing with a regressor.
//
//	p := pipeline.New(
//		compose.NewColumnTransformer(numeric, categorical),
//		ensemble.NewRandomForestRegressor(ensemble.WithRandomState(42)),
//	)
//	if err := p.Fit(train, yTrain); err != nil {
//		return err
//	}
//	prices, err := p.Predict(test)
//
// A fitted Pipeline gob-encodes with its regressor; the concrete regressor
// types of this module are registered with encoding/gob in init.
package pipeline

import (
	"encoding/gob"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/linear"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/sklearn/compose"
	"github.com/ezoic/carprice/sklearn/ensemble"
	"github.com/ezoic/carprice/sklearn/tree"
)

func init() {
	gob.Register(&linear.LinearRegression{})
	gob.Register(&ensemble.RandomForestRegressor{})
	gob.Register(&tree.DecisionTreeRegressor{})
}

// Pipeline is ColumnTransformer followed by a Regressor.
type Pipeline struct {
	State      *model.StateManager
	Preprocess *compose.ColumnTransformer
	Regressor  model.Regressor

	logger log.Logger
}

// New creates an unfitted pipeline.
func New(pre *compose.ColumnTransformer, reg model.Regressor) *Pipeline {
	return &Pipeline{
		State:      model.NewStateManager(),
		Preprocess: pre,
		Regressor:  reg,
		logger:     log.GetLoggerWithName("pipeline"),
	}
}

// RegressorName returns the regressor's Name, or "unknown".
func (p *Pipeline) RegressorName() string {
	if n, ok := p.Regressor.(model.Named); ok {
		return n.Name()
	}
	return "unknown"
}

// Fit fits the preprocessing on t, then the regressor on the transformed
// matrix and y. y must have one entry per row of t.
func (p *Pipeline) Fit(t *dataset.Table, y []float64) (err error) {
	defer errors.Recover(&err, "Pipeline.Fit")
	if p.Preprocess == nil || p.Regressor == nil {
		return errors.NewValidationError("pipeline", "needs a preprocessor and a regressor", nil)
	}
	if len(y) != t.Len() {
		return errors.NewDimensionError("Pipeline.Fit", t.Len(), len(y), 0)
	}
	if p.State == nil {
		p.State = model.NewStateManager()
	}

	start := time.Now()
	X, err := p.Preprocess.FitTransform(t)
	if err != nil {
		return errors.Wrap(err, "failed to fit step 'preprocess'")
	}
	target := mat.NewVecDense(len(y), append([]float64(nil), y...))
	if err := p.Regressor.Fit(X, target); err != nil {
		return errors.Wrapf(err, "failed to fit step '%s'", p.RegressorName())
	}

	_, c := X.Dims()
	p.State.SetFitted()
	p.State.SetDimensions(c, t.Len())
	if p.logger != nil {
		p.logger.Info("Pipeline fitted",
			log.ModelNameKey, p.RegressorName(),
			log.SamplesKey, t.Len(),
			log.FeaturesKey, c,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// Predict transforms t and returns one prediction per row.
func (p *Pipeline) Predict(t *dataset.Table) (_ []float64, err error) {
	defer errors.Recover(&err, "Pipeline.Predict")
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}
	X, err := p.Preprocess.Transform(t)
	if err != nil {
		return nil, err
	}
	pred, err := p.Regressor.Predict(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, pred), nil
}

// IsFitted reports whether Fit has succeeded.
func (p *Pipeline) IsFitted() bool {
	return p.State.IsFitted() && p.Regressor != nil && p.Regressor.IsFitted()
}

// FeatureNamesOut returns the design matrix column names.
func (p *Pipeline) FeatureNamesOut() []string {
	if p.Preprocess == nil {
		return nil
	}
	return p.Preprocess.FeatureNamesOut()
}
