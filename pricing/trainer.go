package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/linear"
	"github.com/ezoic/carprice/metrics"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/fileutil"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/sklearn/compose"
	"github.com/ezoic/carprice/sklearn/ensemble"
	"github.com/ezoic/carprice/sklearn/model_selection"
	"github.com/ezoic/carprice/sklearn/pipeline"
)

// Model kinds.
const (
	KindForest = "forest"
	KindLinear = "linear"
)

// Training defaults.
const (
	DefaultNEstimators    = 200
	DefaultMaxDepth       = 10
	DefaultMinSamplesLeaf = 2
	DefaultSeed           = 42
	DefaultTestSize       = 0.2
	DefaultRidgeAlpha     = 1.0
)

// TrainResult is the outcome of a training run.
type TrainResult struct {
	RunID    string
	Artifact *Artifact
	Report   *metrics.RegressionReport
	// Skipped holds rows dropped during derivation or feature extraction.
	Skipped []error
}

// Trainer fits price models.
type Trainer struct {
	kind        string
	nEstimators int
	maxDepth    int
	minLeaf     int
	seed        int64
	testSize    float64
	alpha       float64
	deriver     *features.Deriver
	logger      log.Logger
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithModelKind selects KindForest or KindLinear.
func WithModelKind(kind string) TrainerOption {
	return func(t *Trainer) { t.kind = kind }
}

// WithForest sets the forest size and tree limits.
func WithForest(nEstimators, maxDepth, minSamplesLeaf int) TrainerOption {
	return func(t *Trainer) {
		t.nEstimators = nEstimators
		t.maxDepth = maxDepth
		t.minLeaf = minSamplesLeaf
	}
}

// WithSeed seeds both the split and the forest.
func WithSeed(seed int64) TrainerOption {
	return func(t *Trainer) { t.seed = seed }
}

// WithTestSize sets the held-out fraction.
func WithTestSize(size float64) TrainerOption {
	return func(t *Trainer) { t.testSize = size }
}

// WithRidgeAlpha sets the L2 penalty of the linear model.
func WithRidgeAlpha(alpha float64) TrainerOption {
	return func(t *Trainer) { t.alpha = alpha }
}

// WithDeriver sets the feature deriver, e.g. to pin the clock.
func WithDeriver(d *features.Deriver) TrainerOption {
	return func(t *Trainer) { t.deriver = d }
}

// WithTrainerLogger sets the logger.
func WithTrainerLogger(l log.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = l }
}

// NewTrainer creates a Trainer with the forest defaults: 200 trees, depth 10,
// two samples per leaf, seed 42, 20% test split.
func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		kind:        KindForest,
		nEstimators: DefaultNEstimators,
		maxDepth:    DefaultMaxDepth,
		minLeaf:     DefaultMinSamplesLeaf,
		seed:        DefaultSeed,
		testSize:    DefaultTestSize,
		alpha:       DefaultRidgeAlpha,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.GetLoggerWithName("pricing")
	}
	if t.deriver == nil {
		t.deriver = features.NewDeriver(features.WithLogger(t.logger))
	}
	return t
}

func (t *Trainer) regressor() (model.Regressor, error) {
	switch t.kind {
	case KindForest:
		return ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(t.nEstimators),
			ensemble.WithMaxDepth(t.maxDepth),
			ensemble.WithMinSamplesLeaf(t.minLeaf),
			ensemble.WithRandomState(t.seed),
		), nil
	case KindLinear:
		return linear.NewLinearRegression(linear.WithAlpha(t.alpha)), nil
	default:
		return nil, errors.NewValidationError("model kind", "must be forest or linear", t.kind)
	}
}

// Train fits a model on a cleaned listings table. make_year, owner_count and
// brand must be present; derived columns are recomputed.
func (t *Trainer) Train(ctx context.Context, tbl *dataset.Table) (*TrainResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := t.logger.With(log.RunIDKey, runID)

	reg, err := t.regressor()
	if err != nil {
		return nil, err
	}

	derived, err := t.deriver.Derive(tbl)
	if err != nil {
		return nil, err
	}
	ft, y, skipped, err := featureTable(derived.Table)
	if err != nil {
		return nil, err
	}
	skipped = append(append([]error(nil), derived.Skipped...), skipped...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	split, err := model_selection.TrainTestSplit(ft.Len(), t.testSize, t.seed)
	if err != nil {
		return nil, err
	}
	train, test := ft.Subset(split.Train), ft.Subset(split.Test)
	yTrain, yTest := model_selection.Take(y, split.Train), model_selection.Take(y, split.Test)

	p := pipeline.New(compose.NewColumnTransformer(NumericFeatures, CategoricalFeatures), reg)
	if err := p.Fit(train, yTrain); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := p.Predict(test)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Evaluate(vec(yTest), vec(pred))
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		Model:    p,
		Features: Features(),
		Metadata: Metadata{
			ModelType:     p.RegressorName(),
			TrainingDate:  t.deriver.Now().Format(DateLayout),
			RunID:         runID,
			ReferenceYear: derived.ReferenceYear,
			BrandMinCount: derived.BrandMinCount,
			KnownBrands:   derived.KnownBrands(),
			Performance:   Performance{MAE: report.MAE, R2: report.R2},
			NTrain:        len(split.Train),
			NTest:         len(split.Test),
		},
	}
	logger.Info("Model trained",
		log.ModelNameKey, art.Metadata.ModelType,
		log.PhaseKey, log.PhaseEvaluation,
		log.SamplesKey, ft.Len(),
		log.SkippedKey, len(skipped),
		"mae", report.MAE,
		"r2", report.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &TrainResult{RunID: runID, Artifact: art, Report: report, Skipped: skipped}, nil
}

// TrainFile loads dataPath, trains and writes the artifact to modelPath
// under the run lock of modelPath.
func (t *Trainer) TrainFile(ctx context.Context, dataPath, modelPath string) (*TrainResult, error) {
	loaded, err := dataset.Load(dataPath)
	if err != nil {
		return nil, err
	}
	dataset.Normalize(loaded.Table)
	res, err := t.Train(ctx, loaded.Table)
	if err != nil {
		return nil, err
	}
	res.Skipped = append(append([]error(nil), loaded.Skipped...), res.Skipped...)

	lock, err := fileutil.TryLock(modelPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	if err := SaveArtifact(res.Artifact, modelPath); err != nil {
		return nil, errors.Wrapf(err, "save %s", modelPath)
	}
	t.logger.Info("Model artifact saved",
		log.OperationKey, log.OperationSave,
		log.PathKey, modelPath,
		log.RunIDKey, res.RunID,
	)
	return res, nil
}
