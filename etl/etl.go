// Package etl runs the listing cleaning pipeline:
//
//	load -> normalize sentinels -> drop duplicates -> derive features -> save
//
// A run reads the whole input into memory and writes one output file. Runs
// against the same output path are serialized with an advisory lock file;
// a second concurrent run fails with errors.ErrLocked instead of interleaving
// writes.
package etl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/fileutil"
	"github.com/ezoic/carprice/pkg/log"
)

// Report summarizes one run.
type Report struct {
	RunID      string
	InputPath  string
	OutputPath string

	InputRows  int
	OutputRows int
	Columns    int

	// Replaced counts sentinel cells turned into Missing, in total and per column.
	Replaced        int
	MissingByColumn map[string]int
	// Duplicates counts dropped exact duplicate rows.
	Duplicates int
	// Skipped holds malformed rows dropped while loading or deriving.
	Skipped []error

	Derived       bool
	ReferenceYear int
	KnownBrands   []string
	Duration      time.Duration
}

// SkippedCount returns len(Skipped).
func (r *Report) SkippedCount() int {
	return len(r.Skipped)
}

// Runner executes cleaning runs.
type Runner struct {
	normalizer *dataset.Normalizer
	deriver    *features.Deriver
	logger     log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithNormalizer replaces the default sentinel set.
func WithNormalizer(n *dataset.Normalizer) Option {
	return func(r *Runner) {
		r.normalizer = n
	}
}

// WithDeriver sets the feature deriver, e.g. to pin the clock.
func WithDeriver(d *features.Deriver) Option {
	return func(r *Runner) {
		r.deriver = d
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner with the default sentinels and a Deriver using
// the wall clock.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("etl")
	}
	if r.normalizer == nil {
		r.normalizer = dataset.NewNormalizer()
	}
	if r.deriver == nil {
		r.deriver = features.NewDeriver(features.WithLogger(r.logger))
	}
	return r
}

// Run cleans inputPath into outputPath. car_age is always added;
// owner_type and brand_bucketed only when derive is true.
//
// A missing input returns *errors.NotFoundError and writes nothing. On a
// write failure the previous content of outputPath, if any, is kept.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string, derive bool) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(log.RunIDKey, runID)

	loaded, err := dataset.Load(inputPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, inputPath,
		log.RowsKey, loaded.Table.Len(),
		log.ColumnsKey, len(loaded.Table.Columns),
		log.SkippedKey, loaded.SkippedCount(),
	)
	if err := dataset.ValidateListings(loaded.Table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock, err := fileutil.TryLock(outputPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logger.Warn("Releasing run lock failed", log.ErrorKey, uerr)
		}
	}()

	out, report, err := r.transform(ctx, logger, loaded.Table, derive)
	if err != nil {
		return nil, err
	}
	report.RunID = runID
	report.InputPath = inputPath
	report.OutputPath = outputPath
	report.Skipped = append(loaded.Skipped, report.Skipped...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dataset.Save(out, outputPath); err != nil {
		logger.Error("Saving processed dataset failed", err, log.PathKey, outputPath)
		return nil, errors.Wrapf(err, "save %s", outputPath)
	}

	report.Duration = time.Since(start)
	logger.Info("Processed dataset saved",
		log.OperationKey, log.OperationSave,
		log.PathKey, outputPath,
		log.RowsKey, report.OutputRows,
		log.ColumnsKey, report.Columns,
		log.DurationMsKey, report.Duration.Milliseconds(),
	)
	return report, nil
}

// Transform applies the in-memory stages to t without touching the
// filesystem. t itself is normalized in place.
func (r *Runner) Transform(ctx context.Context, t *dataset.Table, derive bool) (*dataset.Table, *Report, error) {
	return r.transform(ctx, r.logger, t, derive)
}

func (r *Runner) transform(ctx context.Context, logger log.Logger, t *dataset.Table, derive bool) (*dataset.Table, *Report, error) {
	report := &Report{InputRows: t.Len(), Derived: derive}

	norm := r.normalizer.Normalize(t)
	report.Replaced = norm.Replaced
	report.MissingByColumn = norm.ByColumn
	logger.Info("Missing values normalized",
		log.OperationKey, log.OperationNormalize,
		log.PhaseKey, log.PhaseCleaning,
		log.ReplacedKey, norm.Replaced,
		"service_history_missing", dataset.MissingCount(t, dataset.ColServiceHistory),
	)

	deduped, removed := dataset.Deduplicate(t)
	report.Duplicates = removed
	logger.Info("Duplicates removed",
		log.OperationKey, log.OperationDedupe,
		log.PhaseKey, log.PhaseCleaning,
		log.RowsKey, deduped.Len(),
		log.RemovedKey, removed,
	)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		derived *features.Result
		err     error
	)
	if derive {
		derived, err = r.deriver.Derive(deduped)
	} else {
		derived, err = r.deriver.AddCarAge(deduped)
	}
	if err != nil {
		return nil, nil, err
	}
	if derive {
		report.KnownBrands = derived.KnownBrands()
	}

	report.Skipped = derived.Skipped
	report.ReferenceYear = derived.ReferenceYear
	report.OutputRows = derived.Table.Len()
	report.Columns = len(derived.Table.Columns)
	return derived.Table, report, nil
}
