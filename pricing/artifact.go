package pricing

import (
	"bufio"
	"io"
	"os"

	"github.com/ezoic/carprice/core/model"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/fileutil"
	"github.com/ezoic/carprice/sklearn/pipeline"
)

// DateLayout formats Metadata.TrainingDate.
const DateLayout = "2006-01-02"

// Performance holds test-split metrics.
type Performance struct {
	MAE float64
	R2  float64
}

// Metadata describes how an artifact was trained.
type Metadata struct {
	ModelType     string
	TrainingDate  string
	RunID         string
	ReferenceYear int
	BrandMinCount int
	// KnownBrands are the brands the model saw un-bucketed, sorted.
	KnownBrands []string
	Performance Performance
	NTrain      int
	NTest       int
}

// Artifact is the persisted model.
type Artifact struct {
	Model    *pipeline.Pipeline
	Features []string
	Metadata Metadata
}

// SaveArtifact gob-encodes a to path, replacing any previous file atomically.
func SaveArtifact(a *Artifact, path string) error {
	if a == nil || a.Model == nil || !a.Model.IsFitted() {
		return errors.NewValidationError("artifact", "model is not fitted", path)
	}
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return model.SaveModelToWriter(a, w)
	})
}

// LoadArtifact decodes the artifact at path. A missing file is a
// *errors.NotFoundError.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("model artifact", path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	a := &Artifact{}
	if err := model.LoadModelFromReader(a, bufio.NewReader(f)); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if a.Model == nil || !a.Model.IsFitted() {
		return nil, errors.NewValidationError("artifact", "model is missing or not fitted", path)
	}
	return a, nil
}
