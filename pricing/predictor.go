package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
)

// Input is one car to price.
type Input struct {
	Brand          string
	FuelType       string
	ServiceHistory string
	OwnerType      string
	CarAge         int
	EngineCC       int
	MileageKmpl    float64
}

// Predictor prices single cars with a loaded Artifact.
type Predictor struct {
	artifact *Artifact
	known    map[string]struct{}
}

// NewPredictor wraps a loaded artifact.
func NewPredictor(a *Artifact) (*Predictor, error) {
	if a == nil || a.Model == nil || !a.Model.IsFitted() {
		return nil, errors.NewNotFittedError("Predictor", "NewPredictor")
	}
	known := make(map[string]struct{}, len(a.Metadata.KnownBrands))
	for _, b := range a.Metadata.KnownBrands {
		known[b] = struct{}{}
	}
	return &Predictor{artifact: a, known: known}, nil
}

// Artifact returns the wrapped artifact.
func (p *Predictor) Artifact() *Artifact {
	return p.artifact
}

// BucketBrand maps a brand the model did not see often enough to "Other".
func (p *Predictor) BucketBrand(brand string) string {
	return features.BucketBrand(strings.TrimSpace(brand), p.known)
}

// PredictOne returns the estimated price for in. OwnerType must be one of
// First, Few or Many; brands outside the training vocabulary are priced as
// "Other" and unknown fuel or service values contribute nothing.
func (p *Predictor) PredictOne(in Input) (float64, error) {
	owner := strings.TrimSpace(in.OwnerType)
	valid := false
	for _, t := range features.OwnerTypes {
		if owner == t {
			valid = true
			break
		}
	}
	if !valid {
		return 0, errors.NewValidationError("owner_type", "must be First, Few or Many", in.OwnerType)
	}
	if math.IsNaN(in.MileageKmpl) || math.IsInf(in.MileageKmpl, 0) {
		return 0, errors.NewValidationError("mileage_kmpl", "must be finite", in.MileageKmpl)
	}

	t := dataset.MustNewTable(Features()...)
	row := map[string]dataset.Value{
		dataset.ColCarAge:         dataset.Of(strconv.Itoa(in.CarAge)),
		dataset.ColEngineCC:       dataset.Of(strconv.Itoa(in.EngineCC)),
		dataset.ColMileageKmpl:    dataset.Of(strconv.FormatFloat(in.MileageKmpl, 'g', -1, 64)),
		FeatureBrand:              dataset.Of(p.BucketBrand(in.Brand)),
		dataset.ColFuelType:       category(in.FuelType),
		dataset.ColServiceHistory: category(in.ServiceHistory),
		dataset.ColOwnerType:      dataset.Of(owner),
	}
	vals := make([]dataset.Value, len(t.Columns))
	for j, c := range t.Columns {
		vals[j] = row[c]
	}
	if err := t.Append(vals); err != nil {
		return 0, err
	}

	pred, err := p.artifact.Model.Predict(t)
	if err != nil {
		return 0, err
	}
	return pred[0], nil
}

func category(s string) dataset.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return dataset.Missing
	}
	return dataset.Of(s)
}

// FormatPrice renders v as "$12,345.67".
func FormatPrice(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	if neg && cents > 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	frac := cents % 100
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
