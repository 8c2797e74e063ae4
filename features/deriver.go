package features

import (
	"sort"
	"strconv"
	"time"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
)

// Owner tiers.
const (
	OwnerFirst = "First"
	OwnerFew   = "Few"
	OwnerMany  = "Many"
)

// OtherBrand replaces brands below the frequency threshold.
const OtherBrand = "Other"

// DefaultBrandMinCount is the smallest brand frequency kept as-is.
const DefaultBrandMinCount = 10

// OwnerTypes lists the tiers in ordinal order.
var OwnerTypes = []string{OwnerFirst, OwnerFew, OwnerMany}

// OwnerType buckets an owner count. 0 and 1 are First, 2 and 3 are Few,
// anything above 3 is Many. Negative counts are invalid.
func OwnerType(ownerCount int) (string, error) {
	switch {
	case ownerCount < 0:
		return "", errors.NewValidationError("owner_count", "must be non-negative", ownerCount)
	case ownerCount <= 1:
		return OwnerFirst, nil
	case ownerCount <= 3:
		return OwnerFew, nil
	default:
		return OwnerMany, nil
	}
}

// CarAge returns referenceYear - makeYear. Future make years give negative
// ages and are not rejected.
func CarAge(makeYear, referenceYear int) int {
	return referenceYear - makeYear
}

// BucketBrand maps brand to OtherBrand unless it is in known.
func BucketBrand(brand string, known map[string]struct{}) string {
	if _, ok := known[brand]; ok {
		return brand
	}
	return OtherBrand
}

// Deriver appends derived feature columns to a cleaned table.
type Deriver struct {
	now           func() time.Time
	brandMinCount int
	logger        log.Logger
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithClock sets the time source for the reference year.
func WithClock(now func() time.Time) Option {
	return func(d *Deriver) {
		d.now = now
	}
}

// WithReferenceYear pins the reference year.
func WithReferenceYear(year int) Option {
	return WithClock(func() time.Time {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	})
}

// WithBrandMinCount sets the bucketing threshold.
func WithBrandMinCount(n int) Option {
	return func(d *Deriver) {
		d.brandMinCount = n
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(d *Deriver) {
		d.logger = l
	}
}

// NewDeriver creates a Deriver.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		now:           time.Now,
		brandMinCount: DefaultBrandMinCount,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.GetLoggerWithName("features").With(log.ComponentKey, "deriver")
	}
	return d
}

// Now reads the Deriver's clock.
func (d *Deriver) Now() time.Time {
	return d.now()
}

// ReferenceYear returns the current year of the Deriver's clock.
func (d *Deriver) ReferenceYear() int {
	return d.now().Year()
}

// BrandMinCount returns the bucketing threshold.
func (d *Deriver) BrandMinCount() int {
	return d.brandMinCount
}

// Result is the output of a derivation.
type Result struct {
	Table         *dataset.Table
	ReferenceYear int
	// Skipped holds one *errors.RowError per dropped input row.
	Skipped []error
	// BrandCounts is the per-brand frequency over every input row.
	BrandCounts map[string]int
	// Bucketed counts rows whose brand became OtherBrand.
	Bucketed int
	// BrandMinCount is the threshold that was applied.
	BrandMinCount int
}

// KnownBrands returns the brands kept as-is, sorted.
func (r *Result) KnownBrands() []string {
	var out []string
	for b, n := range r.BrandCounts {
		if n >= r.BrandMinCount {
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return out
}

// AddCarAge returns a copy of t with car_age set. A missing make_year gives
// a missing car_age; rows whose make_year is present but not an integer are
// dropped and reported.
func (d *Deriver) AddCarAge(t *dataset.Table) (*Result, error) {
	if err := t.Require(dataset.ColMakeYear); err != nil {
		return nil, err
	}

	refYear := d.ReferenceYear()
	res := &Result{ReferenceYear: refYear, BrandMinCount: d.brandMinCount}
	var (
		kept []int
		ages []dataset.Value
	)
	for i := range t.Rows {
		age, err := carAgeValue(t.Row(i), i+1, refYear)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		kept = append(kept, i)
		ages = append(ages, age)
	}

	out := t.Subset(kept).Clone()
	if err := out.SetColumn(dataset.ColCarAge, ages); err != nil {
		return nil, err
	}
	res.Table = out
	d.logSkipped(res.Skipped)
	return res, nil
}

func carAgeValue(r dataset.Row, rowNum, refYear int) (dataset.Value, error) {
	year, ok, err := OptionalInt(r, dataset.ColMakeYear, rowNum)
	if err != nil || !ok {
		return dataset.Missing, err
	}
	return dataset.Of(strconv.Itoa(CarAge(year, refYear))), nil
}

func ownerTypeValue(r dataset.Row, rowNum int) (dataset.Value, error) {
	owners, ok, err := OptionalInt(r, dataset.ColOwnerCount, rowNum)
	if err != nil || !ok {
		return dataset.Missing, err
	}
	tier, err := OwnerType(owners)
	if err != nil {
		return dataset.Missing, errors.NewRowError(rowNum, dataset.ColOwnerCount, "must be non-negative")
	}
	return dataset.Of(tier), nil
}

type derivedRow struct {
	index     int
	carAge    dataset.Value
	ownerType dataset.Value
	brand     dataset.Value
}

// Derive returns a copy of t with car_age, owner_type and brand_bucketed set,
// appended or overwritten. t must contain make_year, owner_count and brand.
//
// Brand frequencies are counted over every row of t before any row is
// looked at individually. A missing make_year, owner_count or brand gives a
// missing derived value and the row is kept. Rows whose make_year or
// owner_count is present but malformed, or whose owner_count is negative,
// are dropped and reported in Result.Skipped.
func (d *Deriver) Derive(t *dataset.Table) (*Result, error) {
	if err := t.Require(dataset.ColMakeYear, dataset.ColOwnerCount, dataset.ColBrand); err != nil {
		return nil, err
	}

	refYear := d.ReferenceYear()
	res := &Result{
		ReferenceYear: refYear,
		BrandCounts:   make(map[string]int),
		BrandMinCount: d.brandMinCount,
	}

	// Pass 1: brand frequencies over the whole table.
	for i := range t.Rows {
		if b, ok := t.Row(i).Get(dataset.ColBrand).Get(); ok {
			res.BrandCounts[b]++
		}
	}

	// Pass 2: per-row features.
	rows := make([]derivedRow, 0, len(t.Rows))
	for i := range t.Rows {
		r := t.Row(i)
		age, err := carAgeValue(r, i+1, refYear)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		tier, err := ownerTypeValue(r, i+1)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		rows = append(rows, derivedRow{index: i, carAge: age, ownerType: tier, brand: r.Get(dataset.ColBrand)})
	}

	indices := make([]int, len(rows))
	ages := make([]dataset.Value, len(rows))
	tiers := make([]dataset.Value, len(rows))
	buckets := make([]dataset.Value, len(rows))
	for k, row := range rows {
		indices[k] = row.index
		ages[k] = row.carAge
		tiers[k] = row.ownerType

		b, ok := row.brand.Get()
		switch {
		case !ok:
			buckets[k] = dataset.Missing
		case res.BrandCounts[b] < d.brandMinCount:
			buckets[k] = dataset.Of(OtherBrand)
			res.Bucketed++
		default:
			buckets[k] = dataset.Of(b)
		}
	}

	out := t.Subset(indices).Clone()
	for _, col := range []struct {
		name   string
		values []dataset.Value
	}{
		{dataset.ColCarAge, ages},
		{dataset.ColOwnerType, tiers},
		{dataset.ColBrandBucketed, buckets},
	} {
		if err := out.SetColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}
	res.Table = out

	d.logger.Info("Feature derivation completed",
		log.OperationKey, log.OperationDerive,
		log.RowsKey, out.Len(),
		log.SkippedKey, len(res.Skipped),
		"reference_year", refYear,
		"brands", len(res.BrandCounts),
		"bucketed_rows", res.Bucketed,
	)
	d.logSkipped(res.Skipped)
	return res, nil
}

func (d *Deriver) logSkipped(skipped []error) {
	for _, err := range skipped {
		d.logger.Warn("Row skipped", log.ErrorKey, err)
	}
}
