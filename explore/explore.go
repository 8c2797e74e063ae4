// Package explore answers the questions the listing dashboards ask of a
// cleaned table: filter by brand, fuel type, make-year range and free-text
// search, summarize prices and average them per make year.
package explore

import (
	"os"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
)

// All disables an exact-match filter.
const All = "All"

// Filter selects listings. Zero fields do not filter.
type Filter struct {
	Brand    string
	FuelType string
	// YearMin and YearMax bound make_year inclusively; 0 is unbounded.
	YearMin int
	YearMax int
	// Search matches any cell, case-insensitively.
	Search string
}

func (f Filter) yearBounded() bool {
	return f.YearMin != 0 || f.YearMax != 0
}

// Apply returns the rows of t matching f. When a year bound is set, rows
// without a parseable make_year are excluded.
func (f Filter) Apply(t *dataset.Table) (*dataset.Table, error) {
	var need []string
	if active(f.Brand) {
		need = append(need, dataset.ColBrand)
	}
	if active(f.FuelType) {
		need = append(need, dataset.ColFuelType)
	}
	if f.yearBounded() {
		need = append(need, dataset.ColMakeYear)
		if f.YearMin != 0 && f.YearMax != 0 && f.YearMin > f.YearMax {
			return nil, errors.NewValidationError("year range", "minimum is above maximum", [2]int{f.YearMin, f.YearMax})
		}
	}
	if err := t.Require(need...); err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Search))
	rowNum := 0
	return t.Filter(func(r dataset.Row) bool {
		rowNum++
		if active(f.Brand) && !equals(r.Get(dataset.ColBrand), f.Brand) {
			return false
		}
		if active(f.FuelType) && !equals(r.Get(dataset.ColFuelType), f.FuelType) {
			return false
		}
		if f.yearBounded() {
			year, err := features.RequiredInt(r, dataset.ColMakeYear, rowNum)
			if err != nil {
				return false
			}
			if (f.YearMin != 0 && year < f.YearMin) || (f.YearMax != 0 && year > f.YearMax) {
				return false
			}
		}
		return query == "" || contains(r, query)
	}), nil
}

func active(v string) bool {
	return v != "" && v != All
}

func equals(v dataset.Value, want string) bool {
	s, ok := v.Get()
	return ok && s == want
}

func contains(r dataset.Row, query string) bool {
	for _, v := range r.Values() {
		if s, ok := v.Get(); ok && strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

// Options returns the distinct present values of column, sorted.
func Options(t *dataset.Table, column string) ([]string, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		s, ok := v.Get()
		if !ok {
			continue
		}
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

// YearRange returns the smallest and largest parseable make_year, and false
// when there is none.
func YearRange(t *dataset.Table) (lo, hi int, ok bool) {
	if !t.HasColumns(dataset.ColMakeYear) {
		return 0, 0, false
	}
	for i := 0; i < t.Len(); i++ {
		year, err := features.RequiredInt(t.Row(i), dataset.ColMakeYear, i+1)
		if err != nil {
			continue
		}
		if !ok || year < lo {
			lo = year
		}
		if !ok || year > hi {
			hi = year
		}
		ok = true
	}
	return lo, hi, ok
}

// Summary describes the prices of a table.
type Summary struct {
	Rows int
	// Priced counts rows with a parseable price; the statistics cover them.
	Priced   int
	AvgPrice float64
	MaxPrice float64
	MinPrice float64
}

// Empty reports whether there are no prices to show.
func (s Summary) Empty() bool {
	return s.Priced == 0
}

// Summarize computes price statistics over t.
func Summarize(t *dataset.Table) (Summary, error) {
	if err := t.Require(dataset.ColPriceUSD); err != nil {
		return Summary{}, err
	}
	s := Summary{Rows: t.Len()}
	prices := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		p, err := features.RequiredFloat(t.Row(i), dataset.ColPriceUSD, i+1)
		if err != nil {
			continue
		}
		prices = append(prices, p)
	}
	s.Priced = len(prices)
	if s.Priced == 0 {
		return s, nil
	}
	s.AvgPrice = stat.Mean(prices, nil)
	s.MaxPrice = floats.Max(prices)
	s.MinPrice = floats.Min(prices)
	return s, nil
}

// YearPoint is the mean price of one make year.
type YearPoint struct {
	Year     int
	AvgPrice float64
	N        int
}

// TrendByYear averages price per make year, ascending by year. Rows without
// a parseable year or price are ignored.
func TrendByYear(t *dataset.Table) ([]YearPoint, error) {
	if err := t.Require(dataset.ColMakeYear, dataset.ColPriceUSD); err != nil {
		return nil, err
	}
	byYear := make(map[int][]float64)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		year, err := features.RequiredInt(r, dataset.ColMakeYear, i+1)
		if err != nil {
			continue
		}
		p, err := features.RequiredFloat(r, dataset.ColPriceUSD, i+1)
		if err != nil {
			continue
		}
		byYear[year] = append(byYear[year], p)
	}

	out := make([]YearPoint, 0, len(byYear))
	for year, prices := range byYear {
		out = append(out, YearPoint{Year: year, AvgPrice: stat.Mean(prices, nil), N: len(prices)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// LoadOrEmpty loads and normalizes the table at path. A missing file, or
// one without even a header, yields an empty table with the listing
// columns, so callers can show "no data".
func LoadOrEmpty(path string) (*dataset.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return dataset.MustNewTable(dataset.RequiredColumns...), nil
	}
	res, err := dataset.Load(path)
	if dataset.IsEmptyFile(err) {
		return dataset.MustNewTable(dataset.RequiredColumns...), nil
	}
	if err != nil {
		return nil, err
	}
	dataset.Normalize(res.Table)
	return res.Table, nil
}
