// Package features derives model features from cleaned listings.
//
// Derived columns:
//
//   - car_age: reference year minus make_year, where the reference year comes
//     from the Deriver's clock (time.Now by default)
//   - owner_type: First for owner_count in [0,1], Few for (1,3], Many above 3
//   - brand_bucketed: the brand if it occurs at least BrandMinCount times in
//     the table, otherwise "Other"
//
// A missing input cell gives a missing derived value; only malformed cells
// drop a row.
//
// Brand bucketing needs the whole table, so Derive runs in two passes: the
// first counts brands over every row, the second decodes rows and writes
// the columns.
package features

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/pkg/errors"
)

// Listing is a typed view of one row. Optional fields left Missing in the
// table are zero here; check the table directly when the distinction matters.
type Listing struct {
	Brand          string
	FuelType       string
	MakeYear       int
	MileageKmpl    float64
	EngineCC       int
	OwnerCount     int
	ServiceHistory string
	Transmission   string
	Color          string
	InsuranceValid string
	PriceUSD       float64
}

// DecodeListing converts row r (1-based index rowNum, for errors) into a
// Listing. make_year, owner_count and price_usd are required; the other
// numeric fields must parse when present.
func DecodeListing(r dataset.Row, rowNum int) (Listing, error) {
	var (
		l   Listing
		err error
	)
	l.Brand = r.Get(dataset.ColBrand).String()
	l.FuelType = r.Get(dataset.ColFuelType).String()
	l.ServiceHistory = r.Get(dataset.ColServiceHistory).String()
	l.Transmission = r.Get(dataset.ColTransmission).String()
	l.Color = r.Get(dataset.ColColor).String()
	l.InsuranceValid = r.Get(dataset.ColInsuranceValid).String()

	if l.MakeYear, err = RequiredInt(r, dataset.ColMakeYear, rowNum); err != nil {
		return l, err
	}
	if l.OwnerCount, err = RequiredInt(r, dataset.ColOwnerCount, rowNum); err != nil {
		return l, err
	}
	if l.PriceUSD, err = RequiredFloat(r, dataset.ColPriceUSD, rowNum); err != nil {
		return l, err
	}
	if l.MileageKmpl, err = optionalFloat(r, dataset.ColMileageKmpl, rowNum); err != nil {
		return l, err
	}
	if l.EngineCC, err = optionalInt(r, dataset.ColEngineCC, rowNum); err != nil {
		return l, err
	}
	return l, nil
}

// RequiredInt parses a base-10 integer cell. Float text with a zero
// fraction ("2015.0", as written by tools that widen integer columns with
// gaps) is accepted; hex, octal and other prefixed forms are not.
func RequiredInt(r dataset.Row, column string, rowNum int) (int, error) {
	s, ok := r.Get(column).Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return 0, errors.NewRowError(rowNum, column, "missing value")
	}
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(n), nil
	}
	if !isDecimal(s) {
		return 0, errors.NewRowError(rowNum, column, "not an integer: "+s)
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.NewRowError(rowNum, column, "not an integer: "+s)
	}
	return int(f), nil
}

// OptionalInt is RequiredInt for cells that may be missing: a missing or
// blank cell gives ok == false and no error.
func OptionalInt(r dataset.Row, column string, rowNum int) (n int, ok bool, err error) {
	if isBlank(r.Get(column)) {
		return 0, false, nil
	}
	n, err = RequiredInt(r, column, rowNum)
	return n, err == nil, err
}

// RequiredFloat parses a decimal float cell.
func RequiredFloat(r dataset.Row, column string, rowNum int) (float64, error) {
	s, ok := r.Get(column).Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return 0, errors.NewRowError(rowNum, column, "missing value")
	}
	if !isDecimal(s) {
		return 0, errors.NewRowError(rowNum, column, "not a number: "+s)
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, errors.NewRowError(rowNum, column, "not a number: "+s)
	}
	return f, nil
}

func optionalInt(r dataset.Row, column string, rowNum int) (int, error) {
	if isBlank(r.Get(column)) {
		return 0, nil
	}
	return RequiredInt(r, column, rowNum)
}

func optionalFloat(r dataset.Row, column string, rowNum int) (float64, error) {
	if isBlank(r.Get(column)) {
		return 0, nil
	}
	return RequiredFloat(r, column, rowNum)
}

// isDecimal rejects the prefixed and special forms strconv would otherwise
// accept ("0x7DF", "0x1p4", "Inf", "NaN").
func isDecimal(s string) bool {
	digits := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return digits
}

func isBlank(v dataset.Value) bool {
	s, ok := v.Get()
	return !ok || strings.TrimSpace(s) == ""
}
