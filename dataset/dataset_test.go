package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/carprice/pkg/errors"
)

const rawCSV = `brand,fuel_type,make_year,service_history
Toyota,Petrol,2015,Full
Toyota,Petrol,2015,Full
Honda,NA,2018,None
Honda,N/A,2018,
BMW,Diesel,2020,none
BMW,Diesel,2020,
`

func readString(t *testing.T, s string) *LoadResult {
	t.Helper()
	res, err := Read(strings.NewReader(s))
	require.NoError(t, err)
	return res
}

func TestNormalize_ReplacesEverySentinel(t *testing.T) {
	tbl := readString(t, rawCSV).Table

	res := Normalize(tbl)

	assert.Equal(t, 6, res.Replaced)
	assert.Equal(t, 2, res.ByColumn["fuel_type"])
	assert.Equal(t, 4, res.ByColumn["service_history"])
	for _, row := range tbl.Rows {
		for _, v := range row {
			s, ok := v.Get()
			if ok {
				assert.False(t, defaultNormalizer.IsSentinel(s), "sentinel %q survived", s)
			}
		}
	}
	assert.Equal(t, 4, MissingCount(tbl, "service_history"))
}

func TestNormalize_CaseSensitive(t *testing.T) {
	tbl := MustNewTable("a")
	require.NoError(t, tbl.AppendValues("NONE"))
	require.NoError(t, tbl.AppendValues("n/a"))
	require.NoError(t, tbl.AppendValues("Na"))

	res := Normalize(tbl)
	assert.Zero(t, res.Replaced)
}

func TestNormalizer_CustomSentinels(t *testing.T) {
	n := NewNormalizer("?")
	assert.True(t, n.IsSentinel("?"))
	assert.False(t, n.IsSentinel("NA"))
	assert.True(t, n.NormalizeValue(Of("?")).IsMissing())
	assert.Equal(t, "NA", n.NormalizeValue(Of("NA")).String())
}

func TestDeduplicate(t *testing.T) {
	tbl := readString(t, rawCSV).Table
	Normalize(tbl)

	out, removed := Deduplicate(tbl)

	// Toyota repeats verbatim; Honda rows collapse once NA and N/A are both
	// missing; BMW rows collapse once "none" and "" are both missing.
	assert.Equal(t, 3, removed)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "Toyota", out.Rows[0][0].String())
	assert.Equal(t, "Honda", out.Rows[1][0].String())
	assert.Equal(t, "BMW", out.Rows[2][0].String())

	seen := map[string]bool{}
	for _, row := range out.Rows {
		key := RowKey(row)
		assert.False(t, seen[key], "duplicate row in output")
		seen[key] = true
	}
}

func TestDeduplicate_MissingDiffersFromEmpty(t *testing.T) {
	tbl := MustNewTable("a", "b")
	require.NoError(t, tbl.Append([]Value{Of(""), Of("x")}))
	require.NoError(t, tbl.Append([]Value{Missing, Of("x")}))

	_, removed := Deduplicate(tbl)
	assert.Zero(t, removed)
}

func TestRowKey_NoCollisions(t *testing.T) {
	a := []Value{Of("1:a"), Of("")}
	b := []Value{Of("1"), Of("a1:")}
	assert.NotEqual(t, RowKey(a), RowKey(b))
	assert.NotEqual(t, RowKey([]Value{Missing}), RowKey([]Value{Of("~")}))
}

func TestCleaning_Idempotent(t *testing.T) {
	tbl := readString(t, rawCSV).Table
	Normalize(tbl)
	once, _ := Deduplicate(tbl)

	var buf bytes.Buffer
	require.NoError(t, Write(once, &buf))

	again := readString(t, buf.String()).Table
	res := Normalize(again)
	twice, removed := Deduplicate(again)

	// Only the empty fields written for Missing are read back as sentinels.
	assert.Zero(t, removed)
	totalMissing := 0
	for _, c := range once.Columns {
		totalMissing += MissingCount(once, c)
	}
	assert.Equal(t, totalMissing, res.Replaced)
	assert.Equal(t, once.Len(), twice.Len())
	for i := range once.Rows {
		assert.Equal(t, RowKey(once.Rows[i]), RowKey(twice.Rows[i]))
	}
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	res := readString(t, "a,b\n1,2\n3\n4,5,6\n7,8\n")

	assert.Equal(t, 2, res.Table.Len())
	require.Equal(t, 2, res.SkippedCount())

	var rowErr *errors.RowError
	require.True(t, errors.As(res.Skipped[0], &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}

func TestRead_StripsBOM(t *testing.T) {
	res := readString(t, "\xEF\xBB\xBFbrand,price_usd\nKia,100\n")
	_, ok := res.Table.ColumnIndex("brand")
	assert.True(t, ok)
}

func TestRead_EmptyAndDuplicateHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.True(t, IsEmptyFile(errors.Wrap(err, "read empty.csv")))

	_, err = Read(strings.NewReader("a,a\n1,2\n"))
	assert.True(t, errors.As(err, &verr))
	assert.False(t, IsEmptyFile(err))
	assert.False(t, IsEmptyFile(nil))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))

	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Path, "missing.csv")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tbl := readString(t, rawCSV).Table
	Normalize(tbl)

	path := filepath.Join(t.TempDir(), "out", "processed.csv")
	require.NoError(t, Save(tbl, path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	res, err := Load(path)
	require.NoError(t, err)
	Normalize(res.Table)
	assert.Equal(t, tbl.Columns, res.Table.Columns)
	require.Equal(t, tbl.Len(), res.Table.Len())
	for i := range tbl.Rows {
		assert.Equal(t, RowKey(tbl.Rows[i]), RowKey(res.Table.Rows[i]))
	}
}

func TestTable_SetColumn(t *testing.T) {
	tbl := MustNewTable("a")
	require.NoError(t, tbl.AppendValues(1))
	require.NoError(t, tbl.AppendValues(2.5))

	require.NoError(t, tbl.SetColumn("b", []Value{Of("x"), Missing}))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.True(t, tbl.Rows[1][1].IsMissing())

	require.NoError(t, tbl.SetColumn("a", []Value{Of("9"), Of("8")}))
	assert.Equal(t, "9", tbl.Rows[0][0].String())
	assert.Len(t, tbl.Columns, 2)

	err := tbl.SetColumn("c", []Value{Missing})
	assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))
}

func TestValueOf(t *testing.T) {
	assert.True(t, ValueOf(nil).IsMissing())
	assert.Equal(t, "15", ValueOf(15).String())
	assert.Equal(t, "15.5", ValueOf(15.5).String())
	assert.Equal(t, "Kia", ValueOf("Kia").String())
}

func TestValidateListings(t *testing.T) {
	tbl := MustNewTable(RequiredColumns...)
	assert.NoError(t, ValidateListings(tbl))

	partial := MustNewTable(ColBrand, ColMakeYear)
	err := ValidateListings(partial)
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ColFuelType, verr.Value)
}
