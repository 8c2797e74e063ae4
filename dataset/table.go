// Package dataset holds the tabular data model for used-car listings and the
// cleaning stages that run on it: missing-value normalization,
// deduplication and CSV persistence.
//
// A Table is an ordered header plus rows of Values. A Value is either a
// present string or the canonical Missing marker; sentinel strings such as
// "N/A" become Missing in Normalize. Missing is written to CSV as an empty
// field, so a cleaned file reloads to the same table.
package dataset

import (
	"github.com/spf13/cast"

	"github.com/ezoic/carprice/pkg/errors"
)

// Value is one cell.
type Value struct {
	str   string
	valid bool
}

// Missing is the canonical missing marker.
var Missing = Value{}

// Of returns a present value.
func Of(s string) Value {
	return Value{str: s, valid: true}
}

// ValueOf converts a Go scalar to a Value. nil becomes Missing; numbers and
// booleans are formatted with spf13/cast.
func ValueOf(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Missing
	case Value:
		return x
	case string:
		return Of(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return Missing
	}
	return Of(s)
}

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool {
	return !v.valid
}

// Get returns the string and whether it is present.
func (v Value) Get() (string, bool) {
	return v.str, v.valid
}

// String returns the cell text; Missing renders as "".
func (v Value) String() string {
	return v.str
}

// Table is an ordered collection of rows sharing one header.
type Table struct {
	Columns []string
	Rows    [][]Value

	index map[string]int
}

// NewTable creates an empty table. Column names must be unique.
func NewTable(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, errors.NewValidationError("header", "duplicate column name", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, index: index}, nil
}

// MustNewTable is NewTable for static headers; it panics on duplicates.
func MustNewTable(columns ...string) *Table {
	t, err := NewTable(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// HasColumns reports whether every named column exists.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if _, ok := t.ColumnIndex(n); !ok {
			return false
		}
	}
	return true
}

// Require returns a ValidationError naming the first absent column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if _, ok := t.ColumnIndex(n); !ok {
			return errors.NewValidationError("column", "required column is missing", n)
		}
	}
	return nil
}

// Append adds a row. The row length must match the header.
func (t *Table) Append(row []Value) error {
	if len(row) != len(t.Columns) {
		return errors.NewDimensionError("Table.Append", len(t.Columns), len(row), 1)
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AppendValues is Append for Go scalars, converted with ValueOf.
func (t *Table) AppendValues(vals ...interface{}) error {
	row := make([]Value, len(vals))
	for i, v := range vals {
		row[i] = ValueOf(v)
	}
	return t.Append(row)
}

// Get returns the named cell of row i.
func (t *Table) Get(i int, column string) (Value, bool) {
	j, ok := t.ColumnIndex(column)
	if !ok || i < 0 || i >= len(t.Rows) {
		return Missing, false
	}
	return t.Rows[i][j], true
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, errors.NewValidationError("column", "unknown column", name)
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// SetColumn overwrites the named column, or appends it if absent.
// len(values) must equal Len().
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.Rows) {
		return errors.NewDimensionError("Table.SetColumn", len(t.Rows), len(values), 0)
	}
	if j, ok := t.ColumnIndex(name); ok {
		for i := range t.Rows {
			t.Rows[i][j] = values[i]
		}
		return nil
	}

	t.Columns = append(t.Columns, name)
	t.index[name] = len(t.Columns) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := MustNewTable(t.Columns...)
	c.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		c.Rows[i] = r
	}
	return c
}

// Filter returns a table with the rows for which keep returns true. Rows are
// shared with t, not copied.
func (t *Table) Filter(keep func(r Row) bool) *Table {
	out := MustNewTable(t.Columns...)
	for _, row := range t.Rows {
		if keep(Row{table: t, values: row}) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Subset returns the rows at the given indices, in that order.
func (t *Table) Subset(indices []int) *Table {
	out := MustNewTable(t.Columns...)
	out.Rows = make([][]Value, len(indices))
	for i, idx := range indices {
		out.Rows[i] = t.Rows[idx]
	}
	return out
}

// Row is a read-only view of one row.
type Row struct {
	table  *Table
	values []Value
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, values: t.Rows[i]}
}

// Get returns the named cell, or Missing for an unknown column.
func (r Row) Get(column string) Value {
	j, ok := r.table.ColumnIndex(column)
	if !ok {
		return Missing
	}
	return r.values[j]
}

// Values returns the cells in column order.
func (r Row) Values() []Value {
	return r.values
}

func itoa(n int) string {
	return cast.ToString(n)
}
