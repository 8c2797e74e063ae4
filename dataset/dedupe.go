package dataset

import (
	"strconv"
	"strings"
)

// Deduplicate returns a table without exact duplicate rows and the number of
// rows dropped. Two rows are duplicates when every cell is equal, with
// Missing equal to Missing and distinct from a present "". The first
// occurrence is kept and order is preserved.
func Deduplicate(t *Table) (*Table, int) {
	out := MustNewTable(t.Columns...)
	out.Rows = make([][]Value, 0, len(t.Rows))

	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		key := RowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out, len(t.Rows) - len(out.Rows)
}

// RowKey encodes a row so that two rows get the same key iff they are equal.
// Present cells are length-prefixed; Missing is a bare '~'.
func RowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		s, ok := v.Get()
		if !ok {
			b.WriteByte('~')
			continue
		}
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}
