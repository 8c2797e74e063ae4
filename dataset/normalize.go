package dataset

// DefaultSentinels are the strings read as "value absent". Matching is exact
// and case-sensitive: "NONE" and "n/a" are data.
var DefaultSentinels = []string{"None", "", "none", "NA", "N/A"}

// Normalizer replaces sentinel strings with Missing.
type Normalizer struct {
	sentinels map[string]struct{}
}

// NewNormalizer creates a Normalizer for the given sentinels, or for
// DefaultSentinels when none are given.
func NewNormalizer(sentinels ...string) *Normalizer {
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[s] = struct{}{}
	}
	return &Normalizer{sentinels: set}
}

// IsSentinel reports whether s stands for a missing value.
func (n *Normalizer) IsSentinel(s string) bool {
	_, ok := n.sentinels[s]
	return ok
}

// NormalizeResult counts replaced cells.
type NormalizeResult struct {
	Replaced int
	ByColumn map[string]int
}

// Normalize rewrites every sentinel cell of t to Missing, in place, in any
// column. Cells that are already Missing are not counted.
func (n *Normalizer) Normalize(t *Table) NormalizeResult {
	res := NormalizeResult{ByColumn: make(map[string]int)}
	for _, row := range t.Rows {
		for j, v := range row {
			s, ok := v.Get()
			if !ok || !n.IsSentinel(s) {
				continue
			}
			row[j] = Missing
			res.Replaced++
			res.ByColumn[t.Columns[j]]++
		}
	}
	return res
}

// NormalizeValue maps a single cell.
func (n *Normalizer) NormalizeValue(v Value) Value {
	if s, ok := v.Get(); ok && n.IsSentinel(s) {
		return Missing
	}
	return v
}

var defaultNormalizer = NewNormalizer()

// Normalize applies the default sentinel set to t.
func Normalize(t *Table) NormalizeResult {
	return defaultNormalizer.Normalize(t)
}

// MissingCount returns how many cells of column are Missing. Unknown columns
// count zero.
func MissingCount(t *Table, column string) int {
	j, ok := t.ColumnIndex(column)
	if !ok {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		if row[j].IsMissing() {
			n++
		}
	}
	return n
}
