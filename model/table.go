package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Missing is the sentinel for absent values in numeric columns.
// It is a quiet NaN so arithmetic propagates absence without branching.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Column is one named numeric column of a Table.
type Column struct {
	Name   string
	Values []float64
}

// Table is an in-memory, column-oriented observation table. Rows are keyed
// by (Epoch, SV), optionally under an outermost Station level. All column
// slices have exactly Len() entries; missing values are NaN.
type Table struct {
	// Stations is the outermost key level. It is nil for single-station
	// tables and non-nil (one entry per row) for gathered tables.
	Stations []string
	Epochs   []time.Time
	SVs      []string

	cols  []Column
	index map[string]int // column name -> position in cols
}

// NewTable constructs a table over the given (Epoch, SV) keys.
func NewTable(epochs []time.Time, svs []string) (*Table, error) {
	if len(epochs) != len(svs) {
		return nil, fmt.Errorf("key length mismatch: %d epochs vs %d SVs", len(epochs), len(svs))
	}
	return &Table{Epochs: epochs, SVs: svs, index: map[string]int{}}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Epochs) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t == nil || len(t.Epochs) == 0 }

// HasStations reports whether the table carries the Station key level.
func (t *Table) HasStations() bool { return t.Stations != nil }

// AddColumn appends a column. The values slice must match the row count.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != t.Len() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.Len())
	}
	if _, dup := t.index[name]; dup {
		return fmt.Errorf("column %q already exists", name)
	}
	if t.index == nil {
		t.index = map[string]int{}
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, Column{Name: name, Values: values})
	return nil
}

// Column returns the named column's values, or false if it does not exist.
func (t *Table) Column(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i].Values, true
}

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// rowLess orders rows by (Epoch, SV). The Station level, when present, is
// expected to be grouped already and is not part of the sort key.
func (t *Table) rowLess(i, j int) bool {
	if !t.Epochs[i].Equal(t.Epochs[j]) {
		return t.Epochs[i].Before(t.Epochs[j])
	}
	return t.SVs[i] < t.SVs[j]
}

// takeRows builds a new table containing the rows at the given positions,
// in the given order.
func (t *Table) takeRows(idx []int) *Table {
	out := &Table{
		Epochs: make([]time.Time, len(idx)),
		SVs:    make([]string, len(idx)),
		index:  map[string]int{},
	}
	if t.Stations != nil {
		out.Stations = make([]string, len(idx))
	}
	for n, i := range idx {
		out.Epochs[n] = t.Epochs[i]
		out.SVs[n] = t.SVs[i]
		if t.Stations != nil {
			out.Stations[n] = t.Stations[i]
		}
	}
	for _, c := range t.cols {
		vals := make([]float64, len(idx))
		for n, i := range idx {
			vals[n] = c.Values[i]
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: c.Name, Values: vals})
	}
	return out
}

// SortByEpochSV returns a copy of the table with rows stably sorted by
// (Epoch, SV).
func (t *Table) SortByEpochSV() *Table {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.rowLess(idx[a], idx[b]) })
	return t.takeRows(idx)
}

// DedupEpochSV returns a copy with duplicate (Epoch, SV) keys removed,
// keeping the first occurrence in row order.
func (t *Table) DedupEpochSV() *Table {
	type key struct {
		epoch int64
		sv    string
	}
	seen := make(map[key]bool, t.Len())
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		k := key{t.Epochs[i].UnixNano(), t.SVs[i]}
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, i)
	}
	return t.takeRows(keep)
}

// FilterInterval returns a copy containing only rows whose Epoch lies in the
// half-open interval [iv.Left, iv.Right).
func (t *Table) FilterInterval(iv Interval) *Table {
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if iv.Contains(t.Epochs[i]) {
			keep = append(keep, i)
		}
	}
	return t.takeRows(keep)
}

// DropAllMissingRows returns a copy without rows whose values are missing in
// every one of the named columns. Names that do not exist are ignored. With no
// names, all columns are considered.
func (t *Table) DropAllMissingRows(names ...string) *Table {
	var cols [][]float64
	if len(names) == 0 {
		for _, c := range t.cols {
			cols = append(cols, c.Values)
		}
	} else {
		for _, n := range names {
			if v, ok := t.Column(n); ok {
				cols = append(cols, v)
			}
		}
	}
	if len(cols) == 0 {
		// nothing informative to test against: drop everything
		return t.takeRows(nil)
	}
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		for _, v := range cols {
			if !IsMissing(v[i]) {
				keep = append(keep, i)
				break
			}
		}
	}
	return t.takeRows(keep)
}

// Head returns a copy of the first n rows. n larger than the row count
// yields the whole table.
func (t *Table) Head(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.takeRows(idx)
}

// Select returns a copy containing only the named columns (keys are always
// retained). Unknown names are ignored.
func (t *Table) Select(names ...string) *Table {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	out := t.takeRows(idx)
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	filtered := out.cols[:0]
	out.index = map[string]int{}
	for _, c := range out.cols {
		if wanted[c.Name] {
			out.index[c.Name] = len(filtered)
			filtered = append(filtered, c)
		}
	}
	out.cols = filtered
	return out
}

// RenameColumn renames a column in place. Missing source names are ignored.
func (t *Table) RenameColumn(from, to string) {
	i, ok := t.index[from]
	if !ok {
		return
	}
	delete(t.index, from)
	t.index[to] = i
	t.cols[i].Name = to
}
