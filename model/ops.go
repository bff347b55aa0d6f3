package model

import (
	"fmt"
	"time"
)

// Concat appends the given tables row-wise. The column set of the result is
// the union of the inputs' columns, in first-seen order; values absent from a
// contributing table are missing. All inputs must agree on whether the
// Station level is present.
func Concat(tables ...*Table) (*Table, error) {
	total := 0
	hasStations := false
	first := true
	for _, t := range tables {
		if t == nil {
			continue
		}
		if first {
			hasStations = t.HasStations()
			first = false
		} else if !t.IsEmpty() && t.HasStations() != hasStations {
			return nil, fmt.Errorf("cannot concatenate tables with mismatched Station levels")
		}
		total += t.Len()
	}

	out := &Table{
		Epochs: make([]time.Time, 0, total),
		SVs:    make([]string, 0, total),
		index:  map[string]int{},
	}
	if hasStations {
		out.Stations = make([]string, 0, total)
	}

	// first pass: the union of columns
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.cols {
			if _, ok := out.index[c.Name]; !ok {
				out.index[c.Name] = len(out.cols)
				out.cols = append(out.cols, Column{Name: c.Name, Values: make([]float64, 0, total)})
			}
		}
	}

	for _, t := range tables {
		if t == nil || t.IsEmpty() {
			continue
		}
		out.Epochs = append(out.Epochs, t.Epochs...)
		out.SVs = append(out.SVs, t.SVs...)
		if hasStations {
			out.Stations = append(out.Stations, t.Stations...)
		}
		for i := range out.cols {
			src, ok := t.Column(out.cols[i].Name)
			for n := 0; n < t.Len(); n++ {
				if ok {
					out.cols[i].Values = append(out.cols[i].Values, src[n])
				} else {
					out.cols[i].Values = append(out.cols[i].Values, Missing())
				}
			}
		}
	}
	return out, nil
}

// ConcatStations concatenates one single-station table per name under a new
// outermost Station level, preserving the given name order. Empty or nil
// tables contribute no rows but keep their position in the order.
func ConcatStations(names []string, tables []*Table) (*Table, error) {
	if len(names) != len(tables) {
		return nil, fmt.Errorf("got %d station names for %d tables", len(names), len(tables))
	}
	labelled := make([]*Table, 0, len(tables))
	for i, t := range tables {
		if t == nil || t.IsEmpty() {
			continue
		}
		if t.HasStations() {
			return nil, fmt.Errorf("table for station %q already has a Station level", names[i])
		}
		idx := make([]int, t.Len())
		for n := range idx {
			idx[n] = n
		}
		lt := t.takeRows(idx)
		lt.Stations = make([]string, lt.Len())
		for n := range lt.Stations {
			lt.Stations[n] = names[i]
		}
		labelled = append(labelled, lt)
	}
	if len(labelled) == 0 {
		return &Table{Stations: []string{}, index: map[string]int{}}, nil
	}
	return Concat(labelled...)
}

// XS extracts the rows of one station from a gathered table, dropping the
// Station level from the result.
func (t *Table) XS(station string) *Table {
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if t.Stations != nil && t.Stations[i] == station {
			keep = append(keep, i)
		}
	}
	out := t.takeRows(keep)
	out.Stations = nil
	return out
}

// StationNames returns the distinct station labels in first-seen order.
func (t *Table) StationNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, s := range t.Stations {
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	return names
}

// MergeOnEpochSV inner-joins two single-station tables on (Epoch, SV).
// Columns common to both sides get the respective suffix appended; columns
// unique to one side keep their name. Row order follows the left table.
func MergeOnEpochSV(left, right *Table, leftSuffix, rightSuffix string) (*Table, error) {
	if left.HasStations() || right.HasStations() {
		return nil, fmt.Errorf("merge requires single-station tables")
	}

	type key struct {
		epoch int64
		sv    string
	}
	rightIdx := make(map[key]int, right.Len())
	for i := 0; i < right.Len(); i++ {
		k := key{right.Epochs[i].UnixNano(), right.SVs[i]}
		if _, dup := rightIdx[k]; !dup {
			rightIdx[k] = i
		}
	}

	var li, ri []int
	for i := 0; i < left.Len(); i++ {
		if j, ok := rightIdx[key{left.Epochs[i].UnixNano(), left.SVs[i]}]; ok {
			li = append(li, i)
			ri = append(ri, j)
		}
	}

	out := &Table{
		Epochs: make([]time.Time, len(li)),
		SVs:    make([]string, len(li)),
		index:  map[string]int{},
	}
	for n, i := range li {
		out.Epochs[n] = left.Epochs[i]
		out.SVs[n] = left.SVs[i]
	}

	shared := map[string]bool{}
	for _, c := range left.cols {
		if right.HasColumn(c.Name) {
			shared[c.Name] = true
		}
	}
	addSide := func(src *Table, rows []int, suffix string) error {
		for _, c := range src.cols {
			name := c.Name
			if shared[name] {
				name += suffix
			}
			vals := make([]float64, len(rows))
			for n, i := range rows {
				vals[n] = c.Values[i]
			}
			if err := out.AddColumn(name, vals); err != nil {
				return err
			}
		}
		return nil
	}
	if err := addSide(left, li, leftSuffix); err != nil {
		return nil, err
	}
	if err := addSide(right, ri, rightSuffix); err != nil {
		return nil, err
	}
	return out, nil
}
