package core

import (
	"path"

	"github.com/signalsfoundry/gnssvod/model"
)

// MatchColumns returns the table columns matched by the given exact names or
// glob-style patterns ("S?", "S??"), in column order. Patterns that match
// nothing are silently ignored; the result is the intersection with what the
// table actually has.
func MatchColumns(t *model.Table, patterns []string) []string {
	var matched []string
	for _, name := range t.ColumnNames() {
		for _, p := range patterns {
			ok, err := path.Match(p, name)
			if err != nil {
				// malformed pattern: fall back to exact comparison
				ok = p == name
			}
			if ok {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}

// SubsetVars prunes a table to the columns matched by patterns, plus any
// always-kept identity columns the caller needs downstream, and drops rows
// whose values are missing in every matched column.
func SubsetVars(t *model.Table, patterns []string, keepAlways ...string) *model.Table {
	matched := MatchColumns(t, patterns)
	if len(matched) == 0 {
		return t.Head(0)
	}
	out := t.DropAllMissingRows(matched...)
	return out.Select(append(matched, keepAlways...)...)
}
