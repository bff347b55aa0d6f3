package core

import (
	"reflect"
	"testing"

	"github.com/signalsfoundry/gnssvod/model"
)

func TestMatchColumns(t *testing.T) {
	tbl := obsTable(t,
		[]string{"2023-08-01T06:00:00Z"},
		[]string{"G01"},
		map[string][]float64{"S1": {44}, "S1X": {45}, "S2": {46}, "Elevation": {30}},
	)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"exact", []string{"S2"}, []string{"S2"}},
		{"glob", []string{"S?"}, []string{"S1", "S2"}},
		{"wider glob", []string{"S*"}, []string{"S1", "S1X", "S2"}},
		{"mixed", []string{"S??", "Elevation"}, []string{"Elevation", "S1X"}},
		{"no match", []string{"L1"}, nil},
		{"malformed pattern falls back to exact", []string{"S[1"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchColumns(tbl, tc.patterns)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("MatchColumns(%v) = %v, want %v", tc.patterns, got, tc.want)
			}
		})
	}
}

func TestSubsetVarsDropsRowsMissingEverywhere(t *testing.T) {
	tbl := obsTable(t,
		[]string{"2023-08-01T06:00:00Z", "2023-08-01T06:00:30Z", "2023-08-01T06:01:00Z"},
		[]string{"G01", "G01", "G01"},
		map[string][]float64{
			"S1":        {44, model.Missing(), model.Missing()},
			"S2":        {model.Missing(), 46, model.Missing()},
			"Elevation": {30, 31, 32},
		},
	)

	got := SubsetVars(tbl, []string{"S?"}, "Elevation")
	if got.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (third row has no signal in any matched column)", got.Len())
	}
	want := []string{"Elevation", "S1", "S2"}
	if !reflect.DeepEqual(got.ColumnNames(), want) {
		t.Errorf("columns = %v, want %v", got.ColumnNames(), want)
	}
}

func TestSubsetVarsNoMatchYieldsEmptyTable(t *testing.T) {
	tbl := obsTable(t,
		[]string{"2023-08-01T06:00:00Z"},
		[]string{"G01"},
		map[string][]float64{"S1": {44}},
	)
	if got := SubsetVars(tbl, []string{"L?"}); !got.IsEmpty() {
		t.Errorf("expected empty table, got %d rows", got.Len())
	}
}
