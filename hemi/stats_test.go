package hemi

import (
	"math"
	"testing"

	"github.com/signalsfoundry/gnssvod/model"
)

func TestAggregateSummarizesPerCell(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// three rows in the cap, one in a lower cell, one unassignable
	tbl := angleTable(t,
		[]float64{0, 120, 240, 90, 90},
		[]float64{90, 88, 89, 45, 5},
		[]float64{0.2, 0.4, model.Missing(), 0.6, 9.9},
	)

	stats, err := Aggregate(g, tbl)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d populated cells, want 2", len(stats))
	}
	if stats[0].Cell.ID >= stats[1].Cell.ID {
		t.Errorf("stats not ordered by cell ID: %d, %d", stats[0].Cell.ID, stats[1].Cell.ID)
	}

	capStats := stats[0]
	if capStats.Cell.ID != 0 {
		t.Fatalf("first populated cell = %d, want the cap", capStats.Cell.ID)
	}
	if capStats.Count != 3 {
		t.Errorf("cap Count = %d, want 3", capStats.Count)
	}
	if math.Abs(capStats.Mean["VOD1"]-0.3) > 1e-12 {
		t.Errorf("cap mean = %v, want 0.3 over the non-missing values", capStats.Mean["VOD1"])
	}
	wantStd := math.Sqrt(0.02) // sample std of {0.2, 0.4}
	if math.Abs(capStats.Std["VOD1"]-wantStd) > 1e-12 {
		t.Errorf("cap std = %v, want %v", capStats.Std["VOD1"], wantStd)
	}

	single := stats[1]
	if single.Count != 1 {
		t.Errorf("Count = %d, want 1", single.Count)
	}
	if single.Mean["VOD1"] != 0.6 {
		t.Errorf("mean = %v, want the single value 0.6", single.Mean["VOD1"])
	}
	if !model.IsMissing(single.Std["VOD1"]) {
		t.Errorf("std of a single row = %v, want missing", single.Std["VOD1"])
	}
}

func TestAggregateDefaultsToValueColumns(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tbl := angleTable(t, []float64{0}, []float64{90}, []float64{0.5})

	stats, err := Aggregate(g, tbl)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d cells, want 1", len(stats))
	}
	if _, ok := stats[0].Mean["Azimuth"]; ok {
		t.Error("Azimuth should not be summarized by default")
	}
	if _, ok := stats[0].Mean["VOD1"]; !ok {
		t.Error("VOD1 should be summarized by default")
	}
}

func TestAggregateRequiresLookAngles(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tbl := angleTable(t, []float64{0}, []float64{90}, nil)
	tbl.RenameColumn("Azimuth", "Az")
	if _, err := Aggregate(g, tbl); err == nil {
		t.Error("expected error for a table without look angles")
	}
}
