package hemi

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

func TestAssignEdgeCases(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// the zenith belongs to the cap
	if id, ok := g.Assign(123, 90); !ok || id != 0 {
		t.Errorf("Assign(zenith) = (%d, %v), want cap cell 0", id, ok)
	}

	// azimuth wraps into [0, 360)
	idA, okA := g.Assign(0, 45)
	idB, okB := g.Assign(360, 45)
	idC, okC := g.Assign(-360, 45)
	if !okA || !okB || !okC || idA != idB || idA != idC {
		t.Errorf("wrapped azimuths disagree: 0->%d, 360->%d, -360->%d", idA, idB, idC)
	}

	// negative azimuth maps to the complementary bearing
	idNeg, ok := g.Assign(-90, 45)
	idPos, _ := g.Assign(270, 45)
	if !ok || idNeg != idPos {
		t.Errorf("Assign(-90) = %d, want the same cell as Assign(270) = %d", idNeg, idPos)
	}

	// elevations outside the coverage do not assign
	if _, ok := g.Assign(10, 5); ok {
		t.Error("an elevation below the cutoff should not assign")
	}
	if _, ok := g.Assign(10, 91); ok {
		t.Error("an elevation above 90 should not assign")
	}
	if _, ok := g.Assign(math.NaN(), 45); ok {
		t.Error("a missing azimuth should not assign")
	}
	if _, ok := g.Assign(10, math.NaN()); ok {
		t.Error("a missing elevation should not assign")
	}

	// a ring boundary elevation belongs to the higher cell
	capEdge := 90 - g.AngularResolution/2
	id, ok := g.Assign(0, capEdge)
	if !ok || id != 0 {
		t.Errorf("Assign at the cap edge = (%d, %v), want the cap", id, ok)
	}

	// the cutoff itself is covered
	if _, ok := g.Assign(0, 10); !ok {
		t.Error("the cutoff elevation should assign")
	}
}

func angleTable(t *testing.T, az, el, vod []float64) *model.Table {
	t.Helper()
	epochs := make([]time.Time, len(az))
	svs := make([]string, len(az))
	base := time.Date(2023, 8, 1, 6, 0, 0, 0, time.UTC)
	for i := range az {
		epochs[i] = base.Add(time.Duration(i) * time.Second)
		svs[i] = "G01"
	}
	tbl, err := model.NewTable(epochs, svs)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for name, vals := range map[string][]float64{"Azimuth": az, "Elevation": el} {
		if err := tbl.AddColumn(name, vals); err != nil {
			t.Fatalf("AddColumn(%s): %v", name, err)
		}
	}
	if vod != nil {
		if err := tbl.AddColumn("VOD1", vod); err != nil {
			t.Fatalf("AddColumn(VOD1): %v", err)
		}
	}
	return tbl
}

func TestAddCellID(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tbl := angleTable(t,
		[]float64{180, 90, model.Missing()},
		[]float64{90, 45, 45},
		nil,
	)

	got, err := AddCellID(g, tbl, false)
	if err != nil {
		t.Fatalf("AddCellID: %v", err)
	}
	ids, ok := got.Column("CellID")
	if !ok {
		t.Fatal("CellID column missing")
	}
	if ids[0] != 0 {
		t.Errorf("zenith row CellID = %v, want 0", ids[0])
	}
	if !model.IsMissing(ids[2]) {
		t.Errorf("unassignable row CellID = %v, want missing", ids[2])
	}
	if tbl.HasColumn("CellID") {
		t.Error("AddCellID mutated its input")
	}

	dropped, err := AddCellID(g, tbl, true)
	if err != nil {
		t.Fatalf("AddCellID(drop): %v", err)
	}
	if dropped.Len() != 2 {
		t.Errorf("Len = %d after dropping unassigned rows, want 2", dropped.Len())
	}
}

func TestAddCellIDRequiresLookAngles(t *testing.T) {
	g, err := Build(10, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tbl, err := model.NewTable([]time.Time{time.Now()}, []string{"G01"})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if _, err := AddCellID(g, tbl, false); err == nil {
		t.Error("expected error for a table without look angles")
	}
}
