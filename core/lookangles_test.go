package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

type fixedAngles map[string][2]float64

func (f fixedAngles) LookAngles(_ time.Time, sv string) (float64, float64, bool) {
	a, ok := f[sv]
	return a[0], a[1], ok
}

func TestAddLookAngles(t *testing.T) {
	tbl := obsTable(t,
		[]string{"2023-08-01T06:00:00Z", "2023-08-01T06:00:00Z"},
		[]string{"G01", "R05"},
		map[string][]float64{"S1": {45, 44}},
	)

	p := fixedAngles{"G01": {120, 35}}
	if err := AddLookAngles(tbl, p); err != nil {
		t.Fatalf("AddLookAngles: %v", err)
	}

	az, _ := tbl.Column("Azimuth")
	el, _ := tbl.Column("Elevation")
	if az[0] != 120 || el[0] != 35 {
		t.Errorf("G01 angles = (%v, %v), want (120, 35)", az[0], el[0])
	}
	if !model.IsMissing(az[1]) || !model.IsMissing(el[1]) {
		t.Errorf("unresolved satellite should have missing angles, got (%v, %v)", az[1], el[1])
	}

	if err := AddLookAngles(tbl, p); err == nil {
		t.Error("expected error when look-angle columns already exist")
	}
}
