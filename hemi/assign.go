package hemi

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/gnssvod/model"
)

// Assign maps an (azimuth, elevation) pair in degrees to the ID of the cell
// containing it. The azimuth is normalized into [0, 360). Assigning fails
// (ok = false) for missing coordinates or elevations outside the grid's
// coverage; it never panics or errors on data.
func (g *Grid) Assign(azimuth, elevation float64) (int, bool) {
	if math.IsNaN(azimuth) || math.IsNaN(elevation) {
		return 0, false
	}
	if elevation > 90 || elevation < g.rings[len(g.rings)-1].elMin {
		return 0, false
	}
	az := math.Mod(azimuth, 360)
	if az < 0 {
		az += 360
	}

	// highest-elevation-first: a boundary elevation belongs to the cell above
	for _, r := range g.rings {
		if elevation < r.elMin {
			continue
		}
		idx := int(az / r.azSpan)
		if idx >= r.count {
			idx = r.count - 1
		}
		return r.firstID + idx, true
	}
	return 0, false
}

// AddCellID returns a copy of the table with a CellID column mapping each
// row's Azimuth/Elevation to its grid cell. Rows that cannot be assigned
// carry a missing CellID, or are dropped when dropUnassigned is set.
func AddCellID(g *Grid, t *model.Table, dropUnassigned bool) (*model.Table, error) {
	azCol, okAz := t.Column("Azimuth")
	elCol, okEl := t.Column("Elevation")
	if !okAz || !okEl {
		return nil, fmt.Errorf("table is missing Azimuth or Elevation columns")
	}

	ids := make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		if id, ok := g.Assign(azCol[i], elCol[i]); ok {
			ids[i] = float64(id)
		} else {
			ids[i] = model.Missing()
		}
	}

	out := t.Select(t.ColumnNames()...)
	if err := out.AddColumn("CellID", ids); err != nil {
		return nil, err
	}
	if dropUnassigned {
		out = out.DropAllMissingRows("CellID")
	}
	return out, nil
}
