package hemi

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/gnssvod/model"
)

// CellStats carries the per-cell summary of one or more value columns,
// typically VOD bands accumulated over a processing period.
type CellStats struct {
	Cell  Cell
	Count int                // rows assigned to the cell
	Mean  map[string]float64 // per column, over non-missing values
	Std   map[string]float64 // sample standard deviation; missing when n < 2
}

// Aggregate groups a table's rows by grid cell and summarizes the named
// value columns. With no names, every column except Azimuth and Elevation is
// summarized. Cells with no assigned rows are omitted; the result is ordered
// by cell ID.
func Aggregate(g *Grid, t *model.Table, cols ...string) ([]CellStats, error) {
	azCol, okAz := t.Column("Azimuth")
	elCol, okEl := t.Column("Elevation")
	if !okAz || !okEl {
		return nil, fmt.Errorf("table is missing Azimuth or Elevation columns")
	}
	if len(cols) == 0 {
		for _, name := range t.ColumnNames() {
			if name != "Azimuth" && name != "Elevation" {
				cols = append(cols, name)
			}
		}
	}

	byCell := map[int][]int{}
	for i := 0; i < t.Len(); i++ {
		if id, ok := g.Assign(azCol[i], elCol[i]); ok {
			byCell[id] = append(byCell[id], i)
		}
	}

	var out []CellStats
	for _, cell := range g.cells {
		rows, ok := byCell[cell.ID]
		if !ok {
			continue
		}
		cs := CellStats{
			Cell:  cell,
			Count: len(rows),
			Mean:  make(map[string]float64, len(cols)),
			Std:   make(map[string]float64, len(cols)),
		}
		for _, name := range cols {
			src, ok := t.Column(name)
			if !ok {
				continue
			}
			var present []float64
			for _, i := range rows {
				if !model.IsMissing(src[i]) {
					present = append(present, src[i])
				}
			}
			switch {
			case len(present) == 0:
				cs.Mean[name] = model.Missing()
				cs.Std[name] = model.Missing()
			case len(present) == 1:
				cs.Mean[name] = present[0]
				cs.Std[name] = model.Missing()
			default:
				cs.Mean[name] = stat.Mean(present, nil)
				cs.Std[name] = stat.StdDev(present, nil)
			}
		}
		out = append(out, cs)
	}
	return out, nil
}
