// Package hemi partitions the observable sky hemisphere into an
// equal-solid-angle grid of cells and assigns observations to them.
//
// The construction follows the general disk/hemisphere partition rule of
// Beckers & Beckers (2012): a polar cap sized by the angular resolution sets
// the unit cell area, and each concentric ring below it is split into the
// number of azimuthal cells that best matches that area.
package hemi

import (
	"fmt"
	"math"
)

// Cell is one unit of the hemisphere partition. All angles are degrees.
// Azimuth ranges are right-open [AzMin, AzMax); elevation ranges are
// half-open downwards, with boundary elevations belonging to the higher
// cell.
type Cell struct {
	ID       int
	AzCenter float64
	ElCenter float64
	AzMin    float64
	AzMax    float64
	ElMin    float64
	ElMax    float64
}

// ring is one elevation band of the grid. The zenith cap is the ring with a
// single cell spanning all azimuths.
type ring struct {
	elMin, elMax float64
	azSpan       float64
	firstID      int
	count        int
}

// Grid is an immutable equal-solid-angle partition of the sky hemisphere
// from its cutoff elevation up to the zenith. Build it once and share it
// freely: assignment never mutates it.
type Grid struct {
	AngularResolution float64 // degrees, diameter of the zenith cap
	Cutoff            float64 // degrees, lowest covered elevation

	cells []Cell
	rings []ring // ordered by decreasing elevation, cap first
}

// solidAngle returns the solid angle of a polar cap of the given angular
// radius in degrees, in steradians.
func solidAngle(radiusDeg float64) float64 {
	return 2 * math.Pi * (1 - math.Cos(radiusDeg*math.Pi/180))
}

// Build constructs the hemisphere grid for the given angular resolution
// (degrees, diameter of the central zenith cell) and cutoff (degrees, lowest
// elevation to cover). Invalid parameters are rejected outright rather than
// producing a degenerate grid.
//
// Ring boundaries step outward from the cap edge in angular-resolution
// increments. The final boundary is pinned to the cutoff so the cells
// partition [cutoff, 90] exactly, with no gap below the lowest regular ring.
func Build(angularResolution, cutoff float64) (*Grid, error) {
	if angularResolution <= 0 {
		return nil, fmt.Errorf("angular resolution must be positive, got %v", angularResolution)
	}
	if cutoff >= 90 {
		return nil, fmt.Errorf("cutoff must be below 90 degrees, got %v", cutoff)
	}
	if cutoff < 0 {
		return nil, fmt.Errorf("cutoff must not be negative, got %v", cutoff)
	}

	capHalf := angularResolution / 2
	unitArea := solidAngle(capHalf)

	g := &Grid{AngularResolution: angularResolution, Cutoff: cutoff}
	g.cells = append(g.cells, Cell{
		ID:       0,
		AzCenter: 180,
		ElCenter: 90,
		AzMin:    0,
		AzMax:    360,
		ElMin:    90 - capHalf,
		ElMax:    90,
	})
	g.rings = append(g.rings, ring{elMin: 90 - capHalf, elMax: 90, azSpan: 360, firstID: 0, count: 1})

	// Polar radii of the ring boundaries, from the cap edge down to the
	// cutoff. The last radius is pinned to the cutoff exactly.
	maxRadius := 90 - cutoff
	var radii []float64
	for r := capHalf; r < maxRadius; r += angularResolution {
		radii = append(radii, r)
	}
	if len(radii) > 0 && radii[len(radii)-1] < maxRadius {
		radii = append(radii, maxRadius)
	}

	nextID := 1
	for i := 0; i+1 < len(radii); i++ {
		inner, outer := radii[i], radii[i+1]
		area := solidAngle(outer) - solidAngle(inner)
		count := int(math.Round(area / unitArea))
		if count < 1 {
			count = 1
		}
		span := 360.0 / float64(count)
		elMin, elMax := 90-outer, 90-inner
		for j := 0; j < count; j++ {
			azMin := float64(j) * span
			g.cells = append(g.cells, Cell{
				ID:       nextID + j,
				AzCenter: azMin + span/2,
				ElCenter: (elMin + elMax) / 2,
				AzMin:    azMin,
				AzMax:    azMin + span,
				ElMin:    elMin,
				ElMax:    elMax,
			})
		}
		g.rings = append(g.rings, ring{elMin: elMin, elMax: elMax, azSpan: span, firstID: nextID, count: count})
		nextID += count
	}
	return g, nil
}

// NumCells returns the total number of cells.
func (g *Grid) NumCells() int { return len(g.cells) }

// Cells returns the grid's cells ordered by ID, cap first then decreasing
// elevation. The returned slice is shared; callers must not modify it.
func (g *Grid) Cells() []Cell { return g.cells }

// Cell returns the cell with the given ID.
func (g *Grid) Cell(id int) (Cell, bool) {
	if id < 0 || id >= len(g.cells) {
		return Cell{}, false
	}
	return g.cells[id], true
}

// SolidAngle returns the solid angle of one cell in steradians.
func (c Cell) SolidAngle() float64 {
	band := solidAngle(90-c.ElMin) - solidAngle(90-c.ElMax)
	return band * (c.AzMax - c.AzMin) / 360
}
