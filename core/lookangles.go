package core

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

// LookAngleProvider yields the azimuth and elevation (degrees) of a satellite
// as seen from the receiving antenna at a given epoch. Implementations live
// outside the engine; see the orbit package for an SGP4-backed one.
type LookAngleProvider interface {
	LookAngles(epoch time.Time, sv string) (azimuth, elevation float64, ok bool)
}

// AddLookAngles joins Azimuth and Elevation columns onto a single-station
// observation table using the given provider. Epochs or satellites the
// provider cannot resolve get missing coordinates rather than an error.
func AddLookAngles(t *model.Table, p LookAngleProvider) error {
	if t.HasColumn("Azimuth") || t.HasColumn("Elevation") {
		return fmt.Errorf("table already has look-angle columns")
	}
	az := make([]float64, t.Len())
	el := make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		a, e, ok := p.LookAngles(t.Epochs[i], t.SVs[i])
		if !ok {
			a, e = model.Missing(), model.Missing()
		}
		az[i] = a
		el[i] = e
	}
	if err := t.AddColumn("Azimuth", az); err != nil {
		return err
	}
	return t.AddColumn("Elevation", el)
}
