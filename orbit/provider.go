// Package orbit provides a reference implementation of the engine's
// look-angle collaborator: satellite azimuth/elevation as seen from a fixed
// receiver antenna, computed from TLE sets via SGP4 propagation.
package orbit

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TLE is a two-line element set for one satellite vehicle.
type TLE struct {
	Line1 string
	Line2 string
}

// SGP4Provider computes look angles from a fixed ground position to a set of
// satellites identified by their SV codes.
type SGP4Provider struct {
	sats  map[string]satellite.Satellite
	obs   satellite.LatLong
	altKm float64
}

// NewSGP4Provider constructs a provider for a receiver at the given geodetic
// position (degrees, kilometres) and the given per-SV TLE sets.
func NewSGP4Provider(latDeg, lonDeg, altKm float64, tles map[string]TLE) *SGP4Provider {
	sats := make(map[string]satellite.Satellite, len(tles))
	for sv, tle := range tles {
		sats[sv] = satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)
	}
	return &SGP4Provider{
		sats: sats,
		obs: satellite.LatLong{
			Latitude:  latDeg * math.Pi / 180,
			Longitude: lonDeg * math.Pi / 180,
		},
		altKm: altKm,
	}
}

// LookAngles propagates the SV to the given epoch and returns its azimuth
// and elevation in degrees as seen from the receiver. ok is false for SVs
// without a TLE.
func (p *SGP4Provider) LookAngles(epoch time.Time, sv string) (float64, float64, bool) {
	sat, ok := p.sats[sv]
	if !ok {
		return 0, 0, false
	}
	t := epoch.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jday := satellite.JDay(year, int(month), day, hour, min, sec)
	angles := satellite.ECIToLookAngles(pos, p.obs, p.altKm, jday)

	az := math.Mod(angles.Az*180/math.Pi, 360)
	if az < 0 {
		az += 360
	}
	return az, angles.El * 180 / math.Pi, true
}
