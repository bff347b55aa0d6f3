package model

import "strings"

// GatherCase names an ordered tuple of stations whose observations are
// gathered into one table. Station order is preserved in the output.
type GatherCase struct {
	Name     string
	Stations []string
}

// VODPairing names the reference (above-canopy) and ground (below-canopy)
// stations used by the VOD formula for one case.
type VODPairing struct {
	Name      string
	Reference string
	Ground    string
}

// BandMap associates each VOD output name with its ordered list of candidate
// signal-strength columns. Candidate order is the fallback priority: the
// first candidate with a value wins for each row.
type BandMap map[string][]string

// SystemFromSV derives the constellation name from a satellite vehicle
// identifier, following the RINEX prefix convention. Unknown prefixes map to
// "UNKNOWN".
func SystemFromSV(sv string) string {
	if sv == "" {
		return "UNKNOWN"
	}
	switch strings.ToUpper(sv[:1]) {
	case "G":
		return "GPS"
	case "R":
		return "GLONASS"
	case "E":
		return "GALILEO"
	case "C":
		return "BEIDOU"
	case "J":
		return "QZSS"
	case "I":
		return "IRNSS"
	case "S":
		return "SBAS"
	default:
		return "UNKNOWN"
	}
}
