package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/signalsfoundry/gnssvod/model"
)

const (
	refSuffix = "_ref"
	grnSuffix = "_grn"
)

// VODFromSignals computes the vegetation optical depth for one observation
// from the reference (above-canopy) and ground (below-canopy) signal
// strengths in dB-Hz and the ground elevation angle in degrees. A missing
// input or a non-positive power ratio yields a missing result.
func VODFromSignals(ref, ground, elevation float64) float64 {
	return -math.Log(math.Pow(10, (ground-ref)/10)) * math.Cos((90-elevation)*math.Pi/180)
}

// CalcVOD computes per-band VOD from a gathered two-station table.
//
// The table is split into the pairing's reference and ground stations and
// inner-joined on (Epoch, SV). For every band candidate column present in
// the input, a per-row VOD value is computed; the band's output column is
// the first available candidate value per row, in candidate order. The
// result carries one column per band plus the reference station's Azimuth
// and Elevation under their canonical names.
func CalcVOD(gathered *model.Table, pairing model.VODPairing, bands model.BandMap) (*model.Table, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("pairing %q has no bands configured", pairing.Name)
	}

	ref := gathered.XS(pairing.Reference)
	grn := gathered.XS(pairing.Ground)
	merged, err := model.MergeOnEpochSV(ref, grn, refSuffix, grnSuffix)
	if err != nil {
		return nil, fmt.Errorf("pairing %q: %w", pairing.Name, err)
	}
	if merged.IsEmpty() {
		return nil, ErrNoData
	}

	elevation, _ := merged.Column("Elevation" + grnSuffix)

	out, err := model.NewTable(merged.Epochs, merged.SVs)
	if err != nil {
		return nil, err
	}

	// band names sorted for a deterministic column order
	names := make([]string, 0, len(bands))
	for name := range bands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		combined := make([]float64, merged.Len())
		for i := range combined {
			combined[i] = model.Missing()
		}
		for _, candidate := range bands[name] {
			refSig, okRef := merged.Column(candidate + refSuffix)
			grnSig, okGrn := merged.Column(candidate + grnSuffix)
			if !okRef || !okGrn {
				// candidate absent from this receiver's column set
				continue
			}
			for i := range combined {
				if !model.IsMissing(combined[i]) {
					continue
				}
				ele := model.Missing()
				if elevation != nil {
					ele = elevation[i]
				}
				combined[i] = VODFromSignals(refSig[i], grnSig[i], ele)
			}
		}
		if err := out.AddColumn(name, combined); err != nil {
			return nil, err
		}
	}

	// Azimuth and Elevation are taken from the reference station and
	// canonicalized back to their unsuffixed names.
	for _, coord := range []string{"Azimuth", "Elevation"} {
		vals, ok := merged.Column(coord + refSuffix)
		if !ok {
			vals = make([]float64, merged.Len())
			for i := range vals {
				vals[i] = model.Missing()
			}
		}
		if err := out.AddColumn(coord, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
