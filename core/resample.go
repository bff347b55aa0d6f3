package core

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/gnssvod/model"
)

// Resample averages a single-station table into fixed-width epoch buckets per
// SV. Each output row's epoch is the left edge of its bucket; column values
// are the mean of the non-missing inputs, or missing when the bucket holds
// none.
func Resample(t *model.Table, interval time.Duration) (*model.Table, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("resampling interval must be positive, got %v", interval)
	}
	if t.HasStations() {
		return nil, fmt.Errorf("resampling applies to single-station tables")
	}

	type key struct {
		bucket int64
		sv     string
	}
	groups := map[key][]int{}
	var order []key
	for i := 0; i < t.Len(); i++ {
		k := key{t.Epochs[i].UnixNano() / int64(interval) * int64(interval), t.SVs[i]}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	epochs := make([]time.Time, len(order))
	svs := make([]string, len(order))
	for n, k := range order {
		epochs[n] = time.Unix(0, k.bucket).UTC()
		svs[n] = k.sv
	}
	out, err := model.NewTable(epochs, svs)
	if err != nil {
		return nil, err
	}

	for _, name := range t.ColumnNames() {
		src, _ := t.Column(name)
		vals := make([]float64, len(order))
		for n, k := range order {
			var present []float64
			for _, i := range groups[k] {
				if !model.IsMissing(src[i]) {
					present = append(present, src[i])
				}
			}
			if len(present) == 0 {
				vals[n] = model.Missing()
			} else {
				vals[n] = stat.Mean(present, nil)
			}
		}
		if err := out.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return out.SortByEpochSV(), nil
}
