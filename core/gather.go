package core

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/gnssvod/internal/logging"
	"github.com/signalsfoundry/gnssvod/internal/observability"
	"github.com/signalsfoundry/gnssvod/model"
)

// GatherOptions tunes a gather call.
type GatherOptions struct {
	// KeepVars, when non-empty, prunes the gathered table to the matched
	// columns and drops rows left with no values.
	KeepVars []string
	Log      logging.Logger
	Metrics  *observability.PipelineCollector
}

// GatherStations produces the interval-scoped multi-station table for one
// case: it selects the files of each of the case's stations whose epoch
// extent overlaps the interval, loads them, deduplicates and sorts each
// station's rows, and concatenates the stations under the Station key level
// in case order.
//
// A station contributing no rows is not an error. When every station is
// empty (or nothing survives column subsetting), GatherStations returns
// ErrNoData so the caller can skip the interval.
func GatherStations(ctx context.Context, gc model.GatherCase, iv model.Interval,
	files map[string][]string, idx *ExtentIndex, reader TableReader, opts GatherOptions) (*model.Table, error) {

	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	if len(gc.Stations) == 0 {
		return nil, fmt.Errorf("case %q has no stations", gc.Name)
	}

	tables := make([]*model.Table, len(gc.Stations))
	allEmpty := true
	for i, station := range gc.Stations {
		paths, ok := files[station]
		if !ok {
			return nil, fmt.Errorf("case %q references unknown station %q", gc.Name, station)
		}

		var overlapping []string
		for _, p := range paths {
			min, max, err := idx.Extent(p)
			if err != nil {
				return nil, err
			}
			if iv.Overlaps(min, max) {
				overlapping = append(overlapping, p)
			}
		}
		log.Info(ctx, "selected files for station",
			logging.String("station", station),
			logging.Int("files", len(overlapping)),
		)
		if len(overlapping) == 0 {
			tables[i] = nil
			continue
		}

		parts := make([]*model.Table, 0, len(overlapping))
		for _, p := range overlapping {
			t, err := reader.ReadTable(p)
			if err != nil {
				return nil, fmt.Errorf("reading %q: %w", p, err)
			}
			opts.Metrics.IncFilesRead(station)
			parts = append(parts, t.DropAllMissingRows())
		}
		st, err := model.Concat(parts...)
		if err != nil {
			return nil, err
		}
		st = st.FilterInterval(iv).DedupEpochSV().SortByEpochSV()
		if st.IsEmpty() {
			log.Info(ctx, "no data for station in interval", logging.String("station", station))
			tables[i] = nil
			continue
		}
		log.Debug(ctx, "station rows by constellation",
			logging.String("station", station),
			logging.Any("systems", systemCounts(st)),
		)
		tables[i] = st
		allEmpty = false
	}

	if allEmpty {
		return nil, ErrNoData
	}

	gathered, err := model.ConcatStations(gc.Stations, tables)
	if err != nil {
		return nil, err
	}

	if len(opts.KeepVars) > 0 {
		gathered = SubsetVars(gathered, opts.KeepVars)
		if gathered.IsEmpty() {
			log.Info(ctx, "no observations left after column subsetting", logging.String("case", gc.Name))
			return nil, ErrNoData
		}
	}
	return gathered, nil
}

// systemCounts summarizes a station table's rows per constellation.
func systemCounts(t *model.Table) map[string]int {
	counts := map[string]int{}
	for _, sv := range t.SVs {
		counts[model.SystemFromSV(sv)]++
	}
	return counts
}
