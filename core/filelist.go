package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/signalsfoundry/gnssvod/internal/logging"
	"github.com/signalsfoundry/gnssvod/model"
)

// ErrNoData signals that a gather or calculation produced nothing for the
// requested case and interval. It is an expected outcome, not a failure: the
// batch driver skips the artifact and moves on.
var ErrNoData = errors.New("no data")

// TableReader loads observation tables and their epoch extents from files.
// Implementations wrap whatever on-disk format the deployment uses; the
// engine only depends on this contract.
type TableReader interface {
	// ReadTable materializes the full observation table of one file.
	ReadTable(path string) (*model.Table, error)
	// Extent returns the minimum and maximum epoch of one file without
	// materializing the full table.
	Extent(path string) (min, max time.Time, err error)
}

// ResolveFileSets expands each station's glob pattern into the list of
// matching file paths. A pattern matching nothing is reported through the
// logger and yields an empty list; it is not an error. An empty pattern map
// is a configuration error.
func ResolveFileSets(ctx context.Context, patterns map[string]string, log logging.Logger) (map[string][]string, error) {
	if log == nil {
		log = logging.Noop()
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no station file patterns configured")
	}
	out := make(map[string][]string, len(patterns))
	for station, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q for station %q: %w", pattern, station, err)
		}
		if len(matches) == 0 {
			log.Warn(ctx, "no files match pattern",
				logging.String("station", station),
				logging.String("pattern", pattern),
			)
		}
		sort.Strings(matches)
		out[station] = matches
	}
	return out, nil
}

// extent is a closed [Min, Max] epoch range of one file.
type extent struct {
	Min, Max time.Time
}

// ExtentIndex caches per-file epoch extents so overlap checks against many
// intervals read each file's header region at most once.
type ExtentIndex struct {
	reader  TableReader
	extents map[string]extent
}

// NewExtentIndex builds an empty index over the given reader.
func NewExtentIndex(reader TableReader) *ExtentIndex {
	return &ExtentIndex{reader: reader, extents: map[string]extent{}}
}

// Extent returns the cached (min, max) epoch extent of path, consulting the
// reader on first use.
func (x *ExtentIndex) Extent(path string) (time.Time, time.Time, error) {
	if e, ok := x.extents[path]; ok {
		return e.Min, e.Max, nil
	}
	min, max, err := x.reader.Extent(path)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("epoch extent of %q: %w", path, err)
	}
	x.extents[path] = extent{Min: min, Max: max}
	return min, max, nil
}

// Span returns the overall [min, max] extent across all listed files, used to
// derive the default processing interval when the caller supplies none.
func (x *ExtentIndex) Span(files map[string][]string) (time.Time, time.Time, error) {
	var min, max time.Time
	seen := false
	for _, paths := range files {
		for _, p := range paths {
			lo, hi, err := x.Extent(p)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			if !seen || lo.Before(min) {
				min = lo
			}
			if !seen || hi.After(max) {
				max = hi
			}
			seen = true
		}
	}
	if !seen {
		return time.Time{}, time.Time{}, ErrNoData
	}
	return min, max, nil
}

// DeriveInterval builds the single interval spanning all known data. The
// right bound is nudged past the last epoch so the half-open interval still
// includes it.
func DeriveInterval(x *ExtentIndex, files map[string][]string) (model.Interval, error) {
	min, max, err := x.Span(files)
	if err != nil {
		return model.Interval{}, err
	}
	return model.Interval{Left: min, Right: max.Add(time.Nanosecond)}, nil
}
