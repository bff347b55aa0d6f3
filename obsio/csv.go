// Package obsio implements the engine's table reader and exporter contracts
// over plain CSV files. It is the reference codec used by the CLI and the
// test fixtures; production deployments substitute their own columnar
// format behind the same interfaces.
package obsio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

const epochLayout = time.RFC3339

// ReadTable loads a CSV observation file. The first columns must be Epoch
// (RFC 3339) and SV, optionally preceded by Station for gathered tables;
// every other column is numeric with empty cells meaning missing.
func ReadTable(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", path, err)
	}
	layout, err := headerLayout(header)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	var stations []string
	if layout.hasStation {
		// keep the Station level even when the file has no rows
		stations = []string{}
	}
	var epochs []time.Time
	var svs []string
	values := make([][]float64, len(header)-layout.dataStart)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		epoch, err := time.Parse(epochLayout, rec[layout.epochCol])
		if err != nil {
			return nil, fmt.Errorf("bad epoch %q in %q: %w", rec[layout.epochCol], path, err)
		}
		if layout.hasStation {
			stations = append(stations, rec[0])
		}
		epochs = append(epochs, epoch)
		svs = append(svs, rec[layout.svCol])
		for i := range values {
			values[i] = append(values[i], parseCell(rec[layout.dataStart+i]))
		}
	}

	t, err := model.NewTable(epochs, svs)
	if err != nil {
		return nil, err
	}
	t.Stations = stations
	for i, name := range header[layout.dataStart:] {
		if err := t.AddColumn(name, values[i]); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
	}
	return t, nil
}

// Extent scans only the Epoch column of a file and returns its minimum and
// maximum timestamp, without materializing the table.
func Extent(path string) (time.Time, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("reading header of %q: %w", path, err)
	}
	layout, err := headerLayout(header)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%q: %w", path, err)
	}

	var min, max time.Time
	seen := false
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("reading %q: %w", path, err)
		}
		epoch, err := time.Parse(epochLayout, rec[layout.epochCol])
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad epoch %q in %q: %w", rec[layout.epochCol], path, err)
		}
		if !seen || epoch.Before(min) {
			min = epoch
		}
		if !seen || epoch.After(max) {
			max = epoch
		}
		seen = true
	}
	if !seen {
		return time.Time{}, time.Time{}, fmt.Errorf("%q has no rows", path)
	}
	return min, max, nil
}

// WriteTable writes a table as CSV, creating parent directories as needed.
func WriteTable(path string, t *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{}
	if t.HasStations() {
		header = append(header, "Station")
	}
	header = append(header, "Epoch", "SV")
	names := t.ColumnNames()
	header = append(header, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}
	rec := make([]string, 0, len(header))
	for i := 0; i < t.Len(); i++ {
		rec = rec[:0]
		if t.HasStations() {
			rec = append(rec, t.Stations[i])
		}
		rec = append(rec, t.Epochs[i].UTC().Format(epochLayout), t.SVs[i])
		for _, col := range cols {
			rec = append(rec, formatCell(col[i]))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type csvLayout struct {
	hasStation bool
	epochCol   int
	svCol      int
	dataStart  int
}

func headerLayout(header []string) (csvLayout, error) {
	switch {
	case len(header) >= 3 && header[0] == "Station" && header[1] == "Epoch" && header[2] == "SV":
		return csvLayout{hasStation: true, epochCol: 1, svCol: 2, dataStart: 3}, nil
	case len(header) >= 2 && header[0] == "Epoch" && header[1] == "SV":
		return csvLayout{epochCol: 0, svCol: 1, dataStart: 2}, nil
	default:
		return csvLayout{}, fmt.Errorf("unexpected header %v, want [Station,]Epoch,SV,...", header)
	}
}

func parseCell(s string) float64 {
	if s == "" {
		return model.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing()
	}
	return v
}

func formatCell(v float64) string {
	if model.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
