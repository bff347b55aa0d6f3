// Package config declares the YAML configuration surface of the vodproc
// batch pipeline.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/gnssvod/model"
)

// Config is the complete pipeline configuration.
type Config struct {
	// Stations maps station names to UNIX-style glob patterns locating their
	// observation files.
	Stations map[string]string `yaml:"stations"`
	// Cases maps case names to the ordered station tuple gathered together.
	Cases map[string][]string `yaml:"cases"`
	// Pairings maps case names to the [reference, ground] station pair used
	// by the VOD formula.
	Pairings map[string][]string `yaml:"pairings"`
	// Bands maps VOD output names to ordered candidate signal columns.
	Bands map[string][]string `yaml:"bands"`
	// KeepVars prunes gathered tables to the matched columns.
	KeepVars []string `yaml:"keepvars"`

	Intervals IntervalsConfig `yaml:"intervals"`
	Grid      GridConfig      `yaml:"grid"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// IntervalsConfig declares the processing intervals: either an explicit list
// or a regular range. Leaving both empty derives one interval spanning all
// known data.
type IntervalsConfig struct {
	Start string `yaml:"start"` // RFC 3339
	Freq  string `yaml:"freq"`  // Go duration, e.g. 24h
	Count int    `yaml:"count"`

	Explicit []ExplicitInterval `yaml:"explicit"`
}

// ExplicitInterval is one half-open [left, right) interval in RFC 3339.
type ExplicitInterval struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// GridConfig declares the hemisphere grid parameters in degrees.
type GridConfig struct {
	AngularResolution float64 `yaml:"angular_resolution"`
	Cutoff            float64 `yaml:"cutoff"`
}

// OutputConfig controls where finished artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig mirrors the logger's level/format knobs.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the listener
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// GatherCases converts the case map into an ordered slice, sorted by name
// for deterministic processing order.
func (c *Config) GatherCases() []model.GatherCase {
	names := make([]string, 0, len(c.Cases))
	for name := range c.Cases {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]model.GatherCase, 0, len(names))
	for _, name := range names {
		out = append(out, model.GatherCase{Name: name, Stations: c.Cases[name]})
	}
	return out
}

// VODPairings converts the pairing map into an ordered slice.
func (c *Config) VODPairings() ([]model.VODPairing, error) {
	names := make([]string, 0, len(c.Pairings))
	for name := range c.Pairings {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]model.VODPairing, 0, len(names))
	for _, name := range names {
		pair := c.Pairings[name]
		if len(pair) != 2 {
			return nil, fmt.Errorf("pairing %q must list exactly [reference, ground], got %d entries", name, len(pair))
		}
		out = append(out, model.VODPairing{Name: name, Reference: pair[0], Ground: pair[1]})
	}
	return out, nil
}

// ProcessingIntervals builds the interval sequence from either the explicit
// list or the regular range declaration.
func (c *Config) ProcessingIntervals() (model.Intervals, error) {
	ic := c.Intervals
	if len(ic.Explicit) > 0 {
		if ic.Start != "" || ic.Count != 0 {
			return nil, fmt.Errorf("intervals: explicit list and start/freq/count are mutually exclusive")
		}
		out := make(model.Intervals, 0, len(ic.Explicit))
		for i, e := range ic.Explicit {
			left, err := time.Parse(time.RFC3339, e.Left)
			if err != nil {
				return nil, fmt.Errorf("intervals.explicit[%d].left: %w", i, err)
			}
			right, err := time.Parse(time.RFC3339, e.Right)
			if err != nil {
				return nil, fmt.Errorf("intervals.explicit[%d].right: %w", i, err)
			}
			out = append(out, model.Interval{Left: left, Right: right})
		}
		if err := out.Validate(); err != nil {
			return nil, err
		}
		return out, nil
	}

	if ic.Start == "" {
		return nil, nil // derive the default spanning interval
	}
	start, err := time.Parse(time.RFC3339, ic.Start)
	if err != nil {
		return nil, fmt.Errorf("intervals.start: %w", err)
	}
	if ic.Freq == "" || ic.Count <= 0 {
		return nil, fmt.Errorf("intervals: start requires freq and a positive count")
	}
	freq, err := time.ParseDuration(ic.Freq)
	if err != nil {
		return nil, fmt.Errorf("intervals.freq: %w", err)
	}
	if freq <= 0 {
		return nil, fmt.Errorf("intervals.freq must be positive, got %v", freq)
	}
	return model.IntervalRange(start, freq, ic.Count), nil
}
