package tests

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/gnssvod/config"
	"github.com/signalsfoundry/gnssvod/core"
	"github.com/signalsfoundry/gnssvod/hemi"
	"github.com/signalsfoundry/gnssvod/model"
	"github.com/signalsfoundry/gnssvod/obsio"
)

// pipelineEnv holds the on-disk fixture set of one end-to-end run.
type pipelineEnv struct {
	dataDir string
	outDir  string
	cfg     *config.Config
}

func newPipelineEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	env := &pipelineEnv{
		dataDir: t.TempDir(),
		outDir:  t.TempDir(),
	}

	// two days of hourly observations for a tower and a ground receiver;
	// the ground signal is 3 dB weaker so the expected VOD is positive
	start := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 2; day++ {
		dayStart := start.AddDate(0, 0, day)
		var epochs []time.Time
		var svs []string
		var refS1, grnS1, az, el []float64
		for h := 0; h < 24; h++ {
			epochs = append(epochs, dayStart.Add(time.Duration(h)*time.Hour))
			svs = append(svs, "G01")
			refS1 = append(refS1, 45)
			grnS1 = append(grnS1, 42)
			az = append(az, float64(h*15))
			el = append(el, 20+float64(h*2))
		}
		env.writeStation(t, fmt.Sprintf("twr_2023080%d.csv", day+1), epochs, svs,
			map[string][]float64{"S1": refS1, "Azimuth": az, "Elevation": el})
		env.writeStation(t, fmt.Sprintf("grn_2023080%d.csv", day+1), epochs, svs,
			map[string][]float64{"S1": grnS1, "Azimuth": az, "Elevation": el})
	}

	env.cfg = &config.Config{
		Stations: map[string]string{
			"twr": filepath.Join(env.dataDir, "twr_*.csv"),
			"grn": filepath.Join(env.dataDir, "grn_*.csv"),
		},
		Cases:    map[string][]string{"site": {"twr", "grn"}},
		Pairings: map[string][]string{"site": {"twr", "grn"}},
		Bands:    map[string][]string{"VOD1": {"S1", "S1X"}},
		Intervals: config.IntervalsConfig{
			Start: "2023-08-01T00:00:00Z",
			Freq:  "24h",
			Count: 3,
		},
		Grid:   config.GridConfig{AngularResolution: 10, Cutoff: 10},
		Output: config.OutputConfig{Dir: env.outDir},
	}
	return env
}

func (env *pipelineEnv) writeStation(t *testing.T, name string, epochs []time.Time, svs []string, cols map[string][]float64) {
	t.Helper()
	tbl, err := model.NewTable(epochs, svs)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for _, col := range []string{"S1", "Azimuth", "Elevation"} {
		if err := tbl.AddColumn(col, cols[col]); err != nil {
			t.Fatalf("AddColumn(%s): %v", col, err)
		}
	}
	if err := obsio.WriteTable(filepath.Join(env.dataDir, name), tbl); err != nil {
		t.Fatalf("WriteTable(%s): %v", name, err)
	}
}

func TestEndToEndGatherVODAndGrid(t *testing.T) {
	env := newPipelineEnv(t)
	ctx := context.Background()

	intervals, err := env.cfg.ProcessingIntervals()
	if err != nil {
		t.Fatalf("ProcessingIntervals: %v", err)
	}
	pipeline := &core.Pipeline{
		Reader:         obsio.Reader{},
		Exporter:       obsio.DirExporter{Dir: env.cfg.Output.Dir},
		CollectResults: true,
	}
	gathered, err := pipeline.Run(ctx, env.cfg.Stations, env.cfg.GatherCases(), intervals)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// two daily artifacts from the populated days, none for the empty third
	entries, err := os.ReadDir(env.outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d gathered artifacts, want 2", len(entries))
	}

	site := gathered["site"]
	if site == nil {
		t.Fatal("no collected result for case site")
	}
	if site.Len() != 96 { // 48 rows per station over two days
		t.Errorf("gathered %d rows, want 96", site.Len())
	}

	pairings, err := env.cfg.VODPairings()
	if err != nil {
		t.Fatalf("VODPairings: %v", err)
	}
	vod, err := core.CalcVOD(site, pairings[0], env.cfg.Bands)
	if err != nil {
		t.Fatalf("CalcVOD: %v", err)
	}
	if vod.Len() != 48 {
		t.Errorf("VOD rows = %d, want 48 paired epochs", vod.Len())
	}

	// a constant 3 dB ground deficit gives VOD = ln(10^0.3) * sin(elevation)
	vals, _ := vod.Column("VOD1")
	els, _ := vod.Column("Elevation")
	for i, v := range vals {
		want := math.Log(math.Pow(10, 0.3)) * math.Cos((90-els[i])*math.Pi/180)
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("VOD[%d] = %v, want %v at elevation %v", i, v, want, els[i])
		}
	}

	grid, err := hemi.Build(env.cfg.Grid.AngularResolution, env.cfg.Grid.Cutoff)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	labelled, err := hemi.AddCellID(grid, vod, false)
	if err != nil {
		t.Fatalf("AddCellID: %v", err)
	}
	ids, _ := labelled.Column("CellID")
	for i, id := range ids {
		if model.IsMissing(id) {
			continue
		}
		if id < 0 || int(id) >= grid.NumCells() {
			t.Fatalf("row %d has out-of-range cell ID %v", i, id)
		}
	}

	stats, err := hemi.Aggregate(grid, vod)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(stats) == 0 {
		t.Fatal("no populated grid cells")
	}
	total := 0
	for _, cs := range stats {
		total += cs.Count
	}
	if total != 48 {
		t.Errorf("grid cells account for %d rows, want all 48", total)
	}

	// the final artifact round-trips through the exporter
	outPath := filepath.Join(env.outDir, "site_vod.csv")
	if err := obsio.WriteTable(outPath, labelled); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	back, err := obsio.ReadTable(outPath)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if back.Len() != labelled.Len() {
		t.Errorf("round trip lost rows: %d vs %d", back.Len(), labelled.Len())
	}
}
