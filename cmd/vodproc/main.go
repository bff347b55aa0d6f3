// Command vodproc runs the GNSS vegetation optical depth batch pipeline:
// it gathers per-station observation files into interval-scoped tables,
// computes per-band VOD from station pairings, and labels the results with
// hemisphere grid cells.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/gnssvod/config"
	"github.com/signalsfoundry/gnssvod/core"
	"github.com/signalsfoundry/gnssvod/hemi"
	"github.com/signalsfoundry/gnssvod/internal/logging"
	"github.com/signalsfoundry/gnssvod/internal/observability"
	"github.com/signalsfoundry/gnssvod/obsio"
)

func main() {
	configPath := flag.String("config", "vodproc.yaml", "path to the pipeline YAML configuration")
	gatherOnly := flag.Bool("gather-only", false, "stop after gathering; skip VOD and grid stages")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewFromEnv().Error(context.Background(), "failed to load configuration",
			logging.String("path", *configPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	ctx, log := logging.WithRunLogger(context.Background(), log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewPipelineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.Metrics.Addr, collector, log)

	if err := run(ctx, cfg, collector, log, *gatherOnly); err != nil {
		log.Error(ctx, "pipeline failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func run(ctx context.Context, cfg *config.Config, collector *observability.PipelineCollector,
	log logging.Logger, gatherOnly bool) error {

	intervals, err := cfg.ProcessingIntervals()
	if err != nil {
		return err
	}

	pipeline := &core.Pipeline{
		Reader:         obsio.Reader{},
		Exporter:       obsio.DirExporter{Dir: cfg.Output.Dir},
		Log:            log,
		Metrics:        collector,
		KeepVars:       cfg.KeepVars,
		CollectResults: !gatherOnly,
	}

	start := time.Now()
	gathered, err := pipeline.Run(ctx, cfg.Stations, cfg.GatherCases(), intervals)
	if err != nil {
		return err
	}
	log.Info(ctx, "gathering finished",
		logging.Int("cases", len(gathered)),
		logging.Duration("elapsed", time.Since(start)),
	)
	if gatherOnly {
		return nil
	}

	pairings, err := cfg.VODPairings()
	if err != nil {
		return err
	}
	if len(pairings) == 0 {
		return nil
	}

	var grid *hemi.Grid
	if cfg.Grid.AngularResolution > 0 || cfg.Grid.Cutoff > 0 {
		grid, err = hemi.Build(cfg.Grid.AngularResolution, cfg.Grid.Cutoff)
		if err != nil {
			return err
		}
		collector.SetGridCells(grid.NumCells())
		log.Info(ctx, "hemisphere grid built",
			logging.Float64("angular_resolution", cfg.Grid.AngularResolution),
			logging.Float64("cutoff", cfg.Grid.Cutoff),
			logging.Int("cells", grid.NumCells()),
		)
	}

	for _, pairing := range pairings {
		gatheredTable, ok := gathered[pairing.Name]
		if !ok {
			log.Info(ctx, "no gathered data for pairing, skipping", logging.String("pairing", pairing.Name))
			continue
		}

		start := time.Now()
		vod, err := core.CalcVOD(gatheredTable, pairing, cfg.Bands)
		collector.ObserveStage("vod", time.Since(start))
		if err != nil {
			if errors.Is(err, core.ErrNoData) {
				log.Info(ctx, "no paired data for pairing, skipping", logging.String("pairing", pairing.Name))
				continue
			}
			return err
		}
		collector.AddVODRows(pairing.Name, vod.Len())

		if grid != nil {
			vod, err = hemi.AddCellID(grid, vod, false)
			if err != nil {
				return err
			}
		}
		if err := obsio.WriteTable(outputPath(cfg, pairing.Name+"_vod"), vod); err != nil {
			return err
		}
		log.Info(ctx, "VOD table written",
			logging.String("pairing", pairing.Name),
			logging.Int("rows", vod.Len()),
		)
	}
	return nil
}

func outputPath(cfg *config.Config, name string) string {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+".csv")
}

func serveMetrics(addr string, collector *observability.PipelineCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
