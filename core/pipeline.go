package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/gnssvod/internal/logging"
	"github.com/signalsfoundry/gnssvod/internal/observability"
	"github.com/signalsfoundry/gnssvod/model"
)

// Exporter hands finished tables to whatever sink the deployment uses. The
// engine names each artifact "<case>_<start>_<end>" after the interval that
// produced it.
type Exporter interface {
	Export(ctx context.Context, name string, t *model.Table) error
}

// Pipeline drives the interval-batched gathering of station observations.
// Intervals are processed one at a time to bound memory; each interval's
// output is self-contained, so a failed or interrupted run can be resumed by
// re-running with the remaining intervals.
type Pipeline struct {
	Reader   TableReader
	Exporter Exporter // optional; artifacts are only exported when set
	Log      logging.Logger
	Metrics  *observability.PipelineCollector // optional

	// KeepVars prunes gathered tables to the matched columns.
	KeepVars []string
	// CollectResults keeps per-case concatenated results in memory and
	// returns them from Run. Leave off for large batch runs.
	CollectResults bool
}

// Run gathers every configured case over every interval. An empty interval
// sequence derives one interval spanning all known data. Absence of data at
// any granularity is logged and skipped; only structural misconfiguration
// (bad patterns, unknown stations, unordered intervals) aborts the run.
func (p *Pipeline) Run(ctx context.Context, patterns map[string]string,
	cases []model.GatherCase, intervals model.Intervals) (map[string]*model.Table, error) {

	log := p.Log
	if log == nil {
		log = logging.Noop()
	}
	tracer := otel.Tracer("gnssvod/core")

	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases configured")
	}
	if err := intervals.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interval sequence: %w", err)
	}

	files, err := ResolveFileSets(ctx, patterns, log)
	if err != nil {
		return nil, err
	}
	idx := NewExtentIndex(p.Reader)

	if len(intervals) == 0 {
		iv, err := DeriveInterval(idx, files)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				log.Warn(ctx, "no data in any source file; nothing to do")
				return map[string]*model.Table{}, nil
			}
			return nil, err
		}
		intervals = model.Intervals{iv}
	}

	results := map[string]*model.Table{}
	for _, gc := range cases {
		log.Info(ctx, "processing case", logging.String("case", gc.Name))
		var parts []*model.Table

		for _, iv := range intervals {
			ivCtx, span := tracer.Start(ctx, "gather.interval", trace.WithAttributes(
				attribute.String("case", gc.Name),
				attribute.String("interval", iv.String()),
			))
			start := time.Now()

			gathered, err := GatherStations(ivCtx, gc, iv, files, idx, p.Reader, GatherOptions{
				KeepVars: p.KeepVars,
				Log:      log,
				Metrics:  p.Metrics,
			})
			p.Metrics.ObserveStage("gather", time.Since(start))
			if err != nil {
				span.End()
				if errors.Is(err, ErrNoData) {
					log.Info(ivCtx, "no data for interval, skipping",
						logging.String("case", gc.Name),
						logging.String("interval", iv.String()),
					)
					p.Metrics.IncIntervalsSkipped(gc.Name)
					continue
				}
				return nil, fmt.Errorf("case %q interval %s: %w", gc.Name, iv, err)
			}
			p.Metrics.AddRowsGathered(gc.Name, gathered.Len())

			if p.Exporter != nil {
				name := fmt.Sprintf("%s_%s", gc.Name, iv)
				if err := p.Exporter.Export(ivCtx, name, gathered); err != nil {
					span.End()
					return nil, fmt.Errorf("exporting %q: %w", name, err)
				}
			}
			if p.CollectResults {
				parts = append(parts, gathered)
			}
			span.End()
		}

		if p.CollectResults && len(parts) > 0 {
			combined, err := model.Concat(parts...)
			if err != nil {
				return nil, err
			}
			results[gc.Name] = combined
		}
	}
	return results, nil
}
