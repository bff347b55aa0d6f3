package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineCollector bundles Prometheus metrics for the batch processing
// pipeline and provides a ready-to-use /metrics handler. All recording
// methods tolerate a nil receiver so instrumentation stays optional.
type PipelineCollector struct {
	gatherer prometheus.Gatherer

	FilesRead        *prometheus.CounterVec
	RowsGathered     *prometheus.CounterVec
	IntervalsSkipped *prometheus.CounterVec
	VODRows          *prometheus.CounterVec
	StageDurations   *prometheus.HistogramVec

	GridCells prometheus.Gauge
}

// NewPipelineCollector registers pipeline Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewPipelineCollector(reg prometheus.Registerer) (*PipelineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	filesRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_files_read_total",
		Help: "Total number of observation files loaded, labeled by station.",
	}, []string{"station"})
	filesRead, err := registerCounterVec(reg, filesRead, "pipeline_files_read_total")
	if err != nil {
		return nil, err
	}

	rowsGathered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_gathered_total",
		Help: "Total number of observation rows gathered, labeled by case.",
	}, []string{"case"})
	rowsGathered, err = registerCounterVec(reg, rowsGathered, "pipeline_rows_gathered_total")
	if err != nil {
		return nil, err
	}

	intervalsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_intervals_skipped_total",
		Help: "Processing intervals skipped because no station had data, labeled by case.",
	}, []string{"case"})
	intervalsSkipped, err = registerCounterVec(reg, intervalsSkipped, "pipeline_intervals_skipped_total")
	if err != nil {
		return nil, err
	}

	vodRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_vod_rows_total",
		Help: "Total number of VOD result rows produced, labeled by pairing.",
	}, []string{"pairing"})
	vodRows, err = registerCounterVec(reg, vodRows, "pipeline_vod_rows_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Pipeline stage latency in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"stage"})
	durations, err = registerHistogramVec(reg, durations, "pipeline_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	gridCells, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hemisphere_grid_cells",
		Help: "Number of cells in the active hemisphere grid.",
	}), "hemisphere_grid_cells")
	if err != nil {
		return nil, err
	}

	return &PipelineCollector{
		gatherer:         gatherer,
		FilesRead:        filesRead,
		RowsGathered:     rowsGathered,
		IntervalsSkipped: intervalsSkipped,
		VODRows:          vodRows,
		StageDurations:   durations,
		GridCells:        gridCells,
	}, nil
}

// IncFilesRead counts one loaded observation file for a station.
func (c *PipelineCollector) IncFilesRead(station string) {
	if c == nil || c.FilesRead == nil {
		return
	}
	c.FilesRead.WithLabelValues(station).Inc()
}

// AddRowsGathered counts gathered rows for a case.
func (c *PipelineCollector) AddRowsGathered(caseName string, rows int) {
	if c == nil || c.RowsGathered == nil {
		return
	}
	c.RowsGathered.WithLabelValues(caseName).Add(float64(rows))
}

// IncIntervalsSkipped counts one skipped interval for a case.
func (c *PipelineCollector) IncIntervalsSkipped(caseName string) {
	if c == nil || c.IntervalsSkipped == nil {
		return
	}
	c.IntervalsSkipped.WithLabelValues(caseName).Inc()
}

// AddVODRows counts produced VOD rows for a pairing.
func (c *PipelineCollector) AddVODRows(pairing string, rows int) {
	if c == nil || c.VODRows == nil {
		return
	}
	c.VODRows.WithLabelValues(pairing).Add(float64(rows))
}

// ObserveStage records one stage execution duration.
func (c *PipelineCollector) ObserveStage(stage string, d time.Duration) {
	if c == nil || c.StageDurations == nil {
		return
	}
	c.StageDurations.WithLabelValues(stage).Observe(d.Seconds())
}

// SetGridCells records the size of the active hemisphere grid.
func (c *PipelineCollector) SetGridCells(n int) {
	if c == nil || c.GridCells == nil {
		return
	}
	c.GridCells.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PipelineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
