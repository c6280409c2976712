package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// yield emulation pipeline.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ResultsProduced  prometheus.Counter
	EvaluationErrors *prometheus.CounterVec // labels: category={configuration,not_land,invalid_input,parse,fetch}
	PipelineRunning  prometheus.Gauge

	EvaluationDuration prometheus.Histogram

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Data service metrics.
	DatasetFetchDuration *prometheus.HistogramVec // labels: resource
	DatasetCache         *prometheus.CounterVec   // labels: resource, result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ResultsProduced,
		m.EvaluationErrors,
		m.PipelineRunning,
		m.EvaluationDuration,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DatasetFetchDuration,
		m.DatasetCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yield_emulator",
			Name:      "requests_consumed_total",
			Help:      "Total evaluation requests read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "yield_emulator",
			Name:      "results_produced_total",
			Help:      "Total yield results written to the sink topic.",
		}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yield_emulator",
			Name:      "evaluation_errors_total",
			Help:      "Evaluation failures by error category.",
		}, []string{"category"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "yield_emulator",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "yield_emulator",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a single pixel-year evaluation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "yield_emulator",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "yield_emulator",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "yield_emulator",
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Data service request duration by resource.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yield_emulator",
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by resource and result.",
		}, []string{"resource", "result"}),
	}
}
