package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wind_stats"

// Metrics holds the Prometheus counters, histograms, and gauges for site analysis.
type Metrics struct {
	SiteRuns          *prometheus.CounterVec // labels: outcome={analyzed,empty,error}
	SourcesLoaded     prometheus.Gauge
	StageOutcomes     *prometheus.CounterVec   // labels: stage, status={ok,skipped,failed}
	StageDuration     *prometheus.HistogramVec // labels: stage
	GumbelFitFailures prometheus.Counter
	ArtifactsWritten  prometheus.Counter

	// Worker metrics.
	JobsConsumed    prometheus.Counter
	ResultsProduced prometheus.Counter
	PipelineRunning prometheus.Gauge
	BatchSize       prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SiteRuns,
		m.SourcesLoaded,
		m.StageOutcomes,
		m.StageDuration,
		m.GumbelFitFailures,
		m.ArtifactsWritten,
		m.JobsConsumed,
		m.ResultsProduced,
		m.PipelineRunning,
		m.BatchSize,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SiteRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_runs_total",
			Help:      "Site analysis runs by outcome.",
		}, []string{"outcome"}),
		SourcesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sources_loaded",
			Help:      "Sources kept in the collection of the last analyzed site.",
		}),
		StageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_outcomes_total",
			Help:      "Per-source stage results by stage and status.",
		}, []string{"stage", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of one analysis stage over all sources.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		GumbelFitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gumbel_fit_failures_total",
			Help:      "Return-level estimates whose Gumbel fit failed.",
		}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Result tables handed to artifact writers.",
		}),
		JobsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_consumed_total",
			Help:      "Analysis requests read from the request topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_produced_total",
			Help:      "Result table messages written to the result topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the worker loop is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of analysis requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}
}
