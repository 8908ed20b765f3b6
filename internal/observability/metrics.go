package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "neo_hazard"

// Metrics holds the Prometheus counters, histograms, and gauges for the assessment pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Assessment metrics.
	Assessments      *prometheus.CounterVec // labels: hazard_level
	TorinoScale      prometheus.Histogram
	ValidationIssues *prometheus.CounterVec // labels: policy

	// Orbital-element lookup metrics.
	OrbitLookups       *prometheus.CounterVec // labels: outcome={success,error,empty}
	OrbitCache         *prometheus.CounterVec // labels: result={hit,miss,expired}
	OrbitAPIDuration   prometheus.Histogram
	OrbitLookupEnabled prometheus.Gauge

	// Alert metrics.
	AlertsPublished *prometheus.CounterVec // labels: hazard_level
	AlertErrors     prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total assessments written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total records skipped because decoding or assessment failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed assessments by hazard level.",
		}, []string{"hazard_level"}),
		TorinoScale: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "torino_scale",
			Help:      "Distribution of assigned Torino values.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7},
		}),
		ValidationIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Unparsable numeric fields seen, by validation policy.",
		}, []string{"policy"}),
		OrbitLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbit_lookups_total",
			Help:      "NeoWs orbital-element lookups by outcome.",
		}, []string{"outcome"}),
		OrbitCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbit_cache_total",
			Help:      "Orbital-element cache lookups by result.",
		}, []string{"result"}),
		OrbitAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orbit_api_duration_seconds",
			Help:      "NeoWs lookup request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		OrbitLookupEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orbit_lookup_enabled",
			Help:      "1 when orbital-element lookup is enabled, 0 otherwise.",
		}),
		AlertsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_published_total",
			Help:      "Alerts published to NATS by hazard level.",
		}, []string{"hazard_level"}),
		AlertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_errors_total",
			Help:      "Alert publish failures.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Assessments,
		m.TorinoScale,
		m.ValidationIssues,
		m.OrbitLookups,
		m.OrbitCache,
		m.OrbitAPIDuration,
		m.OrbitLookupEnabled,
		m.AlertsPublished,
		m.AlertErrors,
	}
}
