package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// geocoding proxy.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec // labels: operation, provider, outcome
	RequestDuration prometheus.Histogram
	BatchRows       prometheus.Histogram

	// Backend call metrics.
	BackendCalls    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={match,no_match,error}
	BackendDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	// Provider index map cache metrics.
	IndexCache *prometheus.CounterVec // labels: result={hit,miss}

	// Audit trail metrics.
	AuditPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all proxy metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocode_proxy",
			Name:      "requests_total",
			Help:      "External function calls by operation, provider, and outcome.",
		}, []string{"operation", "provider", "outcome"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geocode_proxy",
			Name:      "request_duration_seconds",
			Help:      "Duration of a complete batch call, decode to encode.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BatchRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geocode_proxy",
			Name:      "batch_rows",
			Help:      "Number of rows per inbound batch call.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocode_proxy",
			Name:      "backend_calls_total",
			Help:      "Geocoding backend calls by method and outcome.",
		}, []string{"method", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geocode_proxy",
			Name:      "backend_call_duration_seconds",
			Help:      "Geocoding backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		IndexCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocode_proxy",
			Name:      "index_cache_total",
			Help:      "Provider index map cache lookups by result.",
		}, []string{"result"}),
		AuditPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geocode_proxy",
			Name:      "audit_publish_errors_total",
			Help:      "Audit records that could not be published.",
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.BatchRows,
		m.BackendCalls,
		m.BackendDuration,
		m.IndexCache,
		m.AuditPublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geocode_proxy", Name: "requests_total"}, []string{"operation", "provider", "outcome"}),
		RequestDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "geocode_proxy", Name: "request_duration_seconds"}),
		BatchRows:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "geocode_proxy", Name: "batch_rows"}),
		BackendCalls:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geocode_proxy", Name: "backend_calls_total"}, []string{"method", "outcome"}),
		BackendDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "geocode_proxy", Name: "backend_call_duration_seconds"}, []string{"method"}),
		IndexCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "geocode_proxy", Name: "index_cache_total"}, []string{"result"}),
		AuditPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "geocode_proxy", Name: "audit_publish_errors_total"}),
	}
}
