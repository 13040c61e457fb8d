package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Purge cascade counters
	PurgedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "purged_records_total",
			Help:      "Total records removed by purge cascades",
		},
		[]string{"category"},
	)

	// Memory mutation counter
	MemoryMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "memory_mutations_total",
			Help:      "Total continuity memory mutations",
		},
		[]string{"operation", "status"},
	)

	// Upstream proxy counters
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "upstream_requests_total",
			Help:      "Total requests proxied to upstream services",
		},
		[]string{"upstream", "status"},
	)

	// Upstream proxy duration
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "upstream_duration_seconds",
			Help:      "Upstream request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"upstream"},
	)

	// Maintenance job rows removed
	MaintenancePrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "continuum",
			Subsystem: "api",
			Name:      "maintenance_pruned_total",
			Help:      "Total rows removed by scheduled maintenance jobs",
		},
		[]string{"job"},
	)
)

// RecordRequest records an HTTP request with its duration.
func RecordRequest(method, endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// RecordUpstream records one proxied upstream call.
func RecordUpstream(upstream, status string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(upstream, status).Inc()
	UpstreamDuration.WithLabelValues(upstream).Observe(seconds)
}
