package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics
var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcache_lookups_total",
			Help: "Total number of thumbnail cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "stale", "corrupt"
	)

	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcache_writes_total",
			Help: "Total number of thumbnail cache writes",
		},
		[]string{"size"},
	)

	FailMarkersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbcache_fail_markers_total",
			Help: "Total number of fail-markers written",
		},
	)
)

// Generation metrics
var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcache_generations_total",
			Help: "Total number of backend generation attempts",
		},
		[]string{"backend", "status"}, // status: "success", "error"
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbcache_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds by backend",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	NoBackendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcache_no_backend_total",
			Help: "Total number of dispatches with no capable backend",
		},
		[]string{"mime"},
	)
)

// HTTP metrics for the thumbserve daemon
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcache_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbcache_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thumbcache_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape. Call once at
// startup, passing the names of the registered backends.
func InitializeMetrics(backends []string) {
	for _, result := range []string{"hit", "miss", "stale", "corrupt"} {
		LookupsTotal.WithLabelValues(result)
	}
	for _, size := range []string{"normal", "large", "x-large", "xx-large"} {
		WritesTotal.WithLabelValues(size)
	}
	for _, b := range backends {
		GenerationsTotal.WithLabelValues(b, "success")
		GenerationsTotal.WithLabelValues(b, "error")
		GenerationDuration.WithLabelValues(b)
	}
}
