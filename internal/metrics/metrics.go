package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verimetr/verimetr-api/internal/domain"
)

var (
	quotaDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Total quota admission denials by kind, reason, and check path",
		},
		[]string{"kind", "reason", "path"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_cache_lookups_total",
			Help: "Total quota view cache lookups by result",
		},
		[]string{"result"},
	)
)

// Init registers metrics with Prometheus
func Init() {
	prometheus.MustRegister(quotaDenials)
	prometheus.MustRegister(httpRequests)
	prometheus.MustRegister(httpDuration)
	prometheus.MustRegister(cacheLookups)
}

// CacheLookup records one quota view cache lookup.
func CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// QuotaDenied records one admission denial. fastPath marks denials served
// from the cache without touching the database.
func QuotaDenied(kind domain.QuotaKind, reason string, fastPath bool) {
	path := "authoritative"
	if fastPath {
		path = "cache"
	}
	quotaDenials.WithLabelValues(string(kind), reason, path).Inc()
}

// HTTPRequest records one completed request.
func HTTPRequest(method, route string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
