package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AuthFailures counts rejected logins and bearer tokens by reason
	// (invalid_credentials, inactive, expired, invalid_signature, malformed, unknown_user).
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of authentication failures by reason",
		},
		[]string{"reason"},
	)

	// StatsRefreshTotal counts statistics cache refreshes by kind and result (ok, error).
	StatsRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_refresh_total",
			Help: "Total number of statistics cache refreshes",
		},
		[]string{"kind", "result"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AuthFailures, StatsRefreshTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /projects/123 -> /projects/{id}, /projects/4/files/9 -> /projects/{id}/files/{id}.
func NormalizePath(path string) string {
	// Applied twice: adjacent numeric segments share a slash, so one pass skips every other one.
	path = numericPathSegment.ReplaceAllString(path, "/{id}$1")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncAuthFailure increments the authentication failure counter for reason.
func IncAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// IncStatsRefresh increments the statistics refresh counter.
func IncStatsRefresh(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	StatsRefreshTotal.WithLabelValues(kind, result).Inc()
}
