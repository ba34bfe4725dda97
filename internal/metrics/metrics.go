// Package metrics exposes the service's Prometheus instruments. They are
// registered once on the default registry and served at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studiosite"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Response cache lookups by backend and result (hit, miss, error).",
	}, []string{"backend", "result"})

	cachePurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_purged_keys_total",
		Help:      "Cache keys removed by write invalidation.",
	}, []string{"backend"})

	interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_interactions_total",
		Help:      "Views, likes and shares recorded per collection.",
	}, []string{"collection", "kind"})

	contactMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_messages_total",
		Help:      "Contact form submissions by notification outcome.",
	}, []string{"notified"})

	uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Stored uploads by category.",
	}, []string{"category"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Admin login attempts by outcome.",
	}, []string{"outcome"})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit, miss or backend error.
func CacheLookup(backend, result string) {
	cacheLookups.WithLabelValues(backend, result).Inc()
}

// CachePurged records keys removed by invalidation.
func CachePurged(backend string, n int) {
	cachePurged.WithLabelValues(backend).Add(float64(n))
}

// Interaction records a view, like or share on a collection.
func Interaction(collection, kind string) {
	interactions.WithLabelValues(collection, kind).Inc()
}

// ContactMessage records a stored contact message and whether the
// notification email went out.
func ContactMessage(notified bool) {
	contactMessages.WithLabelValues(strconv.FormatBool(notified)).Inc()
}

// Upload records a stored file.
func Upload(category string) {
	uploads.WithLabelValues(category).Inc()
}

// LoginAttempt records a login outcome ("success", "invalid", "locked").
func LoginAttempt(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}
