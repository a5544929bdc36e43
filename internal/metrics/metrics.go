// Package metrics exposes Prometheus counters for authentication and content activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service metrics into a Prometheus registry.
// It satisfies auth.Recorder.
type Collector struct {
	authAttempts     *prometheus.CounterVec
	usersProvisioned *prometheus.CounterVec
	resourcesCreated *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     prometheus.Histogram
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placereviews_auth_attempts_total",
			Help: "Authentication attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		usersProvisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placereviews_users_provisioned_total",
			Help: "Accounts created, by identity provider.",
		}, []string{"provider"}),
		resourcesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placereviews_resources_created_total",
			Help: "Owned resources created, by kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placereviews_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "placereviews_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.usersProvisioned,
		c.resourcesCreated,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

func (c *Collector) RecordAuthAttempt(operation, outcome string) {
	c.authAttempts.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordUserProvisioned(provider string) {
	c.usersProvisioned.WithLabelValues(provider).Inc()
}

// RecordResourceCreated counts a review or place created by an authenticated user.
func (c *Collector) RecordResourceCreated(kind string) {
	c.resourcesCreated.WithLabelValues(kind).Inc()
}

// Middleware counts every request by method and final status.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		c.httpDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
