// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	accessDenials       *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	authAttempts        *prometheus.CounterVec
	rateLimited         prometheus.Counter
}

// New registers every collector on a private registry so tests can build
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		accessDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calm_access_denials_total",
				Help: "Requests rejected by an access policy",
			},
			[]string{"resource", "action", "outcome"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calm_validation_failures_total",
				Help: "Write requests rejected with field errors",
			},
			[]string{"resource"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calm_auth_attempts_total",
				Help: "Token requests by result",
			},
			[]string{"status"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "calm_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.accessDenials,
		m.validationFailures,
		m.authAttempts,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest uses the matched route pattern, never the raw path, to
// keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method string, route string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordAccessDenial(resource string, action string, outcome string) {
	m.accessDenials.WithLabelValues(resource, action, outcome).Inc()
}

func (m *Metrics) RecordValidationFailure(resource string) {
	m.validationFailures.WithLabelValues(resource).Inc()
}

func (m *Metrics) RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.authAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Inc()
}
