// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics defines Prometheus metrics for the MeatTrack API.
//
// All metrics are registered with a private [Registry] served on /metrics.
//
// Metric naming follows Prometheus conventions:
//   - meattrack_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every MeatTrack collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts finished requests by method, route pattern and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meattrack_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds is a histogram of request latency by route.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meattrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LoginsTotal counts login attempts by outcome (success, failure, throttled).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meattrack_auth_logins_total",
			Help: "Total login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// CSRFFailuresTotal counts rejected mutating requests.
	CSRFFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meattrack_auth_csrf_failures_total",
			Help: "Total requests rejected by the CSRF guard.",
		},
	)

	// AccessDeniedTotal counts mediator denials by reason.
	AccessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meattrack_auth_access_denied_total",
			Help: "Total requests denied by the access mediator.",
		},
		[]string{"reason"},
	)

	// SessionResolutionsTotal counts how each request's session was resolved.
	SessionResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meattrack_auth_session_resolutions_total",
			Help: "Session resolutions by path (marker, remember, anonymous, error).",
		},
		[]string{"path"},
	)

	// SessionsSweptTotal counts expired session rows removed by the sweeper.
	SessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meattrack_auth_sessions_swept_total",
			Help: "Total expired sessions deleted by the sweeper.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		LoginsTotal,
		CSRFFailuresTotal,
		AccessDeniedTotal,
		SessionResolutionsTotal,
		SessionsSweptTotal,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records a finished HTTP request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records a login attempt outcome.
func RecordLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordCSRFFailure records a single CSRF rejection.
func RecordCSRFFailure() {
	CSRFFailuresTotal.Inc()
}

// RecordAccessDenied records a mediator denial.
func RecordAccessDenied(reason string) {
	AccessDeniedTotal.WithLabelValues(reason).Inc()
}

// RecordSessionResolution records which validation path served a request.
func RecordSessionResolution(path string) {
	SessionResolutionsTotal.WithLabelValues(path).Inc()
}

// RecordSessionsSwept records the number of rows deleted by one sweep.
func RecordSessionsSwept(count int64) {
	SessionsSweptTotal.Add(float64(count))
}
