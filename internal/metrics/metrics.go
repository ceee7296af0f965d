// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpwr_http_requests_total",
			Help: "HTTP requests served, by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mpwr_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Projections counts payoff comparisons by hypothetical outcome
	Projections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpwr_projections_total",
			Help: "Payoff projections computed, by outcome",
		},
		[]string{"outcome"},
	)

	// Schedules counts reconciled schedules by source
	Schedules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpwr_schedules_total",
			Help: "Schedules built, by source (servicing or generated)",
		},
		[]string{"source"},
	)

	// OverrideRejections counts staged amounts refused for being out of range
	OverrideRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mpwr_override_rejections_total",
			Help: "Installment overrides rejected by the payment bounds",
		},
	)

	// RateLimited counts requests refused by the rate limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mpwr_rate_limited_total",
			Help: "Requests rejected with 429",
		},
	)

	// WebSocketClients tracks currently connected WebSocket clients
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mpwr_websocket_clients",
			Help: "Connected WebSocket clients",
		},
	)
)
