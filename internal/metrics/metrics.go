// Package metrics holds the Prometheus collectors of the server. Collectors
// are owned by a Metrics value and registered on an explicit registerer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	AuthRejections   *prometheus.CounterVec
	Merges           *prometheus.CounterVec
	PointsAwarded    prometheus.Counter
	Broadcasts       *prometheus.CounterVec
	RealtimeSessions prometheus.Gauge
	RealtimeDropped  prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which tests use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		Merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_merges_total",
				Help: "Total number of merged change batches",
			},
			[]string{"result"},
		),
		PointsAwarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sync_points_awarded_total",
				Help: "Total number of points awarded by merges",
			},
		),
		Broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realtime_broadcasts_total",
				Help: "Total number of realtime events fanned out",
			},
			[]string{"event"},
		),
		RealtimeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "realtime_sessions",
				Help: "Number of connected realtime sessions",
			},
		),
		RealtimeDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "realtime_dropped_sessions_total",
				Help: "Total number of sessions dropped for not keeping up",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPDuration,
			m.AuthRejections,
			m.Merges,
			m.PointsAwarded,
			m.Broadcasts,
			m.RealtimeSessions,
			m.RealtimeDropped,
		)
	}

	return m
}
