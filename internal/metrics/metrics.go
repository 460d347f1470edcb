// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Mutations       *prometheus.CounterVec
	Allocations     prometheus.Histogram
	ActiveSessions  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairshare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fairshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairshare",
			Name:      "session_mutations_total",
			Help:      "Session mutations by operation and result.",
		}, []string{"operation", "result"}),
		Allocations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fairshare",
			Name:      "allocation_people",
			Help:      "Number of people in each computed allocation.",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 20, 50},
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fairshare",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
}

// ObserveMutation counts one session mutation.
func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(operation, result).Inc()
}

// ObserveAllocation records the size of a computed allocation.
func (m *Metrics) ObserveAllocation(people int) {
	if m == nil {
		return
	}
	m.Allocations.Observe(float64(people))
}

// SetActiveSessions reports how many sessions are loaded.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
