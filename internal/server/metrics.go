package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the decode service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	jobs     prometheus.Counter
	users    *prometheus.CounterVec // outcome: ok, error
	duration prometheus.Histogram
}

// NewMetrics creates the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		jobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "decode_jobs_total",
			Help: "Frames submitted for decoding",
		}),
		users: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "decode_users_total",
			Help: "Users decoded, by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "decode_duration_seconds",
			Help:    "Time spent decoding one frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeUser(ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.users.WithLabelValues(outcome).Inc()
}
