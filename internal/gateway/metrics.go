// ABOUTME: Prometheus metrics for bridged requests and sessions.
// ABOUTME: Registered on a private registry served on the dedicated metrics address.

package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	sessionsInFlight prometheus.Gauge
	sessionDuration  prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_router_requests_total",
			Help: "Bridged requests by response code.",
		}, []string{"code"}),
		sessionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_router_sessions_in_flight",
			Help: "Sessions currently negotiating with the backend.",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_router_session_duration_seconds",
			Help:    "Duration of bridged sessions from ingress to response.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.sessionsInFlight, m.sessionDuration)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
