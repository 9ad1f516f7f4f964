// Package metrics wraps prometheus/client_golang counters and
// histograms for the scanner's session lifecycle, CIP traffic, and
// discovery activity (§4.16).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the scanner's Prometheus collectors. A nil *Registry
// is safe to call every method on: each method checks for nil so
// callers do not need to branch on whether metrics are enabled.
type Registry struct {
	SessionsOpened     prometheus.Counter
	SessionsClosed     prometheus.Counter
	CIPRequestsByService *prometheus.CounterVec
	CIPStatusCodes       *prometheus.CounterVec
	DiscoveryResponses prometheus.Counter
	OperationLatency   *prometheus.HistogramVec
}

// New registers and returns a fresh Registry against a dedicated
// prometheus.Registry, so repeated test construction never collides
// with the global default registry.
func New() (*Registry, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		SessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "enip_scanner_sessions_opened_total",
			Help: "ENIP sessions registered.",
		}),
		SessionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "enip_scanner_sessions_closed_total",
			Help: "ENIP sessions unregistered.",
		}),
		CIPRequestsByService: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enip_scanner_cip_requests_total",
			Help: "CIP requests sent, by service code.",
		}, []string{"service"}),
		CIPStatusCodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enip_scanner_cip_status_total",
			Help: "CIP general status codes received.",
		}, []string{"status"}),
		DiscoveryResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "enip_scanner_discovery_responses_total",
			Help: "ListIdentity responses received during discovery.",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enip_scanner_operation_latency_seconds",
			Help:    "Latency of scanner operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	return r, reg
}

func (r *Registry) SessionOpened() {
	if r == nil {
		return
	}
	r.SessionsOpened.Inc()
}

func (r *Registry) SessionClosed() {
	if r == nil {
		return
	}
	r.SessionsClosed.Inc()
}

func (r *Registry) CIPRequest(service string) {
	if r == nil {
		return
	}
	r.CIPRequestsByService.WithLabelValues(service).Inc()
}

func (r *Registry) CIPStatus(status string) {
	if r == nil {
		return
	}
	r.CIPStatusCodes.WithLabelValues(status).Inc()
}

func (r *Registry) DiscoveryResponse() {
	if r == nil {
		return
	}
	r.DiscoveryResponses.Inc()
}

func (r *Registry) ObserveLatency(operation string, seconds float64) {
	if r == nil {
		return
	}
	r.OperationLatency.WithLabelValues(operation).Observe(seconds)
}
