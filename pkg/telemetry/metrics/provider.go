package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionMetrics tracks metrics related to an endpoint runner's
// connection to its inner gRPC service.
//
// Metrics:
//   - messageproxy_gateway_connection_up: 1=connected, 0=disconnected, by component
//   - messageproxy_gateway_connect_latency_seconds: secure-channel handshake latency
//   - messageproxy_gateway_connect_errors_total: connect/handshake failures by reason
type ConnectionMetrics struct {
	up            *prometheus.GaugeVec
	connectLatency *prometheus.HistogramVec
	connectErrors *prometheus.CounterVec
}

// NewConnectionMetrics creates and registers connection metrics with the provided registry.
func NewConnectionMetrics(cfg *Config, registry *prometheus.Registry) *ConnectionMetrics {
	cm := &ConnectionMetrics{
		up: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connection_up",
				Help:      "Whether a component's inner connection is up (1=connected, 0=disconnected)",
			},
			[]string{"component"},
		),

		connectLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connect_latency_seconds",
				Help:      "Secure channel handshake latency in seconds",
				Buckets:   cfg.ConnectLatencyBuckets,
			},
			[]string{"component"},
		),

		connectErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connect_errors_total",
				Help:      "Total number of connect/handshake failures by reason",
			},
			[]string{"component", "reason"},
		),
	}

	registry.MustRegister(
		cm.up,
		cm.connectLatency,
		cm.connectErrors,
	)

	return cm
}

// UpdateState updates whether component's inner connection is up.
func (cm *ConnectionMetrics) UpdateState(component string, connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	cm.up.WithLabelValues(component).Set(value)
}

// RecordLatency records how long a secure channel handshake took.
func (cm *ConnectionMetrics) RecordLatency(component string, latencySeconds float64) {
	cm.connectLatency.WithLabelValues(component).Observe(latencySeconds)
}

// RecordError records a connect/handshake failure.
//
// Common reasons: "timeout", "tls_handshake", "cert_load", "eof".
func (cm *ConnectionMetrics) RecordError(component, reason string) {
	cm.connectErrors.WithLabelValues(component, reason).Inc()
}
