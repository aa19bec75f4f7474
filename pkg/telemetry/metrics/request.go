package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ChannelMetrics tracks metrics related to inner-frame relaying over a
// muxchannel/securechannel Channel.
//
// Metrics:
//   - messageproxy_gateway_frames_total: Total frames relayed by component, port, direction
//   - messageproxy_gateway_frame_size_bytes: Frame payload size histogram
//   - messageproxy_gateway_forward_errors_total: Read/write failures by component, port
type ChannelMetrics struct {
	framesTotal   *prometheus.CounterVec
	frameSize     *prometheus.HistogramVec
	forwardErrors *prometheus.CounterVec
}

// NewChannelMetrics creates and registers channel metrics with the provided registry.
func NewChannelMetrics(cfg *Config, registry *prometheus.Registry) *ChannelMetrics {
	cm := &ChannelMetrics{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frames_total",
				Help:      "Total number of inner-frames relayed",
			},
			[]string{"component", "port", "direction"},
		),

		frameSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frame_size_bytes",
				Help:      "Size of relayed frame payloads in bytes",
				Buckets:   cfg.FrameSizeBuckets,
			},
			[]string{"component", "port", "direction"},
		),

		forwardErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_errors_total",
				Help:      "Total number of channel read/write failures",
			},
			[]string{"component", "port"},
		),
	}

	registry.MustRegister(
		cm.framesTotal,
		cm.frameSize,
		cm.forwardErrors,
	)

	return cm
}

// RecordFrame records a single relayed inner-frame.
//
// Parameters:
//   - component: emitting endpoint runner (e.g., "cmrunner", "iamrunner")
//   - port: mux port number the frame was relayed over
//   - direction: "inbound" (outer to inner) or "outbound" (inner to outer)
//   - sizeBytes: payload size, excluding framing overhead
func (cm *ChannelMetrics) RecordFrame(component string, port uint32, direction string, sizeBytes int) {
	portLabel := portLabel(port)
	cm.framesTotal.WithLabelValues(component, portLabel, direction).Inc()
	if sizeBytes > 0 {
		cm.frameSize.WithLabelValues(component, portLabel, direction).Observe(float64(sizeBytes))
	}
}

// RecordError records a channel read or write failure.
func (cm *ChannelMetrics) RecordError(component string, port uint32) {
	cm.forwardErrors.WithLabelValues(component, portLabel(port)).Inc()
}

func portLabel(port uint32) string {
	return strconv.FormatUint(uint64(port), 10)
}
