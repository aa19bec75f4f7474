package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the metrics namespace and histogram buckets used by
// a Collector.
type Config struct {
	// Enabled turns metric recording on. When false, every Collector
	// method is a no-op.
	Enabled bool

	// Namespace and Subsystem prefix every metric name
	// (namespace_subsystem_metric).
	Namespace string
	Subsystem string

	// FrameSizeBuckets buckets frame/payload sizes in bytes.
	FrameSizeBuckets []float64

	// ConnectLatencyBuckets buckets secure-channel connect latencies in
	// seconds.
	ConnectLatencyBuckets []float64
}

// Collector is the orchestrator for all Prometheus metrics the gateway
// exposes. It manages metric registration and provides a unified
// interface for recording metrics across the endpoint runners, the
// downloader, and the image store.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	channelMetrics    *ChannelMetrics
	connectionMetrics *ConnectionMetrics
	downloadMetrics   *DownloadMetrics
	gcMetrics         *GCMetrics
	registryMetrics   *RegistryCacheMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// Prometheus registry is used.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "messageproxy"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.FrameSizeBuckets) == 0 {
		cfg.FrameSizeBuckets = prometheus.ExponentialBuckets(64, 4, 10) // 64B .. ~16MB
	}
	if len(cfg.ConnectLatencyBuckets) == 0 {
		cfg.ConnectLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1.0, 3.0, 10.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.channelMetrics = NewChannelMetrics(cfg, registry)
	c.connectionMetrics = NewConnectionMetrics(cfg, registry)
	c.downloadMetrics = NewDownloadMetrics(cfg, registry)
	c.gcMetrics = NewGCMetrics(cfg, registry)
	c.registryMetrics = NewRegistryCacheMetrics(cfg, registry)

	return c
}

// RecordFrame records a single relayed inner-frame.
func (c *Collector) RecordFrame(component string, port uint32, direction string, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("frame:%s:%d", component, port)
	if !c.cardinalityLimiter.Allow(labelSet) {
		component = "other"
	}

	c.channelMetrics.RecordFrame(component, port, direction, sizeBytes)
}

// RecordForwardError records a read/write failure on a channel.
func (c *Collector) RecordForwardError(component string, port uint32) {
	if !c.config.Enabled {
		return
	}
	c.channelMetrics.RecordError(component, port)
}

// UpdateConnectionState updates the connected/disconnected gauge for a
// component's inner connection.
func (c *Collector) UpdateConnectionState(component string, connected bool) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.UpdateState(component, connected)
}

// RecordConnectLatency records how long a secure channel handshake
// took to complete.
func (c *Collector) RecordConnectLatency(component string, latency time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordLatency(component, latency.Seconds())
}

// RecordConnectError records a failed connect/handshake attempt.
func (c *Collector) RecordConnectError(component, reason string) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordError(component, reason)
}

// RecordDownload records the outcome of an image content download job.
func (c *Collector) RecordDownload(status string, duration time.Duration, bytesDownloaded int64) {
	if !c.config.Enabled {
		return
	}
	c.downloadMetrics.RecordDownload(status, duration, bytesDownloaded)
}

// RecordSweep records the outcome of a single image-store GC sweep.
func (c *Collector) RecordSweep(duration time.Duration, removed int) {
	if !c.config.Enabled {
		return
	}
	c.gcMetrics.RecordSweep(duration, removed)
}

// RecordRegistryHit records a digest lookup hit in the extraction
// registry.
func (c *Collector) RecordRegistryHit() {
	if !c.config.Enabled {
		return
	}
	c.registryMetrics.RecordHit()
}

// RecordRegistryMiss records a digest lookup miss in the extraction
// registry.
func (c *Collector) RecordRegistryMiss() {
	if !c.config.Enabled {
		return
	}
	c.registryMetrics.RecordMiss()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
