// Package metrics provides Prometheus metrics collection for the
// message-proxy gateway.
//
// # Overview
//
// The metrics package implements Prometheus metrics for the gateway's
// channel relaying, inner connection health, image content downloads,
// image-store garbage collection, and the extraction registry cache.
//
// # Metrics Categories
//
//   - Channel Metrics: frame counts, sizes, and forward errors per component/port
//   - Connection Metrics: inner connection up/down, connect latency, connect errors
//   - Download Metrics: download job outcomes, duration, and bytes transferred
//   - GC Metrics: image-store sweep counts, duration, and directories removed
//   - Registry Cache Metrics: extraction registry lookup hits/misses
//
// # Usage
//
//	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
//
//	collector.RecordFrame("cmrunner", 2, "outbound", len(payload))
//	collector.UpdateConnectionState("cmrunner", true)
//	collector.RecordDownload("success", elapsed, bytesWritten)
//
// # Cardinality Management
//
// The collector limits distinct component/port label combinations to
// prevent metric cardinality explosion; anything past the limit is
// aggregated under a component of "other".
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard
// Prometheus format via Collector.Handler().
package metrics
