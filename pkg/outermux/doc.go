// Package outermux implements the port-multiplexer that owns the
// single outer byte-stream (spec.md §4.3): it runs the sole reader of
// that transport, demultiplexes inbound frames to per-port Channels by
// their outer header, and hands out Channel (or SecureChannel) handles
// that endpoint runners use to talk back through the same transport.
package outermux
