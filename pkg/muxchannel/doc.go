// Package muxchannel implements the per-port sub-stream abstraction
// multiplexed over a single outer byte-stream (spec.md §4.2). A
// Channel buffers bytes delivered by the owning mux for one logical
// port and exposes a blocking Read; writes are serialized through a
// transport-wide mutex shared by every Channel the mux creates, so
// frames for different ports never interleave on the wire.
package muxchannel
