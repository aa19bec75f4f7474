// Package securechannel overlays a TLS session on top of a
// pkg/muxchannel.Channel (spec.md §4.4). The Channel's blocking
// Read/Write become the TLS record layer's I/O sink instead of a raw
// socket, so a single multiplexed port can carry a mutually
// authenticated TLS session indistinguishable, from the peer's
// perspective, from TLS-over-TCP.
package securechannel
