// Package transport implements the two outer-transport variants named
// in spec.md §6: a single-client TCP socket and a pair of file-like
// endpoints representing an inter-domain (virtual) channel. Both
// satisfy the same Transport interface consumed by pkg/outermux.
package transport
