// Package framing builds and parses the two wire headers used by the
// message-proxy gateway: the outer header, which is checksummed and
// carries a logical port number, and the inner header, which is a
// bare length prefix used once traffic is already inside TLS or has
// already passed outer-header validation.
package framing
