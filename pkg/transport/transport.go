package transport

import "io"

// Transport is a byte-stream that the outer mux owns exclusively as a
// reader. Any number of Channels may Write to it, serialized by the
// mux's shared mutex.
type Transport interface {
	io.ReadWriteCloser

	// Connect establishes (or re-establishes) the underlying
	// byte-stream. It is idempotent: calling Connect on an
	// already-connected transport is a no-op that returns nil.
	Connect() error
}
