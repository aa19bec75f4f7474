package muxchannel

import (
	"sync"

	"github.com/edge-gateway/messageproxy/pkg/framing"
	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// Writer is the minimal transport surface a Channel needs to emit a
// framed payload: a single atomic write of arbitrary length.
type Writer interface {
	Write(p []byte) (int, error)
}

// Channel is one logical sub-stream of the outer byte-stream,
// identified by Port. It is created by the outer mux and shared by
// back-reference with the endpoint runner that reads it.
type Channel struct {
	port uint32

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool

	transport Writer
	writeMu   *sync.Mutex // process-wide, owned by the mux, shared across all its Channels
}

// New constructs a Channel for port, writing through transport and
// serializing writes on writeMu, which must be the same mutex instance
// shared by every other Channel created by the same mux.
func New(port uint32, transport Writer, writeMu *sync.Mutex) *Channel {
	c := &Channel{
		port:      port,
		transport: transport,
		writeMu:   writeMu,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Port returns the logical port this Channel is bound to.
func (c *Channel) Port() uint32 {
	return c.port
}

// Read fills buf exactly, blocking until at least len(buf) bytes are
// available in the receive buffer or the channel is closed. A close
// while waiting, or a close that leaves fewer than len(buf) bytes
// buffered, yields a KindClosed error and no partial fill.
func (c *Channel) Read(buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf) < len(buf) && !c.closed {
		c.cond.Wait()
	}

	if len(c.buf) < len(buf) {
		return gatewayerrors.New(gatewayerrors.KindClosed, "muxchannel.Read", "channel closed before enough bytes arrived")
	}

	copy(buf, c.buf[:len(buf)])
	c.buf = c.buf[len(buf):]

	return nil
}

// Write atomically emits an outer header for payload followed by
// payload itself, serialized against every other Channel on the same
// mux via the shared writeMu so frames are never interleaved.
func (c *Channel) Write(payload []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return gatewayerrors.New(gatewayerrors.KindClosed, "muxchannel.Write", "channel closed")
	}

	header := framing.BuildOuter(c.port, payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.transport.Write(header); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "muxchannel.Write", err)
	}
	if len(payload) > 0 {
		if _, err := c.transport.Write(payload); err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "muxchannel.Write", err)
		}
	}

	return nil
}

// Receive is called only by the owning mux's reader task; it appends
// bytes to the receive buffer, preserving delivery order, and wakes
// any blocked reader.
func (c *Channel) Receive(data []byte) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	c.buf = append(c.buf, data...)
	c.mu.Unlock()

	c.cond.Broadcast()
}

// Close marks the channel closed, releasing any blocked Read and
// failing subsequent Writes. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cond.Broadcast()

	return nil
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
