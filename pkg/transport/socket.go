package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// Socket is a TCP-backed Transport listening on 0.0.0.0:<port>. It
// accepts a single concurrent client; on disconnect, Connect blocks
// again until the next client arrives.
type Socket struct {
	addr string

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	closed   bool
}

// NewSocket returns a Socket that will listen on the given TCP port.
func NewSocket(port int) *Socket {
	return &Socket{addr: fmt.Sprintf("0.0.0.0:%d", port)}
}

// Connect starts (or resumes) listening and blocks until a client
// connects. It is idempotent while already connected.
func (s *Socket) Connect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return gatewayerrors.New(gatewayerrors.KindClosed, "transport.Socket.Connect", "transport closed")
	}
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	listener := s.listener
	s.mu.Unlock()

	if listener == nil {
		l, err := net.Listen("tcp", s.addr)
		if err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.Socket.Connect", err)
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = l.Close()
			return gatewayerrors.New(gatewayerrors.KindClosed, "transport.Socket.Connect", "transport closed")
		}
		s.listener = l
		listener = l
		s.mu.Unlock()
	}

	conn, err := listener.Accept()
	if err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return gatewayerrors.New(gatewayerrors.KindClosed, "transport.Socket.Connect", "transport closed")
		}
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.Socket.Connect", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	return nil
}

// Read reads from the current client connection.
func (s *Socket) Read(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return 0, gatewayerrors.New(gatewayerrors.KindClosed, "transport.Socket.Read", "not connected")
	}

	n, err := conn.Read(p)
	if err != nil {
		s.dropConn()
		return n, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.Socket.Read", err)
	}
	return n, nil
}

// Write writes to the current client connection.
func (s *Socket) Write(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return 0, gatewayerrors.New(gatewayerrors.KindClosed, "transport.Socket.Write", "not connected")
	}

	n, err := conn.Write(p)
	if err != nil {
		s.dropConn()
		return n, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.Socket.Write", err)
	}
	return n, nil
}

// Close shuts the listener and any active connection down permanently.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	listener := s.listener
	conn := s.conn
	s.listener = nil
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if listener != nil {
		return listener.Close()
	}
	return nil
}

func (s *Socket) dropConn() {
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
}
