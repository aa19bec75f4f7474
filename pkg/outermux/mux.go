package outermux

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/framing"
	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
	"github.com/edge-gateway/messageproxy/pkg/muxchannel"
	"github.com/edge-gateway/messageproxy/pkg/transport"
)

// ReconnectTimeout is how long the reader task sleeps after a failed
// transport connect attempt before retrying (spec.md §4.3).
const ReconnectTimeout = 3 * time.Second

// Mux owns the single outer byte-stream and the registry of Channels
// multiplexed over it (spec.md §4.3). It runs exactly one reader task;
// any number of Channels may write, serialized through writeMu.
type Mux struct {
	transport transport.Transport
	logger    *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	channels map[uint32]*muxchannel.Channel
	shutdown bool
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	connectOnce  sync.Once

	readerDone chan struct{}
}

// New constructs a Mux over the given transport.
func New(t transport.Transport, logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mux{
		transport:  t,
		logger:     logger.With("component", "outermux"),
		channels:   make(map[uint32]*muxchannel.Channel),
		shutdownCh: make(chan struct{}),
		readerDone: make(chan struct{}),
	}
}

// CreateChannel registers a Channel for port. It is an error to
// register the same port twice.
func (m *Mux) CreateChannel(port uint32) (*muxchannel.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.channels[port]; exists {
		return nil, gatewayerrors.New(gatewayerrors.KindAlreadyExist, "outermux.CreateChannel", "channel already registered for port")
	}

	ch := muxchannel.New(port, m.transport, &m.writeMu)
	m.channels[port] = ch

	return ch, nil
}

// Write is not supported on the Mux itself; all writes go through
// individual Channels (spec.md §4.3).
func (m *Mux) Write([]byte) (int, error) {
	return 0, gatewayerrors.New(gatewayerrors.KindNotSupported, "outermux.Write", "write through a Channel, not the Mux")
}

// Connect starts the mux's reader task. It is idempotent: calling
// Connect more than once has no additional effect.
func (m *Mux) Connect() {
	m.connectOnce.Do(func() { go m.readLoop() })
}

// readLoop is the mux's single reader task (spec.md §5): it owns the
// transport as its only reader, retrying transport.Connect on failure,
// and demultiplexes every parsed frame to its Channel.
func (m *Mux) readLoop() {
	defer close(m.readerDone)

	for {
		select {
		case <-m.shutdownCh:
			return
		default:
		}

		if err := m.transport.Connect(); err != nil {
			m.logger.Warn("transport connect failed, retrying", "error", err, "retry_in", ReconnectTimeout)
			select {
			case <-time.After(ReconnectTimeout):
				continue
			case <-m.shutdownCh:
				return
			}
		}

		m.pumpFrames()

		select {
		case <-m.shutdownCh:
			return
		default:
		}
	}
}

// pumpFrames reads frames from the connected transport until an I/O
// error or shutdown, dispatching each to its target Channel.
func (m *Mux) pumpFrames() {
	headerBuf := make([]byte, framing.OuterHeaderSize)

	for {
		select {
		case <-m.shutdownCh:
			return
		default:
		}

		if _, err := io.ReadFull(m.transport, headerBuf); err != nil {
			m.logger.Warn("outer transport read failed", "error", err)
			return
		}

		header, err := framing.ParseOuter(headerBuf)
		if err != nil {
			m.logger.Warn("outer header parse failed", "error", err)
			continue
		}

		if header.DataSize > framing.MaxPayloadSize {
			m.logger.Warn("oversize frame dropped", "port", header.Port, "data_size", header.DataSize)
			m.drain(header.DataSize)
			continue
		}

		payload := make([]byte, header.DataSize)
		if header.DataSize > 0 {
			if _, err := io.ReadFull(m.transport, payload); err != nil {
				m.logger.Warn("outer payload read failed", "error", err)
				return
			}
		}

		if !header.VerifyChecksum(payload) {
			m.logger.Warn("checksum mismatch, frame dropped", "port", header.Port, "data_size", header.DataSize)
			continue
		}

		m.dispatch(header.Port, payload)
	}
}

// drain discards n bytes from the transport, used to resynchronize
// after an oversize frame is rejected without closing the stream.
func (m *Mux) drain(n uint32) {
	buf := make([]byte, 4096)
	for n > 0 {
		chunk := uint32(len(buf))
		if n < chunk {
			chunk = n
		}
		if _, err := m.transport.Read(buf[:chunk]); err != nil {
			return
		}
		n -= chunk
	}
}

func (m *Mux) dispatch(port uint32, payload []byte) {
	m.mu.Lock()
	ch, ok := m.channels[port]
	m.mu.Unlock()

	if !ok {
		m.logger.Warn("frame for unknown port dropped", "port", port)
		return
	}

	ch.Receive(payload)
}

// Close stops the reader task and closes every registered Channel and
// the underlying transport. It is safe to call more than once.
func (m *Mux) Close() error {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.shutdown = true
		channels := make([]*muxchannel.Channel, 0, len(m.channels))
		for _, ch := range m.channels {
			channels = append(channels, ch)
		}
		m.mu.Unlock()

		close(m.shutdownCh)

		for _, ch := range channels {
			_ = ch.Close()
		}

		_ = m.transport.Close()
	})

	<-m.readerDone

	return nil
}
