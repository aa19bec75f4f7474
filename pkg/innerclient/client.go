package innerclient

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// ReconnectInterval is the delay between failed inner-connect attempts
// (original_source/src/cmclient/cmclient.cpp and
// iamclient/publicnodeclient.cpp both use a 3s reconnect interval).
const ReconnectInterval = 3 * time.Second

// DialTimeout bounds a single connect attempt across every configured
// credential source.
const DialTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	// Target is the inner service's dial target (host:port).
	Target string

	// Method is the full gRPC method path of the bidirectional stream,
	// e.g. "/cm.v1.CMService/RegisterSM".
	Method string

	// Credentials is tried in order at the start of every connect
	// attempt; the first source to both build credentials and
	// establish a stream wins.
	Credentials []CredentialSource

	// Cacheable decides which outgoing messages are retained across a
	// dropped connection for replay on the next stream.
	Cacheable CacheablePredicate

	// CacheCapacity bounds the reconnect cache; zero uses
	// defaultCacheCapacity.
	CacheCapacity int

	// ReconnectInterval overrides the default 3s reconnect delay.
	ReconnectInterval time.Duration

	// DialTimeout overrides the default per-attempt dial timeout.
	DialTimeout time.Duration

	Logger *slog.Logger
}

// Client is the Inner gRPC Client (spec.md §4.5): a Handler
// implementation driving one bidirectional gRPC stream with an
// internal, outer-transport-independent reconnect loop.
type Client struct {
	target string
	method string

	credentials       []CredentialSource
	cacheable         CacheablePredicate
	reconnectInterval time.Duration
	dialTimeout       time.Duration
	logger            *slog.Logger

	outgoing *queue
	incoming *queue
	cache    *reconnectCache

	mu           sync.Mutex
	cond         *sync.Cond
	state        State
	stream       grpc.ClientStream
	cc           *grpc.ClientConn
	streamCancel context.CancelFunc

	startOnce    sync.Once
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
}

// New constructs a Client from cfg. It does not connect until
// OnConnected is called.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reconnectInterval := cfg.ReconnectInterval
	if reconnectInterval <= 0 {
		reconnectInterval = ReconnectInterval
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DialTimeout
	}
	cacheable := cfg.Cacheable
	if cacheable == nil {
		cacheable = func([]byte) bool { return false }
	}

	c := &Client{
		target:            cfg.Target,
		method:            cfg.Method,
		credentials:       cfg.Credentials,
		cacheable:         cacheable,
		reconnectInterval: reconnectInterval,
		dialTimeout:       dialTimeout,
		logger:            logger.With("component", "innerclient", "method", cfg.Method),
		outgoing:          newQueue(),
		incoming:          newQueue(),
		cache:             newReconnectCache(cfg.CacheCapacity),
		shutdownCh:        make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// OnConnected starts the client's reconnect loop. Idempotent.
func (c *Client) OnConnected() {
	c.startOnce.Do(func() {
		c.setState(StateConnecting)
		c.wg.Add(2)
		go c.run()
		go c.pumpOutgoing()
	})
}

// OnDisconnected permanently shuts the client down.
func (c *Client) OnDisconnected() {
	c.shutdownOnce.Do(func() {
		c.setState(StateShutdown)
		close(c.shutdownCh)
		c.outgoing.Close()
		c.incoming.Close()
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})

	c.wg.Wait()

	c.mu.Lock()
	cc := c.cc
	c.cc = nil
	c.mu.Unlock()
	if cc != nil {
		_ = cc.Close()
	}
}

// Send enqueues payload for delivery on the inner stream.
func (c *Client) Send(payload []byte) error {
	c.outgoing.Enqueue(payload)
	return nil
}

// Receive blocks for the next inner-service message.
func (c *Client) Receive() ([]byte, error) {
	return c.incoming.Dequeue()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State reports the client's current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// run is the connect/reconnect task: it owns dialing, establishing the
// stream, and receiving. It runs independently of the outer
// transport's own connection lifecycle.
func (c *Client) run() {
	defer c.wg.Done()

	for {
		if c.isShutdown() {
			return
		}

		stream, cc, err := c.connect()
		if err != nil {
			c.logger.Warn("inner connect failed, retrying", "error", err, "retry_in", c.reconnectInterval)
			if !c.sleepOrShutdown(c.reconnectInterval) {
				return
			}
			continue
		}

		c.setStream(stream, cc)
		c.recvLoop(stream)
		c.clearStream()

		if c.isShutdown() {
			return
		}
		if !c.sleepOrShutdown(c.reconnectInterval) {
			return
		}
	}
}

func (c *Client) isShutdown() bool {
	select {
	case <-c.shutdownCh:
		return true
	default:
		return false
	}
}

func (c *Client) sleepOrShutdown(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-c.shutdownCh:
		return false
	}
}

// connect tries every configured credential source in order, returning
// the first stream successfully established.
func (c *Client) connect() (grpc.ClientStream, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()

	if len(c.credentials) == 0 {
		return nil, nil, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "innerclient.connect", "no credential sources configured")
	}

	var lastErr error
	for _, src := range c.credentials {
		creds, err := src.TransportCredentials()
		if err != nil {
			lastErr = err
			continue
		}

		cc, err := grpc.DialContext(dialCtx, c.target,
			grpc.WithTransportCredentials(creds),
			grpc.WithBlock(),
		)
		if err != nil {
			lastErr = gatewayerrors.Wrap(gatewayerrors.KindRuntime, "innerclient.connect", err)
			continue
		}

		streamCtx, streamCancel := context.WithCancel(context.Background())
		stream, err := cc.NewStream(streamCtx, &grpc.StreamDesc{
			StreamName:    c.method,
			ClientStreams: true,
			ServerStreams: true,
		}, c.method)
		if err != nil {
			streamCancel()
			_ = cc.Close()
			lastErr = gatewayerrors.Wrap(gatewayerrors.KindRuntime, "innerclient.connect", err)
			continue
		}

		c.mu.Lock()
		c.streamCancel = streamCancel
		c.mu.Unlock()

		c.logger.Info("inner stream established", "credential", src.Name())
		return stream, cc, nil
	}

	return nil, nil, lastErr
}

func (c *Client) setStream(stream grpc.ClientStream, cc *grpc.ClientConn) {
	c.mu.Lock()
	c.stream = stream
	c.cc = cc
	c.state = StateStreaming
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *Client) clearStream() {
	c.mu.Lock()
	c.stream = nil
	if c.streamCancel != nil {
		c.streamCancel()
		c.streamCancel = nil
	}
	cc := c.cc
	c.cc = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if cc != nil {
		_ = cc.Close()
	}
}

func (c *Client) currentStream() grpc.ClientStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// waitForStream blocks until a stream is available or the client is
// shut down.
func (c *Client) waitForStream() (grpc.ClientStream, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.stream == nil {
		select {
		case <-c.shutdownCh:
			return nil, false
		default:
		}
		c.cond.Wait()
	}
	return c.stream, true
}

func (c *Client) recvLoop(stream grpc.ClientStream) {
	for {
		msg := &wrapperspb.BytesValue{}
		if err := stream.RecvMsg(msg); err != nil {
			if err != io.EOF {
				c.logger.Warn("inner stream recv failed", "error", err)
			}
			return
		}
		c.incoming.Enqueue(msg.GetValue())
	}
}

// pumpOutgoing is the sole writer of the inner stream: it replays the
// reconnect cache immediately after each new stream, then forwards
// freshly queued messages until the stream is superseded or the
// client shuts down.
func (c *Client) pumpOutgoing() {
	defer c.wg.Done()

	for {
		stream, ok := c.waitForStream()
		if !ok {
			return
		}

		if !c.replay(stream) {
			continue
		}
		if c.drainOutgoing(stream) {
			return
		}
	}
}

func (c *Client) replay(stream grpc.ClientStream) bool {
	pending := c.cache.Drain()
	for i, payload := range pending {
		if err := stream.SendMsg(&wrapperspb.BytesValue{Value: payload}); err != nil {
			c.logger.Warn("reconnect cache replay failed", "error", err)
			for _, remaining := range pending[i:] {
				c.cache.Add(remaining)
			}
			return false
		}
	}
	return true
}

// drainOutgoing returns true when the client is shutting down for
// good, false when a newer stream should be picked up.
func (c *Client) drainOutgoing(stream grpc.ClientStream) bool {
	for {
		payload, err := c.outgoing.Dequeue()
		if err != nil {
			return true
		}

		if c.currentStream() != stream {
			if c.cacheable(payload) {
				c.cache.Add(payload)
			}
			return false
		}

		if err := stream.SendMsg(&wrapperspb.BytesValue{Value: payload}); err != nil {
			c.logger.Warn("outgoing send failed", "error", err)
			if c.cacheable(payload) {
				c.cache.Add(payload)
			}
			return false
		}
	}
}
