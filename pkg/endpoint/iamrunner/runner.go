package iamrunner

import (
	"log/slog"
	"sync"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/innerclient"
	"github.com/edge-gateway/messageproxy/pkg/innerframe"
)

// ConnectionTimeout is the backoff between (re)connect attempts on a
// secure channel (spec.md §4.6's cConnectionTimeout, reused here since
// §4.7 describes the same connect-loop shape for a secure channel).
const ConnectionTimeout = 3 * time.Second

// Connector is implemented by channels that need an explicit handshake
// before they carry traffic (securechannel.SecureChannel). A plain
// open muxchannel.Channel does not implement it and is treated as
// already connected.
type Connector interface {
	Connect() error
}

// Channel is the minimal surface the IAM Endpoint Runner needs from
// whatever transport it is given — a raw open channel or a
// securechannel.SecureChannel, both of which satisfy it.
type Channel interface {
	innerframe.ReadWriter
	Close() error
}

// Runner is the IAM Endpoint Runner (spec.md §4.7): a plain
// bidirectional relay between a single Channel and the inner IAM gRPC
// client, with no peek-routing, no clock-sync, and no downloads.
type Runner struct {
	channel Channel
	handler innerclient.Handler
	logger  *slog.Logger

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
}

// New constructs a Runner. handler is typically an *innerclient.Client
// built with innerclient.NewIAM.
func New(channel Channel, handler innerclient.Handler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		channel:    channel,
		handler:    handler,
		logger:     logger.With("component", "iamrunner"),
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the connect loop.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop shuts the runner down and waits for its tasks to exit.
func (r *Runner) Stop() {
	r.shutdownOnce.Do(func() {
		close(r.shutdownCh)
		_ = r.channel.Close()
	})
	r.handler.OnDisconnected()
	r.wg.Wait()
}

func (r *Runner) isShutdown() bool {
	select {
	case <-r.shutdownCh:
		return true
	default:
		return false
	}
}

func (r *Runner) sleepOrShutdown(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-r.shutdownCh:
		return false
	}
}

func (r *Runner) run() {
	defer r.wg.Done()

	for {
		if r.isShutdown() {
			return
		}

		if connector, ok := r.channel.(Connector); ok {
			if err := connector.Connect(); err != nil {
				r.logger.Warn("channel connect failed, retrying", "error", err, "retry_in", ConnectionTimeout)
				if !r.sleepOrShutdown(ConnectionTimeout) {
					return
				}
				continue
			}
		}

		r.logger.Info("channel connected")
		r.handler.OnConnected()

		var pumpWG sync.WaitGroup
		pumpWG.Add(2)
		go func() { defer pumpWG.Done(); r.readPump() }()
		go func() { defer pumpWG.Done(); r.writePump() }()
		pumpWG.Wait()

		if r.isShutdown() {
			return
		}
		if !r.sleepOrShutdown(ConnectionTimeout) {
			return
		}
	}
}

func (r *Runner) readPump() {
	for {
		msg, err := innerframe.ReadMessage(r.channel)
		if err != nil {
			if !r.isShutdown() {
				r.logger.Warn("channel read failed", "error", err)
			}
			return
		}
		if err := r.handler.Send(msg); err != nil {
			r.logger.Warn("forwarding to inner IAM client failed", "error", err)
		}
	}
}

func (r *Runner) writePump() {
	for {
		payload, err := r.handler.Receive()
		if err != nil {
			return
		}
		if err := innerframe.WriteMessage(r.channel, payload); err != nil {
			r.logger.Warn("channel write failed", "error", err)
			return
		}
	}
}
