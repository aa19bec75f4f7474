package innerclient

// Handler is the contract an endpoint runner drives an inner gRPC
// client through (spec.md §4.5). OnConnected starts the client's
// independent connect/reconnect loop and is idempotent; OnDisconnected
// is the terminal shutdown, called once when the runner itself is
// torn down, not on every transient inner-stream drop (those are
// handled internally by the client's own reconnect loop).
type Handler interface {
	// OnConnected transitions the client out of Idle and starts its
	// reconnect loop. Calling it more than once has no further effect.
	OnConnected()

	// OnDisconnected permanently shuts the client down, closing its
	// queues and any live stream. It blocks until both internal tasks
	// have exited.
	OnDisconnected()

	// Send enqueues payload for delivery to the inner service.
	Send(payload []byte) error

	// Receive blocks for the next message from the inner service, or
	// returns a closed error once OnDisconnected has been called.
	Receive() ([]byte, error)
}

// State is the inner client's connection state (spec.md §4.5).
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateDisconnected
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDisconnected:
		return "disconnected"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
