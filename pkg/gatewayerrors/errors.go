// Package gatewayerrors defines the error taxonomy shared by every
// package in the message-proxy gateway: framing, channels, the mux,
// secure channels, inner gRPC clients, endpoint runners, the
// downloader and the image pipeline.
package gatewayerrors

import "fmt"

// Kind classifies a gateway error into one of a small, closed set of
// categories so callers can branch on failure class without depending
// on package-specific error types.
type Kind int

const (
	// KindUnknown is the zero value; it should not be constructed directly.
	KindUnknown Kind = iota

	// KindClosed indicates the operation targeted a channel, queue or
	// stream that has been (or was concurrently) closed.
	KindClosed

	// KindTimeout indicates a bounded wait expired before the awaited
	// condition was satisfied.
	KindTimeout

	// KindRuntime indicates a failure in an underlying subsystem
	// (transport I/O, TLS handshake, gRPC transport) with no more
	// specific classification.
	KindRuntime

	// KindInvalidArgument indicates the caller supplied a value that
	// violates a documented precondition (e.g. an oversize frame).
	KindInvalidArgument

	// KindNotSupported indicates the operation is intentionally
	// unimplemented for the receiver (e.g. Mux.Write).
	KindNotSupported

	// KindNotFound indicates a lookup failed (e.g. unknown port).
	KindNotFound

	// KindAlreadyExist indicates a create-if-absent operation found an
	// existing entry (e.g. a channel already registered for a port).
	KindAlreadyExist
)

// String renders the Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindTimeout:
		return "timeout"
	case KindRuntime:
		return "runtime"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotSupported:
		return "not_supported"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExist:
		return "already_exist"
	default:
		return "unknown"
	}
}

// Error is the common error type returned across gateway packages.
// Op identifies the failing operation (e.g. "muxchannel.Read",
// "outermux.connect"), Message is a human-readable diagnostic, and
// Cause, when present, is the underlying error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the wrapped cause, if any, for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's Kind, so callers
// can write errors.Is(err, gatewayerrors.ErrClosed) without a type
// assertion.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*sentinelError)
	if !ok {
		return false
	}
	return sentinel.kind == e.Kind
}

type sentinelError struct {
	kind Kind
}

func (s *sentinelError) Error() string {
	return s.kind.String()
}

// Sentinel errors usable with errors.Is against any *Error of the
// matching Kind, mirroring the teacher's Err<Category> convention.
var (
	ErrClosed          = &sentinelError{kind: KindClosed}
	ErrTimeout         = &sentinelError{kind: KindTimeout}
	ErrRuntime         = &sentinelError{kind: KindRuntime}
	ErrInvalidArgument = &sentinelError{kind: KindInvalidArgument}
	ErrNotSupported    = &sentinelError{kind: KindNotSupported}
	ErrNotFound        = &sentinelError{kind: KindNotFound}
	ErrAlreadyExist    = &sentinelError{kind: KindAlreadyExist}
)

// New constructs an *Error for the given kind, operation and message.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an *Error for the given kind and operation, wrapping
// cause as the underlying diagnostic.
func Wrap(kind Kind, op string, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause}
}

// IsKind reports whether err is a *Error (directly or via Unwrap) of
// the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
