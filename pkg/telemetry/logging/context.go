package logging

import (
	"context"
)

// Context keys for fields common to a gateway log line.
type contextKey string

const (
	// RequestIDKey is the context key for an inner-protocol request ID
	// (e.g. an image_content_request's RequestID).
	RequestIDKey contextKey = "request_id"

	// ComponentKey is the context key for the subsystem emitting the
	// log line (e.g. "cmrunner", "iamrunner", "downloader").
	ComponentKey contextKey = "component"

	// PortKey is the context key for the mux port a channel is bound
	// to.
	PortKey contextKey = "port"

	// ConnectionIDKey is the context key for a secure channel's
	// handshake attempt, distinguishing reconnects in a log stream.
	ConnectionIDKey contextKey = "connection_id"

	// DigestKey is the context key for an image content digest.
	DigestKey contextKey = "digest"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithComponent adds a component name to the context.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentKey, component)
}

// GetComponent retrieves the component name from the context.
func GetComponent(ctx context.Context) string {
	if component, ok := ctx.Value(ComponentKey).(string); ok {
		return component
	}
	return ""
}

// WithPort adds a mux port number to the context.
func WithPort(ctx context.Context, port uint32) context.Context {
	return context.WithValue(ctx, PortKey, port)
}

// GetPort retrieves the mux port number from the context.
func GetPort(ctx context.Context) (uint32, bool) {
	port, ok := ctx.Value(PortKey).(uint32)
	return port, ok
}

// WithConnectionID adds a connection attempt identifier to the context.
func WithConnectionID(ctx context.Context, connectionID string) context.Context {
	return context.WithValue(ctx, ConnectionIDKey, connectionID)
}

// GetConnectionID retrieves the connection attempt identifier from the
// context.
func GetConnectionID(ctx context.Context) string {
	if connectionID, ok := ctx.Value(ConnectionIDKey).(string); ok {
		return connectionID
	}
	return ""
}

// WithDigest adds an image content digest to the context.
func WithDigest(ctx context.Context, digest string) context.Context {
	return context.WithValue(ctx, DigestKey, digest)
}

// GetDigest retrieves the image content digest from the context.
func GetDigest(ctx context.Context) string {
	if digest, ok := ctx.Value(DigestKey).(string); ok {
		return digest
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if component := GetComponent(ctx); component != "" {
		fields = append(fields, "component", component)
	}
	if port, ok := GetPort(ctx); ok {
		fields = append(fields, "port", port)
	}
	if connectionID := GetConnectionID(ctx); connectionID != "" {
		fields = append(fields, "connection_id", connectionID)
	}
	if digest := GetDigest(ctx); digest != "" {
		fields = append(fields, "digest", digest)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
