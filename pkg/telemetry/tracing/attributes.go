package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - net.*: Network-related attributes
//   - rpc.*: RPC-related attributes
//
// Custom attribute keys use the "messageproxy.*" namespace:
//   - messageproxy.component: long-lived worker name (cmrunner, iamrunner, downloader, ...)
//   - messageproxy.port: outer mux port
//   - messageproxy.digest: image content digest

// Common attribute keys used throughout the system
const (
	// Frame/channel attributes
	AttrComponent = "messageproxy.component"
	AttrPort      = "messageproxy.port"
	AttrDirection = "messageproxy.direction"

	// Request/connection attributes
	AttrConnectionID = "messageproxy.connection_id"
	AttrRequestID    = "messageproxy.request_id"

	// Frame size attributes
	AttrFrameSizeBytes = "messageproxy.frame.size_bytes"

	// Download attributes
	AttrDigest         = "messageproxy.download.digest"
	AttrDownloadStatus = "messageproxy.download.status"
	AttrBytesFetched   = "messageproxy.download.bytes"

	// Error attributes
	AttrErrorType    = "messageproxy.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration   = "messageproxy.duration_ms"
	AttrRetryCount = "messageproxy.retry_count"
)

// SetComponentAttributes sets component/port attributes on a span,
// identifying which long-lived worker owns the span.
//
// Example:
//
//	SetComponentAttributes(span, "cmrunner", 2)
func SetComponentAttributes(span trace.Span, component string, port uint32) {
	span.SetAttributes(
		attribute.String(AttrComponent, component),
		attribute.Int64(AttrPort, int64(port)),
	)
}

// SetFrameAttributes sets frame-relaying attributes on a span.
//
// Example:
//
//	SetFrameAttributes(span, "outbound", 512)
func SetFrameAttributes(span trace.Span, direction string, sizeBytes int) {
	span.SetAttributes(
		attribute.String(AttrDirection, direction),
		attribute.Int(AttrFrameSizeBytes, sizeBytes),
	)
}

// SetConnectionAttributes sets connection-related attributes on a span.
//
// Example:
//
//	SetConnectionAttributes(span, "req-123")
func SetConnectionAttributes(span trace.Span, connectionID string) {
	if connectionID != "" {
		span.SetAttributes(attribute.String(AttrConnectionID, connectionID))
	}
}

// SetDownloadAttributes sets download-related attributes on a span.
//
// Example:
//
//	SetDownloadAttributes(span, "sha256:abc123", "success", 4096)
func SetDownloadAttributes(span trace.Span, digest, status string, bytesFetched int64) {
	span.SetAttributes(
		attribute.String(AttrDigest, digest),
		attribute.String(AttrDownloadStatus, status),
		attribute.Int64(AttrBytesFetched, bytesFetched),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "checksum_mismatch")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "reconnect_attempted",
//	    attribute.String("component", "cmrunner"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around span.RecordError for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithComponent adds component and port attributes.
func (ab *AttributeBuilder) WithComponent(component string, port uint32) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrComponent, component),
		attribute.Int64(AttrPort, int64(port)),
	)
	return ab
}

// WithFrame adds frame-relaying attributes.
func (ab *AttributeBuilder) WithFrame(direction string, sizeBytes int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrDirection, direction),
		attribute.Int(AttrFrameSizeBytes, sizeBytes),
	)
	return ab
}

// WithDownload adds download attributes.
func (ab *AttributeBuilder) WithDownload(digest, status string, bytesFetched int64) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrDigest, digest),
		attribute.String(AttrDownloadStatus, status),
		attribute.Int64(AttrBytesFetched, bytesFetched),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
