// Package tracing provides OpenTelemetry distributed tracing for the
// message-proxy gateway.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span creation,
// and trace export to an OTLP collector. It provides visibility into frame
// relaying and image downloads across the outer/inner boundary with minimal
// overhead (<100µs per span).
//
// # Distributed Tracing
//
// Each span records:
//   - Operation name and duration
//   - Attributes (key-value pairs)
//   - Events (timestamped logs within the span)
//   - Trace context (trace ID, span ID, sampling decision)
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/).
// The gateway has no HTTP boundary of its own and no gateway package calls
// the propagation helpers; they read and write these headers on an
// http.Header or a string map:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces (tracing disabled)
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	tracer, err := tracing.New(&tracing.Config{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Exporter:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "messageproxy-gateway",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "messageproxy.outermux.frame")
//	defer span.End()
//
//	tracing.SetComponentAttributes(span, "cmrunner", 2)
//	tracing.SetFrameAttributes(span, "outbound", len(payload))
//
// # Span Hierarchy
//
// No gateway package starts spans. A caller that starts spans with these
// names gets a hierarchy following the frame's path through the gateway:
//
//	messageproxy.outermux.frame (2ms)
//	├── messageproxy.securechannel.decrypt (0.2ms)
//	└── messageproxy.innerclient.send (1.5ms)
//
// A separate hierarchy covers an image download:
//
//	messageproxy.downloader.fetch (9.9s)
//	├── messageproxy.downloader.retry (attempt=1)
//	└── messageproxy.imagepipeline.unpack (300ms)
//
// # Performance
//
// The tracing package is designed for minimal overhead:
//   - Span creation: <100µs per span
//   - Context propagation: <10µs
//   - Sampling decision: <1µs
//   - When disabled: <1µs (noop span)
//
// # Trace Exporter
//
// The OTLP gRPC exporter is supported:
//
//	telemetry:
//	  tracing:
//	    exporter: otlp
//	    endpoint: localhost:4317
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// # Attribute Helpers
//
// Common attributes can be set using helper functions:
//
//	tracing.SetComponentAttributes(span, "cmrunner", 2)
//	tracing.SetFrameAttributes(span, "outbound", 512)
//	tracing.SetDownloadAttributes(span, digest, "success", 4096)
//	tracing.SetErrorAttributes(span, err, "checksum_mismatch")
package tracing
