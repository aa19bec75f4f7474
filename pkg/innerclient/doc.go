// Package innerclient implements the Inner gRPC Client (spec.md §4.5):
// a bidirectional-streaming gRPC client that sits between an endpoint
// runner (pkg/endpoint/cmrunner, pkg/endpoint/iamrunner) and a trusted
// inner service (CM or IAM). It owns its own reconnect loop,
// independent of the outer transport's lifecycle, replays a bounded
// FIFO of cache-worthy outgoing messages after every reconnect, and
// exposes the runner-facing contract as the Handler interface.
package innerclient
