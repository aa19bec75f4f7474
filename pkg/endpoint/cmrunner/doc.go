// Package cmrunner implements the CM Endpoint Runner (spec.md §4.6):
// it owns an open (unencrypted) Channel and a secure Channel toward
// the outer transport, answers clock-sync requests on the open side,
// starts a download job for image-content requests arriving on the
// secure side, and pumps everything else through the inner CM gRPC
// client (pkg/innerclient).
package cmrunner
