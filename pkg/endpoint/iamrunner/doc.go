// Package iamrunner implements the IAM Endpoint Runner (spec.md §4.7):
// a plain bidirectional relay between one Channel (open or secure) and
// the inner IAM gRPC client (pkg/innerclient), with no peek-routing,
// no clock sync, and no image downloads.
package iamrunner
