// Package registry persists the digest-to-extraction-path mapping for
// images the gateway has already unpacked (pkg/imagepipeline). This
// supplements spec.md §4.9, which describes the unpack/chunk pipeline
// but leaves any cross-request memoization unspecified. The CM
// download job does not consult the registry: cmd/messageproxy opens
// it and uses it only for a readiness check.
package registry
