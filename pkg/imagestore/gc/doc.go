// Package gc runs a scheduled sweep of the image store's extraction
// scratch directories (pkg/imagepipeline's per-request temp dirs under
// ImageStoreDir), removing anything older than a retention window on a
// cron schedule. This supplements spec.md §4.9, whose Non-goals leave
// image-store retention/GC unspecified — a long-running gateway still
// needs one so failed or abandoned extraction jobs don't accumulate.
package gc
