// Package downloader implements the retry-with-backoff fetcher
// (spec.md §4.8) that pulls a service image tarball into a local
// directory ahead of unpacking (pkg/imagepipeline). It supports
// file:// and http(s):// sources and resumes a partial download from
// the existing file's size on retry.
package downloader
