package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// MaxAttempts is the total number of download attempts, the first one
// included, before giving up (spec.md §4.8).
const MaxAttempts = 3

// InitialBackoff and MaxBackoff bound the exponential backoff between
// attempts.
const (
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 5 * time.Second
)

// AttemptTimeout bounds a single connect/download attempt.
const AttemptTimeout = 10 * time.Second

// Downloader fetches a URL to a local file with retry and resume.
type Downloader struct {
	dir    string
	client *http.Client
	logger *slog.Logger

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New constructs a Downloader that stores fetched files under dir,
// creating it if missing.
func New(dir string, logger *slog.Logger) (*Downloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.New", err)
	}
	return &Downloader{
		dir:            dir,
		client:         &http.Client{},
		logger:         logger.With("component", "downloader"),
		maxAttempts:    MaxAttempts,
		initialBackoff: InitialBackoff,
		maxBackoff:     MaxBackoff,
	}, nil
}

// Download fetches rawURL, retrying up to MaxAttempts times with
// exponential backoff, and returns the local path it was written to.
// The destination file name is derived deterministically from the
// URL so repeated calls for the same URL resume rather than restart
// (spec.md §8: "download(url) is idempotent with respect to the
// destination path").
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	dest, err := d.destinationPath(rawURL)
	if err != nil {
		return "", err
	}

	backoff := d.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, AttemptTimeout)
		err := d.attempt(attemptCtx, rawURL, dest)
		cancel()
		if err == nil {
			return dest, nil
		}

		lastErr = err
		d.logger.Warn("download attempt failed", "url", rawURL, "attempt", attempt, "error", err)

		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", gatewayerrors.Wrap(gatewayerrors.KindTimeout, "downloader.Download", ctx.Err())
		}
		backoff *= 2
		if backoff > d.maxBackoff {
			backoff = d.maxBackoff
		}
	}

	return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.Download", lastErr)
}

// destinationPath derives a stable local file name for rawURL so
// retries and repeat requests land on the same partial/complete file.
func (d *Downloader) destinationPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "downloader.destinationPath", err)
	}

	base := filepath.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		base = "download"
	}
	sum := sha256.Sum256([]byte(rawURL))
	name := fmt.Sprintf("%s-%s", hex.EncodeToString(sum[:8]), base)
	return filepath.Join(d.dir, name), nil
}

func (d *Downloader) attempt(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "downloader.attempt", err)
	}

	if u.Scheme == "file" {
		return d.copyFile(u.Path, dest)
	}
	return d.httpFetch(ctx, rawURL, dest)
}

// copyFile satisfies a file:// source. It always writes the full
// content; local copies do not benefit from resume.
func (d *Downloader) copyFile(srcPath, dest string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.copyFile", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.copyFile", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.copyFile", err)
	}
	return nil
}

// httpFetch satisfies an http(s):// source, resuming from the current
// size of dest (if any) via a Range request.
func (d *Downloader) httpFetch(ctx context.Context, rawURL, dest string) error {
	var resumeFrom int64
	if info, err := os.Stat(dest); err == nil {
		resumeFrom = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "downloader.httpFetch", err)
	}
	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.httpFetch", err)
	}
	defer resp.Body.Close()

	openFlags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusPartialContent:
		openFlags |= os.O_APPEND
	case http.StatusOK:
		resumeFrom = 0
		openFlags |= os.O_TRUNC
	default:
		return gatewayerrors.New(gatewayerrors.KindRuntime, "downloader.httpFetch", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	out, err := os.OpenFile(dest, openFlags, 0o644)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.httpFetch", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "downloader.httpFetch", err)
	}
	return nil
}
