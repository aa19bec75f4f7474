package gc

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// Config controls a Sweeper's retention policy.
type Config struct {
	// StoreDir is the image store root whose immediate subdirectories
	// are candidate extraction scratch dirs (pkg/imagepipeline).
	StoreDir string

	// MaxAge is how long an extraction directory may sit unmodified
	// before the sweeper removes it.
	MaxAge time.Duration
}

// Sweeper removes stale image extraction directories.
type Sweeper struct {
	config Config
	logger *slog.Logger
}

// NewSweeper constructs a Sweeper for config.
func NewSweeper(config Config, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{config: config, logger: logger.With("component", "imagestore.gc")}
}

// Sweep removes every immediate subdirectory of StoreDir whose
// modification time is older than MaxAge, returning the count removed.
// Plain files directly under StoreDir are left in place.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.config.StoreDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "gc.Sweep", err)
	}

	cutoff := time.Now().Add(-s.config.MaxAge)
	removed := 0

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return removed, gatewayerrors.Wrap(gatewayerrors.KindTimeout, "gc.Sweep", ctx.Err())
		default:
		}

		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(s.config.StoreDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("stat failed during sweep", "path", path, "error", err)
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("failed to remove stale extraction directory", "path", path, "error", err)
			continue
		}
		s.logger.Info("removed stale extraction directory", "path", path, "age", time.Since(info.ModTime()))
		removed++
	}

	return removed, nil
}
