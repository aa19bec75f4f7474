// Package server provides the gateway's internal observability HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/telemetry/health"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/metrics"
)

// Config configures the observability server's HTTP listener. It has no
// relationship to the outer/inner protocol ports (spec.md §6 IAMConfig /
// CMConfig) — this listener serves only /health, /ready, /version, and
// /metrics for operators and orchestrators.
type Config struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the gateway's internal HTTP server exposing liveness,
// readiness, version, and Prometheus metrics endpoints. It never sees
// outer or inner protocol traffic — that flows entirely through
// pkg/outermux, pkg/innerclient, and the endpoint runners.
type Server struct {
	config       Config
	checker      *health.Checker
	collector    *metrics.Collector
	buildInfo    health.VersionInfo
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an observability server. checker and collector are shared
// with the rest of the process so that component checks registered
// elsewhere (endpoint runners, image registry) are reflected in /ready
// and everything registered on the collector's registry is exposed on
// /metrics.
func New(cfg Config, checker *health.Checker, collector *metrics.Collector, version, commit, buildTime string) *Server {
	return &Server{
		config:       cfg,
		checker:      checker,
		collector:    collector,
		buildInfo:    health.VersionInfo{Version: version, Commit: commit, BuildTime: buildTime},
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, either via the
// given context, a SIGTERM/SIGINT, or an explicit call to Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("observability server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting observability server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("observability server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down observability server")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during observability server shutdown", "error", err)
				shutdownErr = fmt.Errorf("observability server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("observability server stopped")
	})

	return shutdownErr
}

// routes configures the /health, /ready, /version, and /metrics endpoints.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	handlers := s.checker.CreateHandlers(s.buildInfo.Version, s.buildInfo.Commit, s.buildInfo.BuildTime)
	mux.HandleFunc("/health", handlers.LivenessHandler)
	mux.HandleFunc("/ready", handlers.ReadinessHandler)
	mux.HandleFunc("/version", handlers.VersionHandler)

	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}

	return mux
}

// Handler returns the configured HTTP handler, for use in tests without
// binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// IsRunning returns true if the server is currently accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
