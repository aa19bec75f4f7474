// Package server provides the gateway's internal observability HTTP server.
//
// This package does not carry outer or inner protocol traffic. It is the
// same "top-level orchestrator with graceful shutdown" shape the rest of
// this codebase's HTTP-facing code uses, retargeted at a single concern:
// exposing liveness, readiness, version, and Prometheus metrics endpoints
// for operators and orchestration systems.
//
// # Architecture
//
// The server package:
//   - Sets up the /health, /ready, /version, /metrics routes
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("registry", func(ctx context.Context) error {
//	    _, _, err := imgRegistry.Lookup("healthcheck")
//	    return err
//	})
//
//	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
//
//	srv := server.New(server.Config{
//	    ListenAddress:   ":9090",
//	    ReadTimeout:     5 * time.Second,
//	    WriteTimeout:    5 * time.Second,
//	    IdleTimeout:     60 * time.Second,
//	    ShutdownTimeout: 10 * time.Second,
//	}, checker, collector, "1.0.0", "abc123", "2026-08-06")
//
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving SIGTERM
// or SIGINT, or programmatically via Shutdown:
//
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// # Routes
//
//   - GET /health - Liveness probe (always returns 200 while the process runs)
//   - GET /ready - Readiness probe (aggregates all registered component checks)
//   - GET /version - Build version information
//   - GET /metrics - Prometheus metrics exposition
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
