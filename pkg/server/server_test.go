package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edge-gateway/messageproxy/pkg/telemetry/health"
	"github.com/edge-gateway/messageproxy/pkg/telemetry/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestServer_RoutesHealthReadyVersion(t *testing.T) {
	checker := health.New(time.Second)
	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, prometheus.NewRegistry())

	srv := New(Config{
		ListenAddress:   ":0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}, checker, collector, "1.0.0", "abc123", "2026-08-06")

	handler := srv.Handler()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s: got status %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_ReadyReflectsRegisteredCheck(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("cmrunner", func(ctx context.Context) error { return nil })

	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, prometheus.NewRegistry())
	srv := New(Config{ListenAddress: ":0", ShutdownTimeout: time.Second}, checker, collector, "1.0.0", "abc", "now")

	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Code)
	}
}

func TestServer_ReadyDegradesOnFailingCheck(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("cmrunner", func(ctx context.Context) error {
		return context.DeadlineExceeded
	})

	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, prometheus.NewRegistry())
	srv := New(Config{ListenAddress: ":0", ShutdownTimeout: time.Second}, checker, collector, "1.0.0", "abc", "now")

	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503", rec.Code)
	}
}

func TestServer_IsRunning(t *testing.T) {
	checker := health.New(time.Second)
	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, prometheus.NewRegistry())
	srv := New(Config{ListenAddress: ":0", ShutdownTimeout: time.Second}, checker, collector, "1.0.0", "abc", "now")

	if srv.IsRunning() {
		t.Error("new server should not report running before Start()")
	}
}
