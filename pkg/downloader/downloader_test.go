package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloader_FileScheme(t *testing.T) {
	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "source.txt")
	if err := os.WriteFile(srcPath, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(tmp, "downloads")
	d, err := New(destDir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := d.Download(context.Background(), "file://"+srcPath)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want hello", data)
	}
}

func TestDownloader_HTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	d, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := d.Download(context.Background(), srv.URL+"/service.tar")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want payload", data)
	}
}

func TestDownloader_IdempotentDestinationPath(t *testing.T) {
	d, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p1, err := d.destinationPath("https://example.com/images/service.tar")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := d.destinationPath("https://example.com/images/service.tar")
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Errorf("destinationPath not stable: %q != %q", p1, p2)
	}
}

func TestDownloader_HTTPFailureAfterRetriesReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.initialBackoff = time.Millisecond
	d.maxBackoff = 2 * time.Millisecond

	if _, err := d.Download(context.Background(), srv.URL+"/missing.tar"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}
