package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDownloadWritesFile(t *testing.T) {
	content := "prebuilt binary payload"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo_linux_x64.so")
	g := NewGroup(NewFetcher())

	result, err := g.Download(context.Background(), server.URL+"/libdemo_linux_x64.so", dest)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if result.Path != dest {
		t.Errorf("Path = %q, want %q", result.Path, dest)
	}
	if result.Cached {
		t.Error("Cached = true, want false for a fresh download")
	}
	if result.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", result.Size, len(content))
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != content {
		t.Errorf("file content = %q, want %q", string(data), content)
	}
}

func TestDownloadCreatesOutputDir(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "deeper", "libdemo.so")
	g := NewGroup(NewFetcher())

	if _, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination missing after download: %v", err)
	}
}

func TestDownloadCacheHit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte("from the network"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	if err := os.WriteFile(dest, []byte("already on disk"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	g := NewGroup(NewFetcher())
	result, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if !result.Cached {
		t.Error("Cached = false, want true for an existing destination")
	}
	if requests != 0 {
		t.Errorf("requests = %d, want 0 on a cache hit", requests)
	}

	// Existing content is trusted, not re-checked
	data, _ := os.ReadFile(dest)
	if string(data) != "already on disk" {
		t.Errorf("file content = %q, want %q", string(data), "already on disk")
	}
}

func TestDownloadCoalescesConcurrent(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("shared payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	g := NewGroup(NewFetcher())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = g.Download(context.Background(), server.URL+"/libdemo.so", dest)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("download %d failed: %v", i, err)
		}
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 for coalesced downloads", n)
	}
}

func TestDownloadDistinctDestinations(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	dir := t.TempDir()
	g := NewGroup(NewFetcher())

	for _, name := range []string{"liba.so", "libb.so"} {
		dest := filepath.Join(dir, name)
		if _, err := g.Download(context.Background(), server.URL+"/"+name, dest); err != nil {
			t.Fatalf("Download %s failed: %v", name, err)
		}
	}

	if n := requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2 for distinct destinations", n)
	}
}

func TestDownloadStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	g := NewGroup(NewFetcher())

	_, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Download = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}

	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("destination exists after a failed download")
	}
}

func sum256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func TestDownloadChecksumMatch(t *testing.T) {
	content := []byte("verified payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	g := NewGroup(NewFetcher())

	result, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest, WithSHA256(sum256(content)))
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if result.Cached {
		t.Error("Cached = true, want false")
	}
}

func TestDownloadChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tampered payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	g := NewGroup(NewFetcher())

	_, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest, WithSHA256(sum256([]byte("expected payload"))))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Download = %v, want ErrChecksumMismatch", err)
	}

	var checksumErr *ChecksumError
	if !errors.As(err, &checksumErr) {
		t.Fatalf("Download = %v, want *ChecksumError", err)
	}
	if checksumErr.Got != sum256([]byte("tampered payload")) {
		t.Errorf("Got = %q, want digest of the tampered payload", checksumErr.Got)
	}

	// The bad file must not survive as a future cache hit
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("mismatched file left on disk")
	}
}

func TestDownloadCachedChecksumMismatch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte("fresh payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	if err := os.WriteFile(dest, []byte("stale payload"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	g := NewGroup(NewFetcher())
	_, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest, WithSHA256(sum256([]byte("fresh payload"))))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Download = %v, want ErrChecksumMismatch", err)
	}

	// The stale file is removed so the next run re-downloads
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale file left on disk")
	}
	if requests != 0 {
		t.Errorf("requests = %d, want 0; verification happens before any fetch", requests)
	}
}

func TestDownloadUppercaseChecksum(t *testing.T) {
	content := []byte("payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "libdemo.so")
	g := NewGroup(NewFetcher())

	upper := strings.ToUpper(sum256(content))
	if _, err := g.Download(context.Background(), server.URL+"/libdemo.so", dest, WithSHA256(upper)); err != nil {
		t.Fatalf("Download failed with uppercase digest: %v", err)
	}
}
