package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

func noBackoff(d *Downloader) {
	d.backoff = func(int) time.Duration { return 0 }
}

func TestDownloaderDownload(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{
			name:       "successful_download",
			statusCode: http.StatusOK,
			body:       "test binary content",
		},
		{
			name:       "404_not_found",
			statusCode: http.StatusNotFound,
			body:       "not found",
			wantKind:   apperr.KindNotFound,
			wantErr:    true,
		},
		{
			name:       "500_server_error",
			statusCode: http.StatusInternalServerError,
			body:       "server error",
			wantKind:   apperr.KindNetwork,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			destPath := filepath.Join(t.TempDir(), "test-file")
			result, err := NewDownloader().Download(context.Background(), server.URL, destPath, FetchOptions{})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if got := apperr.KindOf(err); got != tt.wantKind {
					t.Errorf("kind = %v, want %v", got, tt.wantKind)
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Error("failed download left a file behind")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Cached {
				t.Error("fresh download reported as cached")
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}
			if string(content) != tt.body {
				t.Errorf("content mismatch:\ngot:  %q\nwant: %q", string(content), tt.body)
			}
		})
	}
}

func TestDownloaderNoRetryByDefault(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewDownloader().Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"), FetchOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestDownloaderRetryLogic(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	downloader := NewDownloader(WithRetries(3), noBackoff)
	destPath := filepath.Join(t.TempDir(), "test-file")
	if _, err := downloader.Download(context.Background(), server.URL, destPath, FetchOptions{}); err != nil {
		t.Fatalf("expected success after retries, got error: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDownloaderDoesNotRetryNotFound(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewDownloader(WithRetries(3), noBackoff).Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"), FetchOptions{})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestDownloaderContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewDownloader().Download(ctx, server.URL, filepath.Join(t.TempDir(), "f"), FetchOptions{})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestDownloaderReusesSameSizedFile(t *testing.T) {
	body := "0123456789"
	var served int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&served, 1)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "walrus")
	if err := os.WriteFile(destPath, []byte("ABCDEFGHIJ"), 0755); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	result, err := NewDownloader().Download(context.Background(), server.URL, destPath, FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Cached {
		t.Error("expected same-sized file to be reused")
	}
	if content, _ := os.ReadFile(destPath); string(content) != "ABCDEFGHIJ" {
		t.Errorf("cached file was overwritten: %q", content)
	}

	result, err = NewDownloader().Download(context.Background(), server.URL, destPath, FetchOptions{Force: true})
	if err != nil {
		t.Fatalf("forced download: %v", err)
	}
	if result.Cached {
		t.Error("forced download reported as cached")
	}
	if content, _ := os.ReadFile(destPath); string(content) != body {
		t.Errorf("forced download content = %q", content)
	}
}

func TestDownloaderStoredContentLength(t *testing.T) {
	resp := &http.Response{ContentLength: -1, Header: http.Header{}}
	resp.Header.Set(storedLengthHeader, "4096")
	if got := announcedLength(resp); got != 4096 {
		t.Errorf("announcedLength = %d, want 4096", got)
	}

	resp = &http.Response{ContentLength: 12, Header: http.Header{}}
	if got := announcedLength(resp); got != 12 {
		t.Errorf("announcedLength = %d, want 12", got)
	}
}

func TestDownloaderVerifiesCompanion(t *testing.T) {
	body := []byte("archive")
	good := sha256Hex(body)

	tests := []struct {
		name     string
		checksum string
		wantErr  bool
	}{
		{name: "match", checksum: good + "  sui.tgz\n"},
		{name: "mismatch", checksum: sha256Hex([]byte("tampered")) + "  sui.tgz\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/sui.tgz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(body) })
			mux.HandleFunc("/sui.tgz.sha256", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(tt.checksum)) })
			server := httptest.NewServer(mux)
			defer server.Close()

			destPath := filepath.Join(t.TempDir(), "sui.tgz")
			result, err := NewDownloader().Download(context.Background(), server.URL+"/sui.tgz", destPath,
				FetchOptions{ChecksumURL: server.URL + "/sui.tgz.sha256"})

			if tt.wantErr {
				if !errors.Is(err, apperr.ErrIntegrity) {
					t.Fatalf("expected integrity error, got %v", err)
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Error("mismatched download was kept")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Verified != VerificationSHA256 {
				t.Errorf("Verified = %v, want SHA256", result.Verified)
			}
		})
	}
}

func TestDownloaderProgressAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("token leaked to non-GitHub host")
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	var last int64
	downloader := NewDownloader(WithToken("secret"), WithProgress(func(name string, written, total int64) {
		last = written
	}))
	if _, err := downloader.Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "p"), FetchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != int64(len("payload")) {
		t.Errorf("progress reported %d bytes", last)
	}

	if !isGitHubHost("https://github.com/MystenLabs/sui/releases/download/x") {
		t.Error("github.com should receive the token")
	}
	if isGitHubHost("https://storage.googleapis.com/mysten-walrus-binaries/walrus") {
		t.Error("storage host should not receive the token")
	}
}

func TestDownloaderCreatesNestedDirectories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test content"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "a", "b", "c", "file")
	if _, err := NewDownloader().Download(context.Background(), server.URL, destPath, FetchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(destPath); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
