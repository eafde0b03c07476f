package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/config"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 300 * time.Second
	// DefaultRetries is the default number of extra download attempts
	DefaultRetries = 0
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "suiup"

	// storedLengthHeader carries the object size on Google Cloud Storage
	// responses that omit Content-Length.
	storedLengthHeader = "x-goog-stored-content-length"
)

// Downloader fetches artifacts over HTTP into local files.
type Downloader struct {
	client    *http.Client
	userAgent string
	token     string
	retries   int
	backoff   func(attempt int) time.Duration
	progress  ProgressFunc
	verifier  *Verifier
	logger    config.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) DownloaderOption {
	return func(dl *Downloader) {
		if d > 0 {
			dl.client.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed download is retried.
func WithRetries(n int) DownloaderOption {
	return func(dl *Downloader) {
		if n >= 0 {
			dl.retries = n
		}
	}
}

// WithToken sends "Authorization: token <t>" to github.com hosts.
func WithToken(token string) DownloaderOption {
	return func(dl *Downloader) {
		dl.token = token
	}
}

// WithProgress reports bytes written while downloading.
func WithProgress(fn ProgressFunc) DownloaderOption {
	return func(dl *Downloader) {
		dl.progress = fn
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) DownloaderOption {
	return func(dl *Downloader) {
		dl.client = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l config.Logger) DownloaderOption {
	return func(dl *Downloader) {
		dl.logger = l
	}
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
		verifier: NewVerifier(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = config.OrNop(d.logger)
	return d
}

// Download fetches url into destPath. An existing file whose size matches
// the announced length, and which passes its companion checksum, is reused.
// After a fresh download the companion checksum, if any, must match.
func (d *Downloader) Download(ctx context.Context, url, destPath string, opts FetchOptions) (*DownloadResult, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	if opts.ChecksumURL != "" {
		companion := destPath + companionExt(opts.ChecksumURL)
		if err := d.withRetries(ctx, func() error {
			_, err := d.fetchOnce(ctx, opts.ChecksumURL, companion, true)
			return err
		}); err != nil {
			return nil, fmt.Errorf("download checksum: %w", err)
		}
	}

	var result *DownloadResult
	err := d.withRetries(ctx, func() error {
		r, err := d.fetchOnce(ctx, url, destPath, opts.Force)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	method, err := d.verifier.Verify(destPath)
	if err != nil {
		if !result.Cached {
			_ = os.Remove(destPath)
		}
		return nil, err
	}
	result.Verified = method
	result.DownloadTime = time.Since(start)
	return result, nil
}

func (d *Downloader) withRetries(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			d.logger.Debug("retrying download", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(d.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}
	}
	return lastErr
}

// fetchOnce performs a single download attempt.
func (d *Downloader) fetchOnce(ctx context.Context, rawURL, destPath string, force bool) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	if d.token != "" && isGitHubHost(rawURL) {
		req.Header.Set("Authorization", "token "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperr.Network(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(rawURL, resp.StatusCode)
	}

	total := announcedLength(resp)
	name := filepath.Base(destPath)

	if !force {
		if info, err := os.Stat(destPath); err == nil && info.Mode().IsRegular() {
			if total > 0 && info.Size() == total {
				if _, verr := d.verifier.Verify(destPath); verr == nil {
					d.logger.Debug("reusing cached download", "path", destPath)
					return &DownloadResult{Path: destPath, Cached: true, Bytes: total}, nil
				}
				d.logger.Warn("cached download failed verification, downloading again", "path", destPath)
			}
		}
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var w io.Writer = tmpFile
	if d.progress != nil {
		w = &progressWriter{w: tmpFile, name: name, total: total, report: d.progress}
	}
	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, apperr.Network(rawURL, err)
	}
	if total > 0 && written != total {
		return nil, apperr.Network(rawURL, fmt.Errorf("short body: got %d of %d bytes", written, total))
	}

	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return &DownloadResult{Path: destPath, Bytes: written}, nil
}

// announcedLength reads the body size, falling back to the storage header
// for Google Cloud Storage objects.
func announcedLength(resp *http.Response) int64 {
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	if v := resp.Header.Get(storedLengthHeader); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func statusError(rawURL string, status int) error {
	kind := apperr.KindNetwork
	if status == http.StatusNotFound {
		kind = apperr.KindNotFound
	}
	return &apperr.Error{
		Kind:    kind,
		Message: fmt.Sprintf("download of %s failed with status %d %s", rawURL, status, http.StatusText(status)),
	}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == apperr.KindNetwork
}

func companionExt(checksumURL string) string {
	if strings.HasSuffix(checksumURL, ".md5") {
		return ".md5"
	}
	return ".sha256"
}

func isGitHubHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "github.com" || strings.HasSuffix(host, ".github.com")
}

type progressWriter struct {
	w       io.Writer
	name    string
	total   int64
	written int64
	report  ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.report(p.name, p.written, p.total)
	return n, err
}
