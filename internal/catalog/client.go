// Package catalog reads upstream release listings from the GitHub API.
//
// Listings are fetched with a conditional request: the ETag of the last
// successful response is sent as If-None-Match and a 304 answer is served
// from the local cache. DiskCache is the only Cache; the interface keeps
// the client unaware of the on-disk file naming.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/config"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single catalog request.
	DefaultTimeout = 30 * time.Second

	userAgent  = "suiup"
	apiVersion = "2022-11-28"
	perPage    = 100
)

// Client fetches release listings.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cache      Cache
	logger     config.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the GitHub token sent as "Authorization: token <t>".
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache enables conditional requests backed by cache.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(l config.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = config.OrNop(c.logger)
	return c
}

// ListReleases returns the repository's releases, newest first, with drafts
// removed.
func (c *Client) ListReleases(ctx context.Context, src Source) ([]Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.baseURL, src, perPage)

	var cached Entry
	var haveCache bool
	if c.cache != nil {
		var err error
		cached, haveCache, err = c.cache.Load(src.Key())
		if err != nil {
			c.logger.Warn("ignoring release cache", "source", src.String(), "error", err)
			haveCache = false
		}
	}

	etag := ""
	if haveCache {
		etag = cached.ETag
	}
	body, newETag, notModified, err := c.get(ctx, endpoint, etag)
	if err != nil {
		return nil, err
	}

	if notModified {
		c.logger.Debug("release listing not modified", "source", src.String(), "fetched_at", cached.FetchedAt)
		releases, err := decodeReleases(cached.Body)
		if err == nil {
			return releases, nil
		}
		c.logger.Warn("cached release listing is unreadable, refetching", "source", src.String(), "error", err)
		body, newETag, _, err = c.get(ctx, endpoint, "")
		if err != nil {
			return nil, err
		}
	}

	releases, err := decodeReleases(body)
	if err != nil {
		return nil, apperr.Integrity("cannot parse release listing from "+endpoint, err)
	}
	if c.cache != nil && newETag != "" {
		if err := c.cache.Store(src.Key(), Entry{ETag: newETag, Body: body}); err != nil {
			c.logger.Warn("failed to cache release listing", "source", src.String(), "error", err)
		}
	}
	return releases, nil
}

// ReleaseByTag fetches a single release. A missing tag is a NotFound error.
func (c *Client) ReleaseByTag(ctx context.Context, src Source, tag string) (Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.baseURL, src, url.PathEscape(tag))
	body, _, _, err := c.get(ctx, endpoint, "")
	if err != nil {
		return Release{}, err
	}
	var r Release
	if err := json.Unmarshal(body, &r); err != nil {
		return Release{}, apperr.Integrity("cannot parse release from "+endpoint, err)
	}
	return r, nil
}

// get issues one GET with the standard headers. A non-empty etag is sent as
// If-None-Match; a 304 reply sets notModified and returns no body.
func (c *Client) get(ctx context.Context, endpoint, etag string) (body []byte, newETag string, notModified bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	c.logger.Debug("catalog request", "url", endpoint, "conditional", etag != "")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", false, apperr.Network(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, "", true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", false, classify(&HTTPError{
			URL:         endpoint,
			StatusCode:  resp.StatusCode,
			Body:        string(excerpt),
			RateLimited: resp.Header.Get("X-RateLimit-Remaining") == "0",
		})
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", false, apperr.Network(endpoint, err)
	}
	return body, resp.Header.Get("ETag"), false, nil
}

// decodeReleases parses a listing and drops draft releases.
func decodeReleases(body []byte) ([]Release, error) {
	var all []Release
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if !r.Draft {
			out = append(out, r)
		}
	}
	return out, nil
}
