package catalog

import (
	"fmt"
	"net/http"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

const tokenHint = "Set GITHUB_TOKEN (or github_token in suiup.lua) to raise the GitHub API rate limit"

// HTTPError is a non-2xx answer from the release API.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
	// RateLimited is set when X-RateLimit-Remaining reached zero.
	RateLimited bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// classify maps an HTTP failure onto the suiup error taxonomy.
func classify(e *HTTPError) *apperr.Error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return &apperr.Error{
			Kind:    apperr.KindNetwork,
			Message: "GitHub rejected the configured token",
			Hint:    "Check that GITHUB_TOKEN is valid and not expired",
			Err:     e,
		}
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusForbidden:
		return &apperr.Error{
			Kind:    apperr.KindNetwork,
			Message: rateLimitMessage(e),
			Hint:    tokenHint,
			Err:     e,
		}
	case e.StatusCode == http.StatusNotFound:
		return &apperr.Error{Kind: apperr.KindNotFound, Message: "release not found", Err: e}
	default:
		return &apperr.Error{Kind: apperr.KindNetwork, Err: e}
	}
}

func rateLimitMessage(e *HTTPError) string {
	if e.StatusCode == http.StatusForbidden && !e.RateLimited {
		return "GitHub API refused the request (403)"
	}
	return "GitHub API rate limit exceeded"
}
