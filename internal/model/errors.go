package model

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	URL        string
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d from %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Forbidden reports whether the server refused the request outright, which
// job boards tend to do when they dislike the request fingerprint.
func (e *HTTPError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}
