package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/retry"
)

// ErrExhausted is returned when every attempt to fetch a page failed.
var ErrExhausted = errors.New("fetch attempts exhausted")

// DefaultUserAgent is a current desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodyBytes = 5 << 20

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Client fetches pages with browser-like headers, retrying failures with
// exponential backoff. A 403 on the last attempt gets one more try with only
// a User-Agent header, since some boards fingerprint the full header set.
type Client struct {
	http      *http.Client
	userAgent string
	retrier   *retry.Retrier
	logger    *slog.Logger
}

// NewClient creates a Client. An empty userAgent selects DefaultUserAgent.
func NewClient(httpClient *http.Client, userAgent string, retrier *retry.Retrier, logger *slog.Logger) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:      httpClient,
		userAgent: userAgent,
		retrier:   retrier,
		logger:    logger,
	}
}

// Fetch GETs url and parses the response. Exhausting every attempt returns an
// error wrapping both ErrExhausted and the last failure.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	maxAttempts := c.retrier.Policy().MaxAttempts

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := c.get(ctx, url, c.browserHeaders(url, attempt > 0))
		if err == nil {
			return page, nil
		}
		if !retry.IsRetryable(ctx, err) {
			return nil, fmt.Errorf("fetching %s: %w", url, err)
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			if isForbidden(err) {
				c.logger.Warn("forbidden on final attempt, trying minimal headers", "url", url)
				page, err := c.get(ctx, url, c.minimalHeaders())
				if err == nil {
					c.logger.Info("fetched with minimal headers", "url", url)
					return page, nil
				}
				c.logger.Debug("minimal headers failed", "url", url, "error", err)
			}
			break
		}

		if err := c.retrier.Backoff(ctx, attempt, err); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrExhausted, url, maxAttempts, lastErr)
}

func (c *Client) get(ctx context.Context, url string, header http.Header) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header = header

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return ParsePage(url, body, resp.Header.Get("Content-Type"))
}

// browserHeaders mimics a desktop browser navigation. Accept-Encoding is left
// to the transport so gzip is negotiated and decoded transparently.
func (c *Client) browserHeaders(url string, retrying bool) http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("DNT", "1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Cache-Control", "max-age=0")
	if retrying {
		h.Set("Referer", url)
	}
	return h
}

func (c *Client) minimalHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.userAgent)
	return h
}

func isForbidden(err error) bool {
	var httpErr *model.HTTPError
	return errors.As(err, &httpErr) && httpErr.Forbidden()
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
