// Package doctolib provides the HTTP client that fetches the availability
// payload from Doctolib.
//
// Requests carry a fixed User-Agent. Rate limiting is handled via a token
// bucket limiter; with no configured rate every request goes through.
package doctolib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/doctolib-checker/internal/httputil"
)

// DefaultUserAgent is sent when none is configured. The endpoint rejects
// requests without a browser-like agent.
const DefaultUserAgent = "Magic Browser"

// Client fetches one availability URL.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NetworkError reports a transport failure or a non-200 response.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewClient creates a client for url. A zero timeout waits for the transport
// to resolve; requestsPerMinute <= 0 disables rate limiting.
func NewClient(url, userAgent string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Fetch performs a rate-limited GET and returns the raw body.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	c.logger.Debug("Fetching availabilities", "url", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &NetworkError{Op: "create request", URL: c.url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "GET", URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("HTTP response", "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read body", URL: c.url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{
			Op:         "GET",
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(httputil.Snippet(body)),
		}
	}

	return body, nil
}
