// Package client provides the HTTP client used to talk to release-store
// APIs and to probe release assets.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultUserAgent = "prebuilts"

// RateLimiter controls request pacing against a store.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// HTTPError represents a non-2xx HTTP response from a store.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client is an HTTP client for release-store APIs.
type Client struct {
	httpClient *http.Client
	userAgent  string
	token      string
	limiter    RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets a bearer token, for private stores.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRateLimiter sets a rate limiter consulted before every request.
func WithRateLimiter(l RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// DefaultClient returns a client with sensible defaults: a 30 second
// timeout and no authentication.
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithUserAgent returns a copy of the client that sends the given
// User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	copied := *c
	copied.userAgent = ua
	return &copied
}

func (c *Client) do(ctx context.Context, method, url, accept string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

// GetJSON fetches url and decodes the JSON response body into v.
// Non-2xx responses are returned as *HTTPError.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, url, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the raw response body.
// Non-2xx responses are returned as *HTTPError.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, "*/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}

// Head issues a HEAD request and returns the reported content length,
// or -1 when the store does not advertise one.
func (c *Client) Head(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url, "*/*")
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	size := int64(-1)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = n
		}
	}
	return size, nil
}

// newHTTPError drains up to 1KB of the response body for error context.
func newHTTPError(resp *http.Response, url string) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		URL:        url,
		Body:       string(body),
	}
}
