// Package render provides a client for a remote headless-browser rendering
// endpoint (Browserless-style /content API). Scrapers use it for sites that
// only materialize their event markup through client-side script execution.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client renders JavaScript-driven pages into final HTML.
type Client interface {
	// Content returns the rendered HTML of the page after script execution,
	// waits, clicks, and scroll passes.
	Content(ctx context.Context, req ContentRequest) (string, error)
}

// ContentRequest is the body for POST /content.
type ContentRequest struct {
	URL             string `json:"url"`
	WaitForSelector string `json:"waitForSelector,omitempty"`
	ClickSelector   string `json:"clickSelector,omitempty"`
	ScrollPasses    int    `json:"scrollPasses,omitempty"`
	TimeoutMs       int    `json:"timeoutMs,omitempty"`
}

// APIError is returned when the rendering endpoint responds with a non-2xx
// status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("render: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithToken sets the access token sent as a query parameter.
func WithToken(token string) Option {
	return func(c *httpClient) {
		c.token = token
	}
}

// WithRateLimit sets the requests-per-second limit for render calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new rendering client against the given endpoint.
// Rendering is expensive on the remote end, so the default limit is low.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		limiter: rate.NewLimiter(1, 1),
		http: &http.Client{
			Timeout: 90 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Content(ctx context.Context, contentReq ContentRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "render: rate limit wait")
	}

	buf, err := json.Marshal(contentReq)
	if err != nil {
		return "", eris.Wrap(err, "render: marshal request")
	}

	endpoint := c.baseURL + "/content"
	if c.token != "" {
		endpoint += "?token=" + c.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", eris.Wrap(err, "render: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "render: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "render: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return string(data), nil
}
