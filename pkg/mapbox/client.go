// Package mapbox provides a client for the Mapbox Geocoding v5 API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Default base URL for the Mapbox API.
const defaultBaseURL = "https://api.mapbox.com"

// Client defines the Mapbox geocoding operations.
type Client interface {
	// Forward resolves a free-text place query to candidate features.
	Forward(ctx context.Context, query string, opts ForwardOptions) (*Response, error)
}

// ForwardOptions scopes a forward-geocoding request.
type ForwardOptions struct {
	Country string // ISO 3166-1 alpha-2, e.g. "hr"
	Limit   int    // max candidates to return
}

// Response is the JSON response from the geocoding endpoint.
type Response struct {
	Features []Feature `json:"features"`
}

// Feature is one geocoding candidate.
type Feature struct {
	Center    [2]float64 `json:"center"` // [lon, lat]
	PlaceType []string   `json:"place_type"`
	PlaceName string     `json:"place_name"`
	Relevance float64    `json:"relevance"`
	Text      string     `json:"text"`
}

// Lon returns the feature's longitude.
func (f Feature) Lon() float64 { return f.Center[0] }

// Lat returns the feature's latitude.
func (f Feature) Lat() float64 { return f.Center[1] }

// APIError is returned when Mapbox responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mapbox: HTTP %d: %s", e.StatusCode, e.Body)
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

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Mapbox client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Forward(ctx context.Context, query string, opts ForwardOptions) (*Response, error) {
	if c.token == "" {
		return nil, eris.New("mapbox: access token not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "mapbox: rate limit")
	}

	params := url.Values{"access_token": {c.token}}
	if opts.Country != "" {
		params.Set("country", opts.Country)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	reqURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		c.baseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "mapbox: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "mapbox: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mapbox: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "mapbox: decode response")
	}
	return &out, nil
}
