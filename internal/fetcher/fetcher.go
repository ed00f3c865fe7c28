// Package fetcher downloads listing pages over plain HTTP with retry,
// backoff, and per-host rate limiting. It is the non-browser scrape path
// for sites that render their markup server-side.
package fetcher

import "context"

// Fetcher defines the interface for downloading remote pages.
type Fetcher interface {
	// Fetch downloads the URL and returns the response body.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
