// Package geocode resolves free-text venue names to coordinates, cache
// first, then the external geocoding API, with confidence scoring and
// geographic bounds validation. This package exclusively owns the
// venue_coordinates table.
package geocode

import (
	"context"
	"time"
)

// Entry is one persisted venue-coordinate cache row, keyed uniquely by the
// normalized venue name.
type Entry struct {
	VenueName  string    `json:"venue_name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   string    `json:"accuracy"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Cache is the persistence seam for venue coordinates. Writes are
// idempotent: a pre-existing row for the same name short-circuits the
// insert, so concurrent writers converge without locking.
type Cache interface {
	// Get returns the entry for the normalized venue name, or nil when
	// there is no row newer than maxAge.
	Get(ctx context.Context, name string, maxAge time.Duration) (*Entry, error)

	// Put inserts an entry unless a row for the same name already exists.
	Put(ctx context.Context, e Entry) error

	// Search returns entries whose venue name contains the query substring,
	// for fuzzy venue suggestions.
	Search(ctx context.Context, query string, limit int) ([]Entry, error)
}
