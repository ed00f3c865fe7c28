// Package scraper extracts raw event records from external Croatian
// event-listing sites. Each source implements Source; the markup of a
// target site is not guaranteed stable, so extraction runs over an ordered
// list of selector strategies with the first non-empty result winning.
package scraper

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/eventara/events-cli/internal/model"
)

// Options bounds one scrape invocation.
type Options struct {
	MaxPages         int
	FetchDetails     bool          // visit sampled detail pages for richer addresses
	DetailSampleRate int           // every Nth record gets a detail fetch
	DetailDelay      time.Duration // inter-request delay for detail fetches
}

// PageStats summarizes the pages visited during a scrape pass.
type PageStats struct {
	Pages int `json:"pages"`
}

// Source is one external event-listing site.
type Source interface {
	// Name returns the unique source identifier (e.g. "entrio").
	Name() string

	// BaseURL returns the site's base URL for absolutizing relative links.
	BaseURL() string

	// Scrape walks the listing up to opts.MaxPages and emits raw records.
	// A single page failure ends pagination without error; a total session
	// failure returns an error and aborts only this source.
	Scrape(ctx context.Context, opts Options) ([]model.RawRecord, PageStats, error)
}

// Registry maps source names to their implementations.
type Registry struct {
	sources map[string]Source
	order   []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	name := s.Name()
	r.sources[name] = s
	r.order = append(r.order, name)
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("scraper: unknown source %q", name)
	}
	return s, nil
}

// All returns all sources in registration order.
func (r *Registry) All() []Source {
	result := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.sources[name])
	}
	return result
}

// Names returns all registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
