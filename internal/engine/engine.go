// Package engine orchestrates scrape runs: it drives each source through
// scrape, transform, geocode and persist, and aggregates per-source results.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eventara/events-cli/internal/geocode"
	"github.com/eventara/events-cli/internal/model"
	"github.com/eventara/events-cli/internal/scraper"
	"github.com/eventara/events-cli/internal/store"
	"github.com/eventara/events-cli/internal/transform"
)

// Options tunes a run.
type Options struct {
	MaxPages     int  // page cap per source; 0 uses the source default
	FetchDetails bool // sample event detail pages for richer addresses
	SkipGeocode  bool // persist without coordinate resolution
}

// Engine runs sources and owns the run lifecycle. Runs are recorded in the
// store; a panicking source is captured as that source's error result and
// never takes down its siblings.
type Engine struct {
	registry     *scraper.Registry
	transformers map[string]*transform.Transformer
	resolver     *geocode.Resolver
	store        store.Store
	log          *zap.Logger
	concurrency  int
	defaultPages map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultPages sets per-source page caps applied when a run does not
// specify one.
func WithDefaultPages(pages map[string]int) Option {
	return func(e *Engine) {
		e.defaultPages = pages
	}
}

// New creates an Engine. resolver may be nil to disable geocoding entirely.
func New(registry *scraper.Registry, transformers map[string]*transform.Transformer, resolver *geocode.Resolver, st store.Store, concurrency int, opts ...Option) *Engine {
	if concurrency <= 0 {
		concurrency = 2
	}
	e := &Engine{
		registry:     registry,
		transformers: transformers,
		resolver:     resolver,
		store:        st,
		log:          zap.L().With(zap.String("component", "engine")),
		concurrency:  concurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunSource executes one source end to end and returns its result. Errors
// are folded into the result, never returned: the caller always gets a
// status to report.
func (e *Engine) RunSource(ctx context.Context, name string, opts Options) model.SourceResult {
	result := model.SourceResult{Source: name, Status: model.RunStatusError}

	src, err := e.registry.Get(name)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	run, err := e.store.CreateRun(ctx, name)
	if err != nil {
		e.log.Warn("run row not created", zap.String("source", name), zap.Error(err))
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = model.RunStatusError
			result.Message = fmt.Sprintf("panic: %v", r)
			e.log.Error("source panicked", zap.String("source", name), zap.Any("panic", r))
			e.finishRun(ctx, run, result)
		}
	}()

	result = e.runSource(ctx, src, name, opts)
	e.finishRun(ctx, run, result)
	return result
}

func (e *Engine) runSource(ctx context.Context, src scraper.Source, name string, opts Options) model.SourceResult {
	result := model.SourceResult{Source: name}

	if opts.MaxPages <= 0 {
		opts.MaxPages = e.defaultPages[name]
	}
	records, stats, scrapeErr := src.Scrape(ctx, scraper.Options{
		MaxPages:     opts.MaxPages,
		FetchDetails: opts.FetchDetails,
	})
	result.Pages = stats.Pages
	result.ScrapedEvents = len(records)
	if scrapeErr != nil && len(records) == 0 {
		result.Status = model.RunStatusError
		result.Message = scrapeErr.Error()
		return result
	}

	tr, ok := e.transformers[name]
	if !ok {
		result.Status = model.RunStatusError
		result.Message = "no transformer configured for source " + name
		return result
	}

	events := tr.NormalizeAll(records)

	if e.resolver != nil && !opts.SkipGeocode {
		e.attachCoordinates(ctx, events)
	}

	saved, err := e.store.SaveEvents(ctx, name, events)
	if err != nil {
		result.Status = model.RunStatusError
		result.Message = err.Error()
		return result
	}
	result.SavedEvents = saved

	if scrapeErr != nil {
		result.Status = model.RunStatusPartial
		result.Message = scrapeErr.Error()
	} else {
		result.Status = model.RunStatusOK
	}
	return result
}

// attachCoordinates resolves event locations batch-wise. Failures leave the
// event without coordinates.
func (e *Engine) attachCoordinates(ctx context.Context, events []model.Event) {
	items := make([]geocode.BatchItem, len(events))
	for i, ev := range events {
		items[i] = geocode.BatchItem{Name: ev.Location}
	}
	results, err := e.resolver.ResolveBatch(ctx, items)
	if err != nil {
		e.log.Warn("geocode batch aborted", zap.Error(err))
	}
	for i := range events {
		if i >= len(results) || results[i] == nil {
			continue
		}
		lat, lon := results[i].Latitude, results[i].Longitude
		events[i].Latitude = &lat
		events[i].Longitude = &lon
	}
}

func (e *Engine) finishRun(ctx context.Context, run *model.Run, result model.SourceResult) {
	if run == nil {
		return
	}
	var err error
	if result.Status == model.RunStatusError {
		err = e.store.FailRun(ctx, run.ID, result.Message)
	} else {
		err = e.store.CompleteRun(ctx, run.ID, result)
	}
	if err != nil {
		e.log.Warn("run row not updated", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// RunAll runs every registered source concurrently and aggregates the
// results. Source failures never cancel siblings.
func (e *Engine) RunAll(ctx context.Context, opts Options) model.RunSummary {
	var (
		mu      sync.Mutex
		summary model.RunSummary
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, name := range e.registry.Names() {
		name := name
		g.Go(func() error {
			result := e.RunSource(ctx, name, opts)
			mu.Lock()
			summary.Aggregate(result)
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	e.log.Info("run complete",
		zap.String("status", string(summary.Status)),
		zap.Int("scraped", summary.ScrapedEvents),
		zap.Int("saved", summary.SavedEvents),
	)
	return summary
}
