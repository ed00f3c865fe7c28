package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/engine"
	"github.com/eventara/events-cli/internal/fetcher"
	"github.com/eventara/events-cli/internal/geocode"
	"github.com/eventara/events-cli/internal/scraper"
	"github.com/eventara/events-cli/internal/store"
	"github.com/eventara/events-cli/internal/transform"
	"github.com/eventara/events-cli/internal/venue"
	"github.com/eventara/events-cli/pkg/mapbox"
	"github.com/eventara/events-cli/pkg/render"
)

// appEnv holds the initialized store, clients, and engine shared by the
// scrape/worker/schedule/serve commands.
type appEnv struct {
	Store    store.Store
	Cache    geocode.Cache
	Resolver *geocode.Resolver // nil when no Mapbox token is configured
	Venues   *venue.Service
	Engine   *engine.Engine
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initCache builds the venue coordinate cache on the same backend as the
// store.
func initCache(st store.Store) (geocode.Cache, error) {
	switch s := st.(type) {
	case *store.PostgresStore:
		return geocode.NewPostgresCache(s.Pool()), nil
	case *store.SQLiteStore:
		return geocode.NewSQLiteCache(s.DB()), nil
	default:
		return nil, eris.New("store backend has no venue cache")
	}
}

// initEnv sets up the store, geocoding, both scrapers, and the engine.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cache, err := initCache(st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	// Geocoding is optional: without a token, events persist without
	// coordinates.
	var resolver *geocode.Resolver
	if cfg.Mapbox.Token != "" {
		mb := mapbox.NewClient(cfg.Mapbox.Token, mapbox.WithBaseURL(cfg.Mapbox.BaseURL))
		resolver = geocode.NewResolver(cache, mb, geocode.Config{
			Country:       cfg.Mapbox.Country,
			Limit:         cfg.Mapbox.Limit,
			MinConfidence: cfg.Geocode.MinConfidence,
			StaleAfter:    time.Duration(cfg.Geocode.StaleDays) * 24 * time.Hour,
			BatchDelay:    time.Duration(cfg.Geocode.BatchDelayMs) * time.Millisecond,
		})
	} else {
		zap.L().Warn("EVENTS_MAPBOX_TOKEN not set, geocoding disabled")
	}

	registry := scraper.NewRegistry()
	transformers := map[string]*transform.Transformer{}

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	entrio := scraper.NewEntrio(httpFetcher, cfg.Sources.Entrio.BaseURL)
	registry.Register(entrio)
	transformers[entrio.Name()] = transform.New(transform.Config{
		Source:       entrio.Name(),
		BaseURL:      cfg.Sources.Entrio.BaseURL,
		DefaultTime:  cfg.Sources.Entrio.DefaultTime,
		DefaultPrice: cfg.Sources.Entrio.DefaultPrice,
	})

	renderClient := render.NewClient(cfg.Render.BaseURL, render.WithToken(cfg.Render.Token))
	croatiaHR := scraper.NewCroatiaHR(renderClient, cfg.Sources.CroatiaHR.BaseURL)
	registry.Register(croatiaHR)
	transformers[croatiaHR.Name()] = transform.New(transform.Config{
		Source:       croatiaHR.Name(),
		BaseURL:      cfg.Sources.CroatiaHR.BaseURL,
		DefaultTime:  cfg.Sources.CroatiaHR.DefaultTime,
		DefaultPrice: cfg.Sources.CroatiaHR.DefaultPrice,
	})

	eng := engine.New(registry, transformers, resolver, st, cfg.Scrape.MaxConcurrent,
		engine.WithDefaultPages(map[string]int{
			entrio.Name():    cfg.Sources.Entrio.MaxPages,
			croatiaHR.Name(): cfg.Sources.CroatiaHR.MaxPages,
		}))

	return &appEnv{
		Store:    st,
		Cache:    cache,
		Resolver: resolver,
		Venues:   venue.NewService(cache, st),
		Engine:   eng,
	}, nil
}
