package geocode

import (
	"context"
	"strings"
	"time"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/normalize"
	"github.com/eventara/events-cli/pkg/mapbox"
)

// croatiaBounds is the accepted bounding box; results outside it are
// rejected.
var croatiaBounds = geom.NewBounds(geom.XY).Set(13.50, 42.38, 19.43, 46.55)

// Result holds one resolved venue location.
type Result struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Accuracy   string  `json:"accuracy"` // "venue", "address", "neighborhood", "city"
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // "cache" or "mapbox"
	PlaceName  string  `json:"place_name,omitempty"`
	PlaceType  string  `json:"place_type,omitempty"`
}

// venueKeywords boost confidence when the resolved place name names a known
// venue type.
var venueKeywords = []string{
	"stadion", "stadium", "arena", "dvorana", "hall",
	"kazalište", "kazaliste", "theatre", "theater",
	"hotel", "park", "muzej", "museum",
}

// Config tunes the resolver.
type Config struct {
	Country       string        // country scope for external queries
	Limit         int           // candidate count requested externally
	MinConfidence float64       // floor below which results are not cached
	StaleAfter    time.Duration // cache rows older than this are re-fetched
	BatchDelay    time.Duration // inter-call delay for batch misses
}

// Resolver resolves venue names, cache first, then Mapbox.
type Resolver struct {
	cache  Cache
	client mapbox.Client
	cfg    Config
	log    *zap.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewResolver creates a Resolver over the given cache and API client.
func NewResolver(cache Cache, client mapbox.Client, cfg Config) *Resolver {
	if cfg.Country == "" {
		cfg.Country = "hr"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 3
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * 24 * time.Hour
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = 300 * time.Millisecond
	}
	return &Resolver{
		cache:  cache,
		client: client,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "geocode.resolver")),
		sleep:  sleepCtx,
	}
}

// Resolve resolves a venue name with optional context ("Split"). Returns
// (nil, nil) when nothing usable is found; geocoding failures degrade, they
// never fail the caller.
func (r *Resolver) Resolve(ctx context.Context, name, hint string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	key := normalize.FoldName(name)
	if entry, err := r.cache.Get(ctx, key, r.cfg.StaleAfter); err != nil {
		r.log.Warn("cache lookup failed", zap.String("venue", key), zap.Error(err))
	} else if entry != nil {
		return &Result{
			Latitude:   entry.Latitude,
			Longitude:  entry.Longitude,
			Accuracy:   entry.Accuracy,
			Confidence: entry.Confidence,
			Source:     "cache",
		}, nil
	}

	result, err := r.resolveExternal(ctx, name, hint)
	if err != nil || result == nil {
		return nil, err
	}

	if result.Confidence >= r.cfg.MinConfidence {
		putErr := r.cache.Put(ctx, Entry{
			VenueName:  key,
			Latitude:   result.Latitude,
			Longitude:  result.Longitude,
			Accuracy:   result.Accuracy,
			Confidence: result.Confidence,
			Source:     result.Source,
		})
		if putErr != nil {
			r.log.Warn("cache write failed", zap.String("venue", key), zap.Error(putErr))
		}
	}
	return result, nil
}

// BatchItem is one (name, context) pair for ResolveBatch.
type BatchItem struct {
	Name    string
	Context string
}

// ResolveBatch resolves items sequentially, delaying between external calls
// as backpressure against the API. Cache hits bypass the delay.
func (r *Resolver) ResolveBatch(ctx context.Context, items []BatchItem) ([]*Result, error) {
	results := make([]*Result, len(items))
	for i, item := range items {
		res, err := r.Resolve(ctx, item.Name, item.Context)
		if err != nil {
			r.log.Warn("batch resolve failed",
				zap.String("venue", item.Name),
				zap.Error(err),
			)
			continue
		}
		results[i] = res

		if res != nil && res.Source != "cache" && i < len(items)-1 {
			if err := r.sleep(ctx, r.cfg.BatchDelay); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// resolveExternal queries Mapbox and scores the first in-bounds candidate.
func (r *Resolver) resolveExternal(ctx context.Context, name, hint string) (*Result, error) {
	query := name
	if hint != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(hint)) {
		query = name + ", " + hint
	}

	resp, err := r.client.Forward(ctx, query, mapbox.ForwardOptions{
		Country: r.cfg.Country,
		Limit:   r.cfg.Limit,
	})
	if err != nil {
		r.log.Warn("external geocode failed", zap.String("query", query), zap.Error(err))
		return nil, nil // degrade: events persist without coordinates
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	f := resp.Features[0]
	if !InBounds(f.Lat(), f.Lon()) {
		r.log.Debug("rejecting out-of-bounds result",
			zap.String("query", query),
			zap.Float64("lat", f.Lat()),
			zap.Float64("lon", f.Lon()),
		)
		return nil, nil
	}

	placeType := ""
	if len(f.PlaceType) > 0 {
		placeType = f.PlaceType[0]
	}
	accuracy, confidence := scorePlace(placeType, f.PlaceName)

	return &Result{
		Latitude:   f.Lat(),
		Longitude:  f.Lon(),
		Accuracy:   accuracy,
		Confidence: confidence,
		Source:     "mapbox",
		PlaceName:  f.PlaceName,
		PlaceType:  placeType,
	}, nil
}

// InBounds reports whether the coordinates lie inside the Croatia bounding
// box.
func InBounds(lat, lon float64) bool {
	return croatiaBounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// scorePlace maps a Mapbox place type to the accuracy tier and base
// confidence, with a venue-keyword boost capped at 1.0.
func scorePlace(placeType, placeName string) (string, float64) {
	var accuracy string
	var confidence float64

	switch placeType {
	case "poi":
		accuracy, confidence = "venue", 0.9
	case "address":
		accuracy, confidence = "address", 0.8
	case "neighborhood", "locality":
		accuracy, confidence = "neighborhood", 0.6
	default:
		accuracy, confidence = "city", 0.5
	}

	lower := strings.ToLower(placeName)
	for _, kw := range venueKeywords {
		if strings.Contains(lower, kw) {
			confidence += 0.1
			break
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return accuracy, confidence
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
