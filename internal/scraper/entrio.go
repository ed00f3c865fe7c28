package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/fetcher"
	"github.com/eventara/events-cli/internal/model"
)

// entrioStrategies lists the selector strategies for the ticketing
// marketplace listing, most specific first.
var entrioStrategies = []extractStrategy{
	{
		name:      "event-card",
		container: "div.event-card, article.event-card",
		fields: fieldSelectors{
			Title:    ".event-card__title, h3",
			Date:     ".event-card__date, time",
			Location: ".event-card__venue, .event-card__location",
			Price:    ".event-card__price",
			Image:    "img",
			Link:     "a",
		},
	},
	{
		name:      "listing-item",
		container: "li.event-listing__item, div.event-item",
		fields: fieldSelectors{
			Title:    "h3, h2, .title",
			Date:     ".date, time",
			Location: ".venue, .location",
			Price:    ".price",
			Image:    "img",
			Link:     "a",
		},
	},
	{
		name:      "generic-article",
		container: "article",
		fields: fieldSelectors{
			Title:    "h3, h2",
			Date:     "time, .date",
			Location: ".venue, .location, .place",
			Image:    "img",
			Link:     "a",
		},
	},
}

// entrioDetailSelectors are tried in order on a detail page to find the
// venue address block.
var entrioDetailSelectors = []string{
	".event-venue__address",
	".venue-address",
	"address",
	".location-details",
}

// Entrio scrapes the ticketing marketplace's server-rendered listing pages.
type Entrio struct {
	fetcher fetcher.Fetcher
	baseURL string
	log     *zap.Logger
}

// NewEntrio creates the entrio source over the given page fetcher.
func NewEntrio(f fetcher.Fetcher, baseURL string) *Entrio {
	return &Entrio{
		fetcher: f,
		baseURL: baseURL,
		log:     zap.L().With(zap.String("component", "scraper"), zap.String("source", "entrio")),
	}
}

// Name implements Source.
func (e *Entrio) Name() string { return "entrio" }

// BaseURL implements Source.
func (e *Entrio) BaseURL() string { return e.baseURL }

// Scrape implements Source. Pagination walks ?page=N until a page yields no
// new records or the cap is reached. A failed page ends the loop with
// whatever was collected.
func (e *Entrio) Scrape(ctx context.Context, opts Options) ([]model.RawRecord, PageStats, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	var all []model.RawRecord
	seen := make(map[string]bool)
	stats := PageStats{}

	for page := 1; page <= opts.MaxPages; page++ {
		pageURL := fmt.Sprintf("%s/events?page=%d", e.baseURL, page)
		body, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, stats, err
			}
			e.log.Warn("page fetch failed, ending pagination",
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}
		stats.Pages++

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			e.log.Warn("page parse failed, ending pagination",
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}

		records, strategy := runStrategies(doc, entrioStrategies)
		fresh := dedupeByLink(records, seen)
		if len(fresh) == 0 {
			e.log.Debug("no new records, stopping", zap.Int("page", page))
			break
		}
		e.log.Debug("page scraped",
			zap.Int("page", page),
			zap.Int("records", len(fresh)),
			zap.String("strategy", strategy),
		)
		all = append(all, fresh...)
	}

	if opts.FetchDetails {
		e.fetchDetails(ctx, all, opts)
	}

	e.log.Info("scrape pass complete",
		zap.Int("records", len(all)),
		zap.Int("pages", stats.Pages),
	)
	return all, stats, nil
}

// fetchDetails visits a sampled subset of detail pages to pick up richer
// venue addresses, with an inter-request delay.
func (e *Entrio) fetchDetails(ctx context.Context, records []model.RawRecord, opts Options) {
	rate := opts.DetailSampleRate
	if rate <= 0 {
		rate = 3
	}
	delay := opts.DetailDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	for i := range records {
		if i%rate != 0 || records[i].LinkURL == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		detailURL := records[i].LinkURL
		if len(detailURL) > 0 && detailURL[0] == '/' {
			detailURL = e.baseURL + detailURL
		}

		body, err := e.fetcher.Fetch(ctx, detailURL)
		if err != nil {
			e.log.Debug("detail fetch failed", zap.String("url", detailURL), zap.Error(err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}
		for _, sel := range entrioDetailSelectors {
			if addr := selText(doc.Selection, sel); addr != "" {
				records[i].DetailAddress = addr
				break
			}
		}
	}
}
