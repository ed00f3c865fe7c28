package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/model"
	"github.com/eventara/events-cli/pkg/render"
)

// croatiaHRStrategies lists the selector strategies for the national
// tourism portal, whose markup is rendered client-side.
var croatiaHRStrategies = []extractStrategy{
	{
		name:      "event-tile",
		container: "div.event-tile, article.event-tile",
		fields: fieldSelectors{
			Title:       ".event-tile__title, h3",
			Date:        ".event-tile__date, time",
			Location:    ".event-tile__location, .event-tile__place",
			Description: ".event-tile__excerpt",
			Image:       "img",
			Link:        "a",
		},
	},
	{
		name:      "card-grid",
		container: "div.card--event, li.events-grid__item",
		fields: fieldSelectors{
			Title:       "h3, h2, .card__title",
			Date:        ".card__date, time, .date",
			Location:    ".card__location, .location, .place",
			Description: ".card__description, p",
			Image:       "img",
			Link:        "a",
		},
	},
	{
		name:      "generic-article",
		container: "article",
		fields: fieldSelectors{
			Title:       "h3, h2",
			Date:        "time, .date",
			Location:    ".location, .place",
			Description: "p",
			Image:       "img",
			Link:        "a",
		},
	},
}

// croatiaHRLoadMore are candidate "load more" controls, clicked before each
// render pass when present.
const croatiaHRLoadMore = ".load-more, button.events-list__more"

// CroatiaHR scrapes the national tourism portal through a remote headless
// browser: content only materializes after script execution, so each
// pagination step is one render pass with one more scroll.
type CroatiaHR struct {
	render  render.Client
	baseURL string
	log     *zap.Logger
}

// NewCroatiaHR creates the croatiahr source over the given rendering client.
func NewCroatiaHR(rc render.Client, baseURL string) *CroatiaHR {
	return &CroatiaHR{
		render:  rc,
		baseURL: baseURL,
		log:     zap.L().With(zap.String("component", "scraper"), zap.String("source", "croatiahr")),
	}
}

// Name implements Source.
func (c *CroatiaHR) Name() string { return "croatiahr" }

// BaseURL implements Source.
func (c *CroatiaHR) BaseURL() string { return c.baseURL }

// Scrape implements Source. Infinite-scroll detection: each pass renders
// with one more scroll (and a "load more" click) and the element count is
// compared before and after; pagination stops when the page stops growing
// or the cap is reached. A failed first render aborts this source; a later
// failure ends the loop with whatever was collected.
func (c *CroatiaHR) Scrape(ctx context.Context, opts Options) ([]model.RawRecord, PageStats, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	listURL := c.baseURL + "/dogadanja"
	waitFor := containerUnion(croatiaHRStrategies)

	var all []model.RawRecord
	seen := make(map[string]bool)
	stats := PageStats{}
	prevTotal := 0

	for pass := 1; pass <= opts.MaxPages; pass++ {
		html, err := c.render.Content(ctx, render.ContentRequest{
			URL:             listURL,
			WaitForSelector: waitFor,
			ClickSelector:   croatiaHRLoadMore,
			ScrollPasses:    pass,
			TimeoutMs:       30000,
		})
		if err != nil {
			if pass == 1 {
				return nil, stats, err
			}
			c.log.Warn("render pass failed, ending pagination",
				zap.Int("pass", pass),
				zap.Error(err),
			)
			break
		}
		stats.Pages++

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			c.log.Warn("render parse failed, ending pagination",
				zap.Int("pass", pass),
				zap.Error(err),
			)
			break
		}

		// The rendered document is cumulative: it contains every record
		// loaded so far. Compare totals to detect scroll exhaustion.
		records, strategy := runStrategies(doc, croatiaHRStrategies)
		if len(records) <= prevTotal {
			c.log.Debug("no growth after scroll, stopping",
				zap.Int("pass", pass),
				zap.Int("records", len(records)),
			)
			break
		}
		prevTotal = len(records)

		fresh := dedupeByLink(records, seen)
		c.log.Debug("render pass scraped",
			zap.Int("pass", pass),
			zap.Int("new_records", len(fresh)),
			zap.String("strategy", strategy),
		)
		all = append(all, fresh...)
	}

	c.log.Info("scrape pass complete",
		zap.Int("records", len(all)),
		zap.Int("pages", stats.Pages),
	)
	return all, stats, nil
}

// containerUnion joins every strategy's container selector so the browser
// waits for whichever markup variant the site currently serves.
func containerUnion(strategies []extractStrategy) string {
	parts := make([]string, len(strategies))
	for i, s := range strategies {
		parts[i] = s.container
	}
	return strings.Join(parts, ", ")
}
