// Package transform turns raw scraped records into canonical events. One
// Transformer is built per source, carrying that source's defaults.
package transform

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventara/events-cli/internal/category"
	"github.com/eventara/events-cli/internal/model"
	"github.com/eventara/events-cli/internal/normalize"
)

// fallbackDateOffset is applied when no date pattern matches at all: the
// record survives with a deterministic near-future date instead of being
// dropped for date reasons alone.
const fallbackDateOffset = 30 * 24 * time.Hour

// minTitleLen is the hard floor below which a record is rejected.
const minTitleLen = 3

// Config carries one source's transformation defaults.
type Config struct {
	Source       string
	BaseURL      string
	DefaultTime  string // "HH:MM" applied when no time is found
	DefaultPrice string // applied when no price text is scraped
	Now          func() time.Time
}

// Transformer normalizes raw records for one source. Pure except logging.
type Transformer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Transformer for the given source configuration.
func New(cfg Config) *Transformer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultTime == "" {
		cfg.DefaultTime = "20:00"
	}
	if cfg.DefaultPrice == "" {
		cfg.DefaultPrice = "Free"
	}
	return &Transformer{
		cfg: cfg,
		log: zap.L().With(zap.String("component", "transform"), zap.String("source", cfg.Source)),
	}
}

// Normalize converts one raw record into a canonical event. Returns
// (nil, false) only when the title is too short or the location is still a
// placeholder after every fallback.
func (t *Transformer) Normalize(raw model.RawRecord) (*model.Event, bool) {
	now := t.cfg.Now().UTC()

	title := normalize.CleanText(raw.Title)
	if len([]rune(title)) < minTitleLen {
		t.log.Debug("rejecting record: title too short", zap.String("title", title))
		return nil, false
	}

	location := normalize.ResolveLocation(
		t.absolutize(raw.LinkURL),
		raw.DetailAddress,
		raw.LocationText,
	)
	if normalize.IsPlaceholderLocation(location) {
		t.log.Debug("rejecting record: no usable location", zap.String("title", title))
		return nil, false
	}

	date, ok := normalize.ParseDate(raw.DateText, now)
	if !ok {
		date = now.Add(fallbackDateOffset).Truncate(24 * time.Hour)
		t.log.Debug("no date pattern matched, using fallback",
			zap.String("title", title),
			zap.String("date_text", raw.DateText),
		)
	}

	description := normalize.CleanText(raw.Description)
	if description == "" {
		description = title
	}
	if subs := category.DetectSubEvents(raw.Description); subs != nil {
		description = fmt.Sprintf("%s [multi-event: %d sub-events]", description, len(subs))
	}

	price := normalize.CleanText(raw.PriceText)
	if price == "" {
		price = t.cfg.DefaultPrice
	}

	ev := &model.Event{
		Title:       title,
		Date:        date,
		Time:        normalize.ParseTime(raw.TimeText+" "+raw.DateText, t.cfg.DefaultTime),
		Location:    location,
		Description: description,
		Price:       price,
		ImageURL:    t.absolutize(raw.ImageURL),
		LinkURL:     t.absolutize(raw.LinkURL),
		Category:    category.Categorize(title, description, location),
		Source:      t.cfg.Source,
	}
	return ev, true
}

// NormalizeAll maps a scrape pass through Normalize, dropping rejects.
func (t *Transformer) NormalizeAll(raws []model.RawRecord) []model.Event {
	events := make([]model.Event, 0, len(raws))
	for _, raw := range raws {
		if ev, ok := t.Normalize(raw); ok {
			events = append(events, *ev)
		}
	}
	if dropped := len(raws) - len(events); dropped > 0 {
		t.log.Info("dropped invalid records",
			zap.Int("scraped", len(raws)),
			zap.Int("dropped", dropped),
		)
	}
	return events
}

// absolutize resolves a possibly relative URL against the source base URL.
func (t *Transformer) absolutize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(t.cfg.BaseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}
