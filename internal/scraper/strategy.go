package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eventara/events-cli/internal/model"
)

// fieldSelectors holds the per-field sub-selectors of one strategy. Each
// value may list several comma-separated candidates; goquery resolves the
// union and First() wins.
type fieldSelectors struct {
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
	Price       string
	Image       string
	Link        string
}

// extractStrategy is one way of reading a listing page: a container
// selector identifying event elements plus per-field sub-selectors.
type extractStrategy struct {
	name      string
	container string
	fields    fieldSelectors
}

// extract pulls raw records from every container element in the document.
func (s extractStrategy) extract(doc *goquery.Document) []model.RawRecord {
	var records []model.RawRecord
	doc.Find(s.container).Each(func(_ int, el *goquery.Selection) {
		rec := model.RawRecord{
			Title:        selText(el, s.fields.Title),
			DateText:     selText(el, s.fields.Date),
			TimeText:     selText(el, s.fields.Time),
			LocationText: selText(el, s.fields.Location),
			Description:  selText(el, s.fields.Description),
			PriceText:    selText(el, s.fields.Price),
			ImageURL:     selAttr(el, s.fields.Image, "src", "data-src"),
			LinkURL:      selAttr(el, s.fields.Link, "href"),
		}
		if rec.LinkURL == "" {
			rec.LinkURL, _ = el.Attr("href")
		}
		if rec.Title == "" {
			return
		}
		records = append(records, rec)
	})
	return records
}

// runStrategies tries each strategy in order and returns the first
// non-empty result along with the winning strategy's name.
func runStrategies(doc *goquery.Document, strategies []extractStrategy) ([]model.RawRecord, string) {
	for _, s := range strategies {
		if records := s.extract(doc); len(records) > 0 {
			return records, s.name
		}
	}
	return nil, ""
}

func selText(el *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(el.Find(selector).First().Text())
}

func selAttr(el *goquery.Selection, selector string, attrs ...string) string {
	if selector == "" {
		return ""
	}
	found := el.Find(selector).First()
	for _, attr := range attrs {
		if v, ok := found.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// dedupeByLink drops records whose link URL was already seen. Cumulative
// infinite-scroll documents re-contain every previous record on each pass.
func dedupeByLink(records []model.RawRecord, seen map[string]bool) []model.RawRecord {
	var fresh []model.RawRecord
	for _, rec := range records {
		key := rec.LinkURL
		if key == "" {
			key = rec.Title + "|" + rec.DateText
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		fresh = append(fresh, rec)
	}
	return fresh
}
