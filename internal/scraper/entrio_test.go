package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves canned HTML by URL.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	body, ok := s.pages[url]
	if !ok {
		return nil, eris.Errorf("stub: no page for %s", url)
	}
	return []byte(body), nil
}

func entrioListingHTML(events ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, ev := range events {
		b.WriteString(ev)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func entrioCard(title, date, venue, link string) string {
	return fmt.Sprintf(`<div class="event-card">
		<a href="%s"><img src="/img%s.jpg"/></a>
		<h3 class="event-card__title">%s</h3>
		<span class="event-card__date">%s</span>
		<span class="event-card__venue">%s</span>
	</div>`, link, link, title, date, venue)
}

func TestEntrio_Scrape_Paginates(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://www.entrio.hr/events?page=1": entrioListingHTML(
			entrioCard("Koncert klape", "15.08.2025", "Stadion Poljud, Split", "/event/1"),
			entrioCard("Jazz večer", "20.08.2025", "Tvornica kulture, Zagreb", "/event/2"),
		),
		"https://www.entrio.hr/events?page=2": entrioListingHTML(
			entrioCard("Izložba fotografija", "01.09.2025", "Galerija Klovićevi dvori, Zagreb", "/event/3"),
		),
		// Page 3 repeats page 2's content: no new records, pagination stops.
		"https://www.entrio.hr/events?page=3": entrioListingHTML(
			entrioCard("Izložba fotografija", "01.09.2025", "Galerija Klovićevi dvori, Zagreb", "/event/3"),
		),
	}}

	src := NewEntrio(f, "https://www.entrio.hr")
	records, stats, err := src.Scrape(context.Background(), Options{MaxPages: 5})
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, "Koncert klape", records[0].Title)
	assert.Equal(t, "15.08.2025", records[0].DateText)
	assert.Equal(t, "Stadion Poljud, Split", records[0].LocationText)
	assert.Equal(t, "/event/1", records[0].LinkURL)
	assert.Equal(t, "/img/event/1.jpg", records[0].ImageURL)
}

func TestEntrio_Scrape_RespectsPageCap(t *testing.T) {
	pages := map[string]string{}
	for i := 1; i <= 10; i++ {
		pages[fmt.Sprintf("https://www.entrio.hr/events?page=%d", i)] = entrioListingHTML(
			entrioCard(fmt.Sprintf("Event %d", i), "15.08.2025", "Split", fmt.Sprintf("/event/%d", i)),
		)
	}
	f := &stubFetcher{pages: pages}

	src := NewEntrio(f, "https://www.entrio.hr")
	records, stats, err := src.Scrape(context.Background(), Options{MaxPages: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, stats.Pages)
}

func TestEntrio_Scrape_PageFailureEndsLoop(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://www.entrio.hr/events?page=1": entrioListingHTML(
			entrioCard("Koncert klape", "15.08.2025", "Split", "/event/1"),
		),
		// page 2 missing: fetch fails, run keeps what it has
	}}

	src := NewEntrio(f, "https://www.entrio.hr")
	records, stats, err := src.Scrape(context.Background(), Options{MaxPages: 5})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stats.Pages)
}

func TestEntrio_Scrape_FirstPageFailureAborts(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{}}

	src := NewEntrio(f, "https://www.entrio.hr")
	_, _, err := src.Scrape(context.Background(), Options{MaxPages: 2})
	require.Error(t, err)
}

func TestEntrio_Scrape_FallbackStrategy(t *testing.T) {
	// No .event-card markup: the generic article strategy picks it up.
	f := &stubFetcher{pages: map[string]string{
		"https://www.entrio.hr/events?page=1": `<html><body>
			<article>
				<h3>Ljetni festival</h3>
				<time>01.07.2025</time>
				<span class="location">Zadar</span>
				<a href="/event/9"></a>
			</article>
		</body></html>`,
	}}

	src := NewEntrio(f, "https://www.entrio.hr")
	records, _, err := src.Scrape(context.Background(), Options{MaxPages: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ljetni festival", records[0].Title)
	assert.Equal(t, "Zadar", records[0].LocationText)
}

func TestEntrio_Scrape_DetailFetch(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://www.entrio.hr/events?page=1": entrioListingHTML(
			entrioCard("Koncert klape", "15.08.2025", "Split", "/event/1"),
			entrioCard("Jazz večer", "20.08.2025", "Zagreb", "/event/2"),
		),
		"https://www.entrio.hr/event/1": `<html><body>
			<address>Stadion Poljud, Mediteranskih igara 2, Split</address>
		</body></html>`,
	}}

	src := NewEntrio(f, "https://www.entrio.hr")
	records, _, err := src.Scrape(context.Background(), Options{
		MaxPages:         1,
		FetchDetails:     true,
		DetailSampleRate: 2, // only record 0 sampled
		DetailDelay:      1,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Stadion Poljud, Mediteranskih igara 2, Split", records[0].DetailAddress)
	assert.Empty(t, records[1].DetailAddress)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewEntrio(&stubFetcher{}, "https://www.entrio.hr"))

	s, err := reg.Get("entrio")
	require.NoError(t, err)
	assert.Equal(t, "entrio", s.Name())

	_, err = reg.Get("nope")
	require.Error(t, err)

	assert.Equal(t, []string{"entrio"}, reg.Names())
	assert.Len(t, reg.All(), 1)
}
