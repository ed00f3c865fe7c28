package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventara/events-cli/internal/model"
	"github.com/eventara/events-cli/internal/scraper"
	"github.com/eventara/events-cli/internal/store"
	"github.com/eventara/events-cli/internal/transform"
)

type fakeSource struct {
	name    string
	records []model.RawRecord
	pages   int
	err     error
	panics  bool
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) BaseURL() string { return "https://" + f.name + ".example" }

func (f *fakeSource) Scrape(context.Context, scraper.Options) ([]model.RawRecord, scraper.PageStats, error) {
	if f.panics {
		panic("selector table corrupted")
	}
	return f.records, scraper.PageStats{Pages: f.pages}, f.err
}

type fakeStore struct {
	store.Store // unimplemented methods panic, which the tests never reach

	runs    []string
	fails   []string
	saved   map[string]int
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]int{}}
}

func (f *fakeStore) CreateRun(_ context.Context, source string) (*model.Run, error) {
	f.runs = append(f.runs, source)
	return &model.Run{ID: "run-" + source, Source: source, Status: model.RunStatusRunning}, nil
}

func (f *fakeStore) CompleteRun(_ context.Context, runID string, _ model.SourceResult) error {
	return nil
}

func (f *fakeStore) FailRun(_ context.Context, runID string, _ string) error {
	f.fails = append(f.fails, runID)
	return nil
}

func (f *fakeStore) SaveEvents(_ context.Context, source string, events []model.Event) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved[source] += len(events)
	return len(events), nil
}

func fixedNow() time.Time {
	return time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
}

func goodRecord(title string) model.RawRecord {
	return model.RawRecord{
		Title:        title,
		DateText:     "15.08.2025",
		LocationText: "Split",
	}
}

func newTestEngine(st store.Store, sources ...scraper.Source) *Engine {
	registry := scraper.NewRegistry()
	transformers := map[string]*transform.Transformer{}
	for _, s := range sources {
		registry.Register(s)
		transformers[s.Name()] = transform.New(transform.Config{
			Source:      s.Name(),
			BaseURL:     s.BaseURL(),
			DefaultTime: "20:00",
			Now:         fixedNow,
		})
	}
	return New(registry, transformers, nil, st, 2)
}

func TestRunSourceOK(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeSource{
		name:    "entrio",
		records: []model.RawRecord{goodRecord("Koncert klape"), goodRecord("Jazz večer")},
		pages:   2,
	})

	result := e.RunSource(context.Background(), "entrio", Options{})

	assert.Equal(t, model.RunStatusOK, result.Status)
	assert.Equal(t, 2, result.ScrapedEvents)
	assert.Equal(t, 2, result.SavedEvents)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"entrio"}, st.runs)
}

func TestRunSourceCountsRawRecordsAsScraped(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeSource{
		name: "entrio",
		records: []model.RawRecord{
			goodRecord("Koncert klape"),
			goodRecord("ab"), // rejected by the transformer
			goodRecord("Jazz večer"),
		},
		pages: 1,
	})

	result := e.RunSource(context.Background(), "entrio", Options{})

	assert.Equal(t, model.RunStatusOK, result.Status)
	assert.Equal(t, 3, result.ScrapedEvents, "scraped counts raw records, before transform rejects")
	assert.Equal(t, 2, result.SavedEvents)
}

func TestRunSourceUnknown(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st)

	result := e.RunSource(context.Background(), "nope", Options{})
	assert.Equal(t, model.RunStatusError, result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, st.runs)
}

func TestRunSourceScrapeError(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeSource{name: "entrio", err: assert.AnError})

	result := e.RunSource(context.Background(), "entrio", Options{})
	assert.Equal(t, model.RunStatusError, result.Status)
	assert.Contains(t, result.Message, assert.AnError.Error())
	assert.Equal(t, []string{"run-entrio"}, st.fails)
}

func TestRunSourcePartialOnLateFailure(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeSource{
		name:    "croatiahr",
		records: []model.RawRecord{goodRecord("Izložba fotografija")},
		pages:   1,
		err:     assert.AnError,
	})

	result := e.RunSource(context.Background(), "croatiahr", Options{})
	assert.Equal(t, model.RunStatusPartial, result.Status)
	assert.Equal(t, 1, result.SavedEvents)
}

func TestRunSourcePanicCaptured(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st, &fakeSource{name: "entrio", panics: true})

	result := e.RunSource(context.Background(), "entrio", Options{})
	assert.Equal(t, model.RunStatusError, result.Status)
	assert.Contains(t, result.Message, "panic")
	assert.Equal(t, []string{"run-entrio"}, st.fails)
}

func TestRunSourcePersistFailure(t *testing.T) {
	st := newFakeStore()
	st.saveErr = assert.AnError
	e := newTestEngine(st, &fakeSource{
		name:    "entrio",
		records: []model.RawRecord{goodRecord("Koncert klape")},
	})

	result := e.RunSource(context.Background(), "entrio", Options{})
	assert.Equal(t, model.RunStatusError, result.Status)
	assert.Equal(t, 0, result.SavedEvents)
}

func TestRunAllIsolatesFailures(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st,
		&fakeSource{name: "entrio", records: []model.RawRecord{goodRecord("Koncert klape")}, pages: 1},
		&fakeSource{name: "croatiahr", panics: true},
	)

	summary := e.RunAll(context.Background(), Options{})

	require.Len(t, summary.Details, 2)
	assert.Equal(t, model.RunStatusOK, summary.Details["entrio"].Status)
	assert.Equal(t, model.RunStatusError, summary.Details["croatiahr"].Status)
	assert.Equal(t, model.RunStatusPartial, summary.Status)
	assert.Equal(t, 1, summary.SavedEvents)
	assert.Equal(t, 1, st.saved["entrio"])
}

func TestRunAllAllOK(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st,
		&fakeSource{name: "entrio", records: []model.RawRecord{goodRecord("Koncert klape")}},
		&fakeSource{name: "croatiahr", records: []model.RawRecord{goodRecord("Izložba fotografija")}},
	)

	summary := e.RunAll(context.Background(), Options{})
	assert.Equal(t, model.RunStatusOK, summary.Status)
	assert.Equal(t, 2, summary.ScrapedEvents)
	assert.Equal(t, 2, summary.SavedEvents)
}
