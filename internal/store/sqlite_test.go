package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventara/events-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSaveEventsDedup(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	batch := []model.Event{
		testEvent("Koncert klape", date),
		testEvent("Izložba fotografija", date),
	}

	saved, err := s.SaveEvents(ctx, "entrio", batch)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	// Second run over the unchanged page saves nothing.
	saved, err = s.SaveEvents(ctx, "entrio", batch)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestSQLiteSaveEventsIdentityIgnoresCase(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	saved, err := s.SaveEvents(ctx, "entrio", []model.Event{testEvent("Koncert klape", date)})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	saved, err = s.SaveEvents(ctx, "entrio", []model.Event{testEvent("  KONCERT KLAPE ", date)})
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestSQLiteSaveEventsSameTitleDifferentDate(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	saved, err := s.SaveEvents(ctx, "entrio", []model.Event{
		testEvent("Koncert klape", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
		testEvent("Koncert klape", time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "croatiahr")
	require.NoError(t, err)

	err = s.CompleteRun(ctx, run.ID, model.SourceResult{
		Source:        "croatiahr",
		Status:        model.RunStatusOK,
		ScrapedEvents: 7,
		SavedEvents:   5,
		Pages:         2,
	})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, RunFilter{Source: "croatiahr"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusOK, runs[0].Status)
	assert.Equal(t, 7, runs[0].Scraped)
	assert.Equal(t, 5, runs[0].Saved)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "entrio")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "render endpoint unreachable"))

	runs, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusError})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "render endpoint unreachable", runs[0].Message)

	assert.Error(t, s.FailRun(ctx, "missing", "x"))
}

func TestSQLiteCoordinateBackfill(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	lat, lon := 45.815, 15.982
	withCoords := testEvent("Koncert A", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	withCoords.Latitude, withCoords.Longitude = &lat, &lon
	without := testEvent("Koncert B", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC))

	saved, err := s.SaveEvents(ctx, "entrio", []model.Event{withCoords, without})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	missing, err := s.ListEventsMissingCoordinates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "Koncert B", missing[0].Title)
	assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), missing[0].Date)

	require.NoError(t, s.UpdateEventCoordinates(ctx, missing[0].ID, 43.508, 16.440))

	missing, err = s.ListEventsMissingCoordinates(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSQLiteCorrections(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCorrection(ctx, model.Correction{
		Original:  "pulska arena",
		Corrected: "Arena Pula",
		Status:    "pending",
	}))
	require.NoError(t, s.SaveCorrection(ctx, model.Correction{
		Original:  "poljud",
		Corrected: "Stadion Poljud",
		Status:    "approved",
	}))

	all, err := s.ListCorrections(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.ListCorrections(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Arena Pula", pending[0].Corrected)
	assert.NotEmpty(t, pending[0].ID)
}
