package store

import (
	"context"

	"github.com/eventara/events-cli/internal/model"
)

// RunFilter specifies criteria for listing scrape runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source string          `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the ingestion pipeline.
// SaveEvents is the dedup writer: it decides, per event, whether the
// (title, date) identity already exists.
type Store interface {
	// Events
	SaveEvents(ctx context.Context, source string, events []model.Event) (int, error)
	ListEventsMissingCoordinates(ctx context.Context, limit int) ([]model.Event, error)
	UpdateEventCoordinates(ctx context.Context, eventID string, lat, lon float64) error

	// Runs
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result model.SourceResult) error
	FailRun(ctx context.Context, runID string, message string) error
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Venue corrections
	SaveCorrection(ctx context.Context, c model.Correction) error
	ListCorrections(ctx context.Context, status string) ([]model.Correction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
