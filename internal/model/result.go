package model

import "time"

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusOK      RunStatus = "ok"
	RunStatusPartial RunStatus = "partial"
	RunStatusError   RunStatus = "error"
)

// SourceResult summarizes one source's scrape run.
type SourceResult struct {
	Source        string    `json:"source"`
	Status        RunStatus `json:"status"`
	ScrapedEvents int       `json:"scraped_events"`
	SavedEvents   int       `json:"saved_events"`
	Pages         int       `json:"pages"`
	Message       string    `json:"message,omitempty"`
}

// RunSummary aggregates per-source results for a combined run.
type RunSummary struct {
	Status        RunStatus               `json:"status"`
	ScrapedEvents int                     `json:"scraped_events"`
	SavedEvents   int                     `json:"saved_events"`
	Details       map[string]SourceResult `json:"details"`
}

// Run is one persisted scrape run row.
type Run struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Status     RunStatus  `json:"status"`
	Scraped    int        `json:"scraped"`
	Saved      int        `json:"saved"`
	Pages      int        `json:"pages"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Aggregate folds a per-source result into the summary totals.
func (s *RunSummary) Aggregate(r SourceResult) {
	if s.Details == nil {
		s.Details = make(map[string]SourceResult)
	}
	s.Details[r.Source] = r
	s.ScrapedEvents += r.ScrapedEvents
	s.SavedEvents += r.SavedEvents

	switch {
	case s.Status == "":
		s.Status = r.Status
	case s.Status == RunStatusOK && r.Status != RunStatusOK:
		s.Status = RunStatusPartial
	case s.Status == RunStatusError && r.Status != RunStatusError:
		s.Status = RunStatusPartial
	}
}
