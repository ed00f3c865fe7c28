package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_Aggregate(t *testing.T) {
	var s RunSummary
	s.Aggregate(SourceResult{Source: "entrio", Status: RunStatusOK, ScrapedEvents: 10, SavedEvents: 7})
	s.Aggregate(SourceResult{Source: "croatiahr", Status: RunStatusOK, ScrapedEvents: 5, SavedEvents: 5})

	assert.Equal(t, RunStatusOK, s.Status)
	assert.Equal(t, 15, s.ScrapedEvents)
	assert.Equal(t, 12, s.SavedEvents)
	assert.Len(t, s.Details, 2)
}

func TestRunSummary_Aggregate_PartialOnMixedStatus(t *testing.T) {
	var s RunSummary
	s.Aggregate(SourceResult{Source: "entrio", Status: RunStatusOK, ScrapedEvents: 10, SavedEvents: 10})
	s.Aggregate(SourceResult{Source: "croatiahr", Status: RunStatusError, Message: "browser session lost"})

	assert.Equal(t, RunStatusPartial, s.Status)
	assert.Equal(t, 10, s.ScrapedEvents)
	assert.Equal(t, "browser session lost", s.Details["croatiahr"].Message)
}

func TestRunSummary_Aggregate_PartialWhenErrorThenOK(t *testing.T) {
	var s RunSummary
	s.Aggregate(SourceResult{Source: "croatiahr", Status: RunStatusError})
	s.Aggregate(SourceResult{Source: "entrio", Status: RunStatusOK, ScrapedEvents: 3, SavedEvents: 3})

	assert.Equal(t, RunStatusPartial, s.Status)
}

func TestRunSummary_Aggregate_PartialWhenErrorThenPartial(t *testing.T) {
	var s RunSummary
	s.Aggregate(SourceResult{Source: "croatiahr", Status: RunStatusError})
	s.Aggregate(SourceResult{Source: "entrio", Status: RunStatusPartial, ScrapedEvents: 4, SavedEvents: 2})

	assert.Equal(t, RunStatusPartial, s.Status)
}

func TestRunSummary_Aggregate_AllErrors(t *testing.T) {
	var s RunSummary
	s.Aggregate(SourceResult{Source: "croatiahr", Status: RunStatusError})
	s.Aggregate(SourceResult{Source: "entrio", Status: RunStatusError})

	assert.Equal(t, RunStatusError, s.Status)
}

func TestEvent_DedupKey(t *testing.T) {
	date := time.Date(2025, 8, 15, 20, 30, 0, 0, time.UTC)
	a := Event{Title: "Koncert klape", Date: date}
	b := Event{Title: "  koncert KLAPE ", Date: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.Equal(t, "koncert klape|2025-08-15", a.DedupKey())
}
