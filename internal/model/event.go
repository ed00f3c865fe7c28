// Package model defines the shared types of the event ingestion pipeline.
package model

import (
	"strings"
	"time"
)

// RawRecord holds the untyped field values extracted from a single DOM
// element on a listing page. It is ephemeral: produced by a scraper and
// consumed by a transformer within one run, never persisted.
type RawRecord struct {
	Title         string `json:"title"`
	DateText      string `json:"date_text"`
	TimeText      string `json:"time_text"`
	LocationText  string `json:"location_text"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	LinkURL       string `json:"link_url"`
	PriceText     string `json:"price_text"`
	DetailAddress string `json:"detail_address"` // richer address from a detail page, when fetched
}

// Event is the canonical, validated event record ready for persistence.
// Identity for deduplication is the (Title, Date) pair.
type Event struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"` // "HH:MM"
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	LinkURL     string    `json:"link_url,omitempty"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// DedupKey returns the identity string used by the dedup writer. Dates are
// truncated to the calendar day so time-of-day noise never forks identity.
func (e Event) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" + e.Date.Format("2006-01-02")
}

// Correction is one append-only venue correction entry. Corrections are
// recorded for manual review and never auto-applied.
type Correction struct {
	ID          string    `json:"id"`
	Original    string    `json:"original"`
	Corrected   string    `json:"corrected"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	Status      string    `json:"status"` // "pending", "approved", "rejected"
	CreatedAt   time.Time `json:"created_at"`
}
