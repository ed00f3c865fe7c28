package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"dotted full", "15.08.2025", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"dotted full single digits", "5.8.2025", time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)},
		{"dotted full spaced", "15. 08. 2025", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"iso", "2025-08-15", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"croatian month genitive", "15. kolovoza 2025", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"croatian month nominative", "1. listopad 2025", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"croatian month november", "3. studenoga 2025", time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"yearless future", "15.08.", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"range do", "12.06. do 15.06.2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"range dash", "12.06. - 15.06.2026", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"bare year fallback", "ljeto 2026", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw, testNow)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_WhitespaceRoundTrip(t *testing.T) {
	// DD.MM.YYYY parses to the same calendar date regardless of surrounding
	// whitespace.
	want := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"15.08.2025", "  15.08.2025", "15.08.2025\n", "\t 15.08.2025 \t"} {
		got, ok := ParseDate(raw, testNow)
		assert.True(t, ok, "raw=%q", raw)
		assert.Equal(t, want, got, "raw=%q", raw)
	}
}

func TestParseDate_YearlessRollsToNextYear(t *testing.T) {
	// Today is 2025-07-10; June 1st has already passed, so "01.06." means
	// June 1st of next year.
	got, ok := ParseDate("01.06.", testNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDate_YearlessToday(t *testing.T) {
	got, ok := ParseDate("10.07.", testNow)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDate_NoMatch(t *testing.T) {
	for _, raw := range []string{"", "uskoro", "sljedeći tjedan"} {
		_, ok := ParseDate(raw, testNow)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"20:30", "20:30"},
		{"Počinje u 9:05", "09:05"},
		{"ulaz od 21h", "21:00"},
		{"21 h", "21:00"},
		{"nepoznato", "19:00"},
		{"", "19:00"},
		{"99:99", "19:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTime(tt.raw, "19:00"), "raw=%q", tt.raw)
	}
}
