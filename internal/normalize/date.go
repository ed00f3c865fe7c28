// Package normalize converts locale-specific raw strings from Croatian
// event listings into canonical date, time, location, and text values.
// Everything here is pure; callers decide what to do with misses.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// croatianMonths maps Croatian month names (nominative and genitive forms,
// lowercase) to month numbers.
var croatianMonths = map[string]time.Month{
	"sijecanj": time.January, "siječanj": time.January, "siječnja": time.January, "sijecnja": time.January,
	"veljaca": time.February, "veljača": time.February, "veljače": time.February, "veljace": time.February,
	"ozujak": time.March, "ožujak": time.March, "ožujka": time.March, "ozujka": time.March,
	"travanj": time.April, "travnja": time.April,
	"svibanj": time.May, "svibnja": time.May,
	"lipanj": time.June, "lipnja": time.June,
	"srpanj": time.July, "srpnja": time.July,
	"kolovoz": time.August, "kolovoza": time.August,
	"rujan": time.September, "rujna": time.September,
	"listopad": time.October, "listopada": time.October,
	"studeni": time.November, "studenog": time.November, "studenoga": time.November,
	"prosinac": time.December, "prosinca": time.December,
}

// datePattern pairs a regexp with the function that turns its submatches
// into a date. Patterns are tried in order; first match wins.
type datePattern struct {
	re      *regexp.Regexp
	extract func(m []string, now time.Time) (time.Time, bool)
}

var datePatterns = []datePattern{
	// Range forms resolve to the end date: "12.06. do 15.06.2025", "12.06. - 15.06.2025".
	{
		re: regexp.MustCompile(`\d{1,2}\.\s?\d{1,2}\.\s*(?:do|-|–)\s*(\d{1,2})\.\s?(\d{1,2})\.(\d{4})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			return buildDate(m[3], m[2], m[1])
		},
	},
	// DD.MM.YYYY
	{
		re: regexp.MustCompile(`(\d{1,2})\.\s?(\d{1,2})\.\s?(\d{4})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			return buildDate(m[3], m[2], m[1])
		},
	},
	// YYYY-MM-DD
	{
		re: regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			return buildDate(m[1], m[2], m[3])
		},
	},
	// DD. Month YYYY with Croatian month names: "15. kolovoza 2025".
	{
		re: regexp.MustCompile(`(\d{1,2})\.\s*([\p{L}]+)\s+(\d{4})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			month, ok := croatianMonths[strings.ToLower(m[2])]
			if !ok {
				return time.Time{}, false
			}
			day, err := strconv.Atoi(m[1])
			if err != nil || day < 1 || day > 31 {
				return time.Time{}, false
			}
			year, _ := strconv.Atoi(m[3])
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
		},
	},
	// Year-less DD.MM. — assume the current year, roll to next year when
	// the resulting date is already in the past.
	{
		re: regexp.MustCompile(`(\d{1,2})\.\s?(\d{1,2})\.`),
		extract: func(m []string, now time.Time) (time.Time, bool) {
			d, ok := buildDate(strconv.Itoa(now.Year()), m[2], m[1])
			if !ok {
				return time.Time{}, false
			}
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if d.Before(today) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		},
	},
	// Bare 4-digit year anywhere in the string falls back to January 1st.
	{
		re: regexp.MustCompile(`(20\d{2})`),
		extract: func(m []string, _ time.Time) (time.Time, bool) {
			year, _ := strconv.Atoi(m[1])
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		},
	},
}

// ParseDate parses a raw Croatian-locale date string against the ordered
// pattern table. Returns (zero, false) when no pattern matches; the caller
// applies its own deterministic fallback.
func ParseDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, p := range datePatterns {
		if m := p.re.FindStringSubmatch(raw); m != nil {
			if d, ok := p.extract(m, now); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

var (
	timeHHMMRe  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	timeHourHRe = regexp.MustCompile(`(\d{1,2})\s?h\b`)
)

// ParseTime extracts an "HH:MM" time from the raw string, accepting "HH:MM"
// and the Croatian "<H>h" form ("20h"). Returns def when nothing matches.
func ParseTime(raw, def string) string {
	if m := timeHHMMRe.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			return pad2(h) + ":" + pad2(min)
		}
	}
	if m := timeHourHRe.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h < 24 {
			return pad2(h) + ":00"
		}
	}
	return def
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
