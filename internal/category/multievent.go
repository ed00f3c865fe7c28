package category

import (
	"regexp"
	"strings"
)

// MaxSubEvents caps how many sub-event summaries are extracted from one
// description.
const MaxSubEvents = 5

var (
	datePrefixedLineRe = regexp.MustCompile(`^\s*\d{1,2}\.\s?\d{1,2}\.`)
	dayMarkerRe        = regexp.MustCompile(`(?i)^\s*(?:day\s+\d+|(\d+)\.\s*dan)\s*[:.\-]`)
	listLineRe         = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	timeOfDayCueRe     = regexp.MustCompile(`\d{1,2}(?::\d{2}|\s?h\b)`)
)

// DetectSubEvents scans a description for structured sub-listing lines:
// date-prefixed lines, "day N:" / "N. dan" markers, and bullet or numbered
// lines that carry a time-of-day cue. Returns up to MaxSubEvents summaries,
// nil when the description reads as a single event.
func DetectSubEvents(description string) []string {
	var subs []string
	for _, line := range strings.Split(description, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case datePrefixedLineRe.MatchString(trimmed):
		case dayMarkerRe.MatchString(trimmed):
		case listLineRe.MatchString(trimmed) && timeOfDayCueRe.MatchString(trimmed):
		default:
			continue
		}

		subs = append(subs, trimmed)
		if len(subs) == MaxSubEvents {
			break
		}
	}

	// A single structured line is just formatting, not a sub-event list.
	if len(subs) < 2 {
		return nil
	}
	return subs
}
