// Package category assigns event categories from free text and detects
// multi-event descriptions. Both operations are deterministic.
package category

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// DefaultCategory is assigned when no keyword scores.
const DefaultCategory = "General"

// Keyword match weights by field.
const (
	titleWeight       = 3
	descriptionWeight = 2
	otherWeight       = 1
)

var keywordTable = mustLoadKeywords()

func mustLoadKeywords() map[string][]string {
	var table map[string][]string
	if err := yaml.Unmarshal(keywordsYAML, &table); err != nil {
		panic("category: embedded keywords.yaml is invalid: " + err.Error())
	}
	return table
}

// Categories returns the known category names, sorted.
func Categories() []string {
	names := make([]string, 0, len(keywordTable))
	for name := range keywordTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categorize scores title, description, and location against the keyword
// table. Title matches weigh 3x, description 2x, location 1x; the highest
// total wins, ties broken by category name for determinism. No match yields
// DefaultCategory.
func Categorize(title, description, location string) string {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	location = strings.ToLower(location)

	best := DefaultCategory
	bestScore := 0

	for _, name := range Categories() {
		score := 0
		for _, kw := range keywordTable[name] {
			if containsKeyword(title, kw) {
				score += titleWeight
			}
			if containsKeyword(description, kw) {
				score += descriptionWeight
			}
			if containsKeyword(location, kw) {
				score += otherWeight
			}
		}
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	return best
}

// shortKeywordLen is the length at or below which a keyword only matches on
// word boundaries. Bare substring matching would let "dj" fire inside
// unrelated Croatian words ("djeca", "odjel").
const shortKeywordLen = 3

func containsKeyword(text, kw string) bool {
	if len(kw) > shortKeywordLen {
		return strings.Contains(text, kw)
	}
	for i := 0; ; {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		j += i
		end := j + len(kw)
		prev, _ := utf8.DecodeLastRuneInString(text[:j])
		next, _ := utf8.DecodeRuneInString(text[end:])
		if (j == 0 || !isWordRune(prev)) && (end == len(text) || !isWordRune(next)) {
			return true
		}
		i = end
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
