package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s+`)
	// Conservative allow-list: letters (Croatian diacritics included),
	// digits, and common listing punctuation. Everything else is stripped.
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}\s.,:;!?()'"/@&€$%+-]`)
)

// CleanText collapses whitespace and strips characters outside a
// conservative allow-list.
func CleanText(raw string) string {
	s := disallowedRe.ReplaceAllString(raw, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName normalizes a venue name into its cache key: lowercased, trimmed,
// whitespace collapsed, diacritics folded ("Kazalište" → "kazaliste").
func FoldName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = multiSpaceRe.ReplaceAllString(s, " ")
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	return s
}

// TokenOverlap returns the ratio of shared tokens between two strings,
// relative to the smaller token set. Used as the similarity floor for fuzzy
// venue matching when neither string contains the other.
func TokenOverlap(a, b string) float64 {
	ta := tokenSet(FoldName(a))
	tb := tokenSet(FoldName(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	small, large := ta, tb
	if len(tb) < len(ta) {
		small, large = tb, ta
	}

	shared := 0
	for tok := range small {
		if large[tok] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		if len(tok) > 1 {
			set[tok] = true
		}
	}
	return set
}
