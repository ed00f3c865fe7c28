package normalize

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// locationPlaceholders are scraped location values that carry no usable
// information. A canonical event must never keep one of these.
var locationPlaceholders = map[string]bool{
	"":         true,
	"croatia":  true,
	"hr":       true,
	"hrvatska": true,
}

// IsPlaceholderLocation reports whether the scraped location value is one of
// the disallowed placeholders.
func IsPlaceholderLocation(loc string) bool {
	return locationPlaceholders[strings.ToLower(strings.TrimSpace(loc))]
}

var titleCaser = cases.Title(language.Croatian)

// ResolveLocation picks the best location from the candidate values, in
// order of preference. When every candidate is a placeholder it derives a
// best-effort location from the event's link URL (subdomain, then first path
// segment) before giving up with "".
func ResolveLocation(linkURL string, candidates ...string) string {
	for _, c := range candidates {
		c = CleanText(c)
		if !IsPlaceholderLocation(c) {
			return c
		}
	}
	return locationFromURL(linkURL)
}

// locationFromURL derives a location hint from a source URL. Subdomains like
// "split.entrio.hr" or path segments like "/split/events" name the town the
// listing is scoped to.
func locationFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	parts := strings.Split(u.Hostname(), ".")
	if len(parts) > 2 {
		sub := parts[0]
		if sub != "www" && len(sub) > 2 {
			return titleCaser.String(sub)
		}
	}

	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		seg = strings.ReplaceAll(seg, "-", " ")
		if len(seg) > 3 && !IsPlaceholderLocation(seg) && !strings.ContainsAny(seg, "0123456789") {
			return titleCaser.String(seg)
		}
	}
	return ""
}
