package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlaceholderLocation(t *testing.T) {
	for _, loc := range []string{"", "Croatia", "croatia", "HR", "Hrvatska", "  hrvatska  "} {
		assert.True(t, IsPlaceholderLocation(loc), "loc=%q", loc)
	}
	for _, loc := range []string{"Split", "Stadion Poljud, Split", "Zagreb"} {
		assert.False(t, IsPlaceholderLocation(loc), "loc=%q", loc)
	}
}

func TestResolveLocation_PrefersStructuredFields(t *testing.T) {
	got := ResolveLocation("https://www.entrio.hr/event/1", "Stadion Poljud, Split", "Croatia")
	assert.Equal(t, "Stadion Poljud, Split", got)
}

func TestResolveLocation_SkipsPlaceholders(t *testing.T) {
	got := ResolveLocation("https://www.entrio.hr/event/1", "Croatia", "", "Dom sportova, Zagreb")
	assert.Equal(t, "Dom sportova, Zagreb", got)
}

func TestResolveLocation_SubdomainFallback(t *testing.T) {
	got := ResolveLocation("https://split.entrio.hr/event/99", "Croatia", "")
	assert.Equal(t, "Split", got)
}

func TestResolveLocation_PathFallback(t *testing.T) {
	got := ResolveLocation("https://croatia.hr/dubrovnik/ljetni-festival", "Croatia")
	assert.Equal(t, "Dubrovnik", got)
}

func TestResolveLocation_NothingLeft(t *testing.T) {
	got := ResolveLocation("", "Croatia", "HR")
	assert.Equal(t, "", got)
}
