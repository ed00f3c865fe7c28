// Package venue suggests canonical venue names for free-form location text
// and records operator-submitted corrections.
package venue

import (
	"context"
	_ "embed"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eventara/events-cli/internal/geocode"
	"github.com/eventara/events-cli/internal/model"
	"github.com/eventara/events-cli/internal/normalize"
)

//go:embed aliases.yaml
var aliasesYAML []byte

type aliasEntry struct {
	Canonical string   `yaml:"canonical"`
	Patterns  []string `yaml:"patterns"`
}

type aliasFile struct {
	Aliases []aliasEntry `yaml:"aliases"`
}

var aliases = mustLoadAliases()

func mustLoadAliases() []aliasEntry {
	var f aliasFile
	if err := yaml.Unmarshal(aliasesYAML, &f); err != nil {
		panic(eris.Wrap(err, "venue: parse embedded aliases"))
	}
	return f.Aliases
}

// Suggestion is one candidate canonical venue for a query.
type Suggestion struct {
	Name       string   `json:"name"`
	Similarity float64  `json:"similarity"`
	Confidence float64  `json:"confidence"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Source     string   `json:"source"` // "alias" or "cache"
}

// CorrectionStore persists venue corrections.
type CorrectionStore interface {
	SaveCorrection(ctx context.Context, c model.Correction) error
	ListCorrections(ctx context.Context, status string) ([]model.Correction, error)
}

// Service combines the alias table with the geocode cache for fuzzy venue
// matching.
type Service struct {
	cache       geocode.Cache
	corrections CorrectionStore
	log         *zap.Logger
}

// NewService creates a Service. corrections may be nil when the store has no
// correction support.
func NewService(cache geocode.Cache, corrections CorrectionStore) *Service {
	return &Service{
		cache:       cache,
		corrections: corrections,
		log:         zap.L().With(zap.String("component", "venue")),
	}
}

// Suggest returns candidate canonical names for a free-form venue string,
// best match first, at most limit entries.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	folded := normalize.FoldName(query)

	// Keep the best candidate per canonical name.
	best := map[string]Suggestion{}
	add := func(sg Suggestion) {
		key := normalize.FoldName(sg.Name)
		if cur, ok := best[key]; ok {
			if sg.Similarity < cur.Similarity ||
				(sg.Similarity == cur.Similarity && sg.Confidence <= cur.Confidence) {
				return
			}
			// Alias entries carry the canonical casing; keep it.
			if cur.Source == "alias" {
				sg.Name = cur.Name
			}
		}
		best[key] = sg
	}

	for _, a := range aliases {
		if sim := aliasSimilarity(folded, a); sim > 0 {
			add(Suggestion{Name: a.Canonical, Similarity: sim, Source: "alias"})
		}
	}

	entries, err := s.cache.Search(ctx, folded, limit*2)
	if err != nil {
		s.log.Warn("cache search failed", zap.String("query", query), zap.Error(err))
	}
	for _, e := range entries {
		sim := similarity(folded, e.VenueName)
		if sim <= 0 {
			continue
		}
		lat, lon := e.Latitude, e.Longitude
		add(Suggestion{
			Name:       e.VenueName,
			Similarity: sim,
			Confidence: e.Confidence,
			Latitude:   &lat,
			Longitude:  &lon,
			Source:     "cache",
		})
	}

	out := make([]Suggestion, 0, len(best))
	for _, sg := range best {
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecordCorrection stores a pending correction mapping a scraped location
// string to its canonical form.
func (s *Service) RecordCorrection(ctx context.Context, original, corrected, submittedBy string, lat, lon *float64) (*model.Correction, error) {
	if s.corrections == nil {
		return nil, eris.New("venue: correction store not configured")
	}
	original = strings.TrimSpace(original)
	corrected = strings.TrimSpace(corrected)
	if original == "" || corrected == "" {
		return nil, eris.New("venue: correction requires original and corrected names")
	}

	c := model.Correction{
		ID:          uuid.NewString(),
		Original:    original,
		Corrected:   corrected,
		Latitude:    lat,
		Longitude:   lon,
		SubmittedBy: submittedBy,
		Status:      "pending",
	}
	if err := s.corrections.SaveCorrection(ctx, c); err != nil {
		return nil, eris.Wrap(err, "venue: save correction")
	}
	return &c, nil
}

// ListCorrections returns corrections, filtered by status when non-empty.
func (s *Service) ListCorrections(ctx context.Context, status string) ([]model.Correction, error) {
	if s.corrections == nil {
		return nil, eris.New("venue: correction store not configured")
	}
	return s.corrections.ListCorrections(ctx, status)
}

// aliasSimilarity scores the folded query against one alias entry.
func aliasSimilarity(folded string, a aliasEntry) float64 {
	if folded == normalize.FoldName(a.Canonical) {
		return 1.0
	}
	var max float64
	for _, p := range a.Patterns {
		if sim := similarity(folded, p); sim > max {
			max = sim
		}
	}
	return max
}

// similarity scores two folded names: exact match 1.0, containment at least
// 0.8, otherwise token overlap.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	overlap := normalize.TokenOverlap(a, b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if overlap > 0.8 {
			return overlap
		}
		return 0.8
	}
	return overlap
}
