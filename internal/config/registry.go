package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/article-engine/internal/types"
)

// Category defines one priority-scoring category for topic valuation.
// Categories are evaluated in slice order; the first keyword match wins.
type Category struct {
	Name     string   `yaml:"name"`
	Score    int      `yaml:"score"`
	Keywords []string `yaml:"keywords"`
}

// BacklogEntry is one high-value topic awaiting production
type BacklogEntry struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

// Registry holds the seed data injected into the classifier, dedup guard and
// governor at construction time: the cluster table, the category scoring
// table, and the high-value topic backlog.
type Registry struct {
	Clusters   []types.TopicCluster `yaml:"clusters"`
	Categories []Category           `yaml:"categories"`
	Backlog    []BacklogEntry       `yaml:"backlog"`
}

// LoadRegistry loads a cluster registry from a YAML seed file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry YAML: %w", err)
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}

	return &reg, nil
}

// Validate checks registry consistency: unique slugs, known tiers, non-empty keyword sets.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Clusters))
	for i, c := range r.Clusters {
		if c.Slug == "" {
			return fmt.Errorf("registry error: cluster %d (%q) has empty slug", i, c.Name)
		}
		if seen[c.Slug] {
			return fmt.Errorf("registry error: duplicate cluster slug %q", c.Slug)
		}
		seen[c.Slug] = true

		if len(c.PrimaryKeywords) == 0 {
			return fmt.Errorf("registry error: cluster %q has no primary keywords", c.Slug)
		}

		switch c.ResearchTier {
		case types.TierPremium, types.TierStandard, types.TierSynthesis:
		default:
			return fmt.Errorf("registry error: cluster %q has unknown research tier %q", c.Slug, c.ResearchTier)
		}

		switch c.Priority {
		case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		default:
			return fmt.Errorf("registry error: cluster %q has unknown priority %q", c.Slug, c.Priority)
		}
	}

	for i, cat := range r.Categories {
		if cat.Name == "" {
			return fmt.Errorf("registry error: category %d has empty name", i)
		}
		if len(cat.Keywords) == 0 && cat.Name != DefaultCategory {
			return fmt.Errorf("registry error: category %q has no keywords", cat.Name)
		}
	}

	return nil
}

// DefaultCategory is the fallback category name for topics matching nothing
const DefaultCategory = "general"

// DefaultRegistry returns the built-in seed registry used when no YAML file is
// provided. The cluster table mirrors the initial editorial strategy.
func DefaultRegistry() *Registry {
	return &Registry{
		Clusters: []types.TopicCluster{
			{
				Name:              "Portugal Golden Visa",
				Slug:              "portugal-golden-visa",
				Priority:          types.PriorityHigh,
				PrimaryKeywords:   []string{"golden visa", "portugal visa", "portugal residency"},
				SecondaryKeywords: []string{"investment visa", "portugal immigration"},
				ResearchTier:      types.TierPremium,
				CacheTTLDays:      90,
			},
			{
				Name:              "Spain Residency Visas",
				Slug:              "spain-visas",
				Priority:          types.PriorityHigh,
				PrimaryKeywords:   []string{"spain visa", "non-lucrative visa", "spain residency"},
				SecondaryKeywords: []string{"spain immigration", "spain digital nomad"},
				ResearchTier:      types.TierPremium,
				CacheTTLDays:      90,
			},
			{
				Name:              "Digital Nomad Visas",
				Slug:              "digital-nomad-visas",
				Priority:          types.PriorityMedium,
				PrimaryKeywords:   []string{"digital nomad", "remote work visa", "nomad visa"},
				ResearchTier:      types.TierStandard,
				CacheTTLDays:      90,
			},
			{
				Name:              "Expat Taxes",
				Slug:              "expat-taxes",
				Priority:          types.PriorityMedium,
				PrimaryKeywords:   []string{"expat tax", "foreign income", "tax residency", "nhr"},
				SecondaryKeywords: []string{"double taxation", "fbar"},
				ResearchTier:      types.TierStandard,
				CacheTTLDays:      60,
			},
			{
				Name:              "Offshore Business Formation",
				Slug:              "business-formation",
				Priority:          types.PriorityLow,
				PrimaryKeywords:   []string{"company formation", "llc abroad", "offshore company"},
				ResearchTier:      types.TierSynthesis,
				CacheTTLDays:      120,
			},
		},
		Categories: []Category{
			{Name: "visa-investment", Score: 10, Keywords: []string{"golden visa", "investment visa", "citizenship by investment", "residency by investment"}},
			{Name: "visa", Score: 8, Keywords: []string{"visa", "residency", "immigration", "work permit"}},
			{Name: "tax", Score: 6, Keywords: []string{"tax", "taxes", "taxation", "nhr", "fbar"}},
			{Name: "business-formation", Score: 4, Keywords: []string{"company formation", "llc", "incorporation", "offshore company"}},
			{Name: DefaultCategory, Score: 1},
		},
		Backlog: []BacklogEntry{
			{Title: "Portugal Golden Visa Fund Investment Guide", Category: "visa-investment"},
			{Title: "Greece Golden Visa Real Estate Requirements", Category: "visa-investment"},
			{Title: "Spain Non-Lucrative Visa Income Requirements", Category: "visa"},
			{Title: "Italy Digital Nomad Visa Application Steps", Category: "visa"},
			{Title: "Portugal NHR Regime Replacement Explained", Category: "tax"},
			{Title: "US Expat Tax Filing Deadlines", Category: "tax"},
			{Title: "Estonia e-Residency Company Setup", Category: "business-formation"},
		},
	}
}

// MaxCategoryScore returns the highest score defined in the category table
func (r *Registry) MaxCategoryScore() int {
	max := 0
	for _, c := range r.Categories {
		if c.Score > max {
			max = c.Score
		}
	}
	return max
}

// CategoryScore returns the score configured for a named category, or the
// default category's score when the name is unknown.
func (r *Registry) CategoryScore(name string) int {
	def := 0
	for _, c := range r.Categories {
		if c.Name == name {
			return c.Score
		}
		if c.Name == DefaultCategory {
			def = c.Score
		}
	}
	return def
}
