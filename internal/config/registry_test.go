package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/types"
)

func TestLoadRegistry_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	data := `clusters:
  - name: Portugal Golden Visa
    slug: portugal-golden-visa
    priority: high
    primary_keywords: ["golden visa"]
    research_tier: premium
    cache_ttl_days: 90
categories:
  - name: visa
    score: 8
    keywords: ["visa"]
backlog:
  - title: Portugal Golden Visa Fund Investment Guide
    category: visa
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Clusters, 1)
	assert.Equal(t, "portugal-golden-visa", reg.Clusters[0].Slug)
	assert.Equal(t, types.TierPremium, reg.Clusters[0].ResearchTier)
	require.Len(t, reg.Backlog, 1)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("/nonexistent/registry.yaml")
	assert.Error(t, err)
}

func TestLoadRegistry_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clusters: [unclosed"), 0o644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestRegistryValidate_Errors(t *testing.T) {
	valid := types.TopicCluster{
		Name:            "Expat Taxes",
		Slug:            "expat-taxes",
		Priority:        types.PriorityMedium,
		PrimaryKeywords: []string{"expat tax"},
		ResearchTier:    types.TierStandard,
	}

	tests := []struct {
		name   string
		mutate func(*types.TopicCluster)
	}{
		{"empty slug", func(c *types.TopicCluster) { c.Slug = "" }},
		{"no primary keywords", func(c *types.TopicCluster) { c.PrimaryKeywords = nil }},
		{"unknown tier", func(c *types.TopicCluster) { c.ResearchTier = "platinum" }},
		{"unknown priority", func(c *types.TopicCluster) { c.Priority = "urgent" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			reg := &Registry{Clusters: []types.TopicCluster{c}}
			assert.Error(t, reg.Validate())
		})
	}
}

func TestRegistryValidate_DuplicateSlug(t *testing.T) {
	c := types.TopicCluster{
		Name:            "Expat Taxes",
		Slug:            "expat-taxes",
		Priority:        types.PriorityMedium,
		PrimaryKeywords: []string{"expat tax"},
		ResearchTier:    types.TierStandard,
	}
	reg := &Registry{Clusters: []types.TopicCluster{c, c}}

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cluster slug")
}

func TestRegistryValidate_CategoryWithoutKeywords(t *testing.T) {
	reg := &Registry{Categories: []Category{{Name: "visa", Score: 8}}}
	assert.Error(t, reg.Validate())

	// the default category is the one catch-all allowed to match nothing
	reg = &Registry{Categories: []Category{{Name: DefaultCategory, Score: 1}}}
	assert.NoError(t, reg.Validate())
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	require.NoError(t, reg.Validate())
	assert.NotEmpty(t, reg.Clusters)
	assert.NotEmpty(t, reg.Backlog)
	assert.Equal(t, 10, reg.MaxCategoryScore())
}

func TestCategoryScore(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, 8, reg.CategoryScore("visa"))
	assert.Equal(t, 1, reg.CategoryScore("something-unknown"))
}
