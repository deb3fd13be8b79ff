package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/config"
)

func testOptions() Options {
	return Options{
		Categories: []config.Category{
			{Name: "visa-investment", Score: 10, Keywords: []string{"golden visa", "investment visa"}},
			{Name: "visa", Score: 8, Keywords: []string{"visa", "residency"}},
			{Name: "tax", Score: 6, Keywords: []string{"tax", "nhr"}},
			{Name: config.DefaultCategory, Score: 1},
		},
		Backlog: []config.BacklogEntry{
			{Title: "Greece Golden Visa Real Estate Requirements", Category: "visa-investment"},
			{Title: "US Expat Tax Filing Deadlines", Category: "tax"},
		},
		OverlapThreshold:  0.8,
		LowValueThreshold: 3,
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "portugal golden visa guide 2025", Normalize("Portugal Golden-Visa: Guide! (2025)"))
	assert.Equal(t, "a b c", Normalize("  a   B\tc  "))
	assert.Equal(t, "", Normalize("!!! ???"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "spain-non-lucrative-visa-guide", Slugify("Spain Non-Lucrative Visa Guide"))
}

func TestValidate_ExactDuplicate(t *testing.T) {
	g := NewGuard(testOptions())
	g.Load([]string{"Portugal Golden Visa Guide"})

	result := g.Validate("Portugal Golden Visa Guide!")
	assert.False(t, result.Approved)
	assert.True(t, result.IsDuplicate)
	assert.NotEmpty(t, result.SuggestedAlternative)
}

func TestValidate_SlugFormDuplicate(t *testing.T) {
	g := NewGuard(testOptions())
	g.Load([]string{"Portugal Golden Visa Guide"})

	result := g.Validate("portugal-golden-visa-guide")
	assert.False(t, result.Approved)
	assert.True(t, result.IsDuplicate)
}

func TestValidate_NearDuplicateBoundary(t *testing.T) {
	g := NewGuard(testOptions())
	g.Load([]string{"Portugal Digital Nomad Visa Guide"})

	// Candidate has 6 words, 5 shared with the completed title: ratio 5/6 ≈ 0.83 > 0.8.
	dup := g.Validate("Portugal Digital Nomad Visa Guide 2025")
	assert.True(t, dup.IsDuplicate)
	assert.False(t, dup.Approved)

	// Exactly 0.8 overlap must NOT be flagged: threshold is exclusive.
	g2 := NewGuard(testOptions())
	g2.Load([]string{"alpha beta gamma delta"})
	ok := g2.Validate("alpha beta gamma delta epsilon") // 4/5 = 0.8
	assert.False(t, ok.IsDuplicate)
	assert.True(t, ok.Approved)
}

func TestValidate_OverlapAboveThreshold(t *testing.T) {
	g := NewGuard(testOptions())
	g.Load([]string{"one two three four five six seven eight nine"})

	// 9 of 10 candidate words overlap: 0.9 > 0.8.
	result := g.Validate("one two three four five six seven eight nine ten")
	assert.True(t, result.IsDuplicate)
}

func TestValidate_PriorityScoring(t *testing.T) {
	g := NewGuard(testOptions())

	top := g.Validate("Portugal Golden Visa Fund Options")
	assert.Equal(t, 10, top.PriorityScore)
	assert.Equal(t, "visa-investment", top.Category)
	assert.True(t, top.Approved)

	mid := g.Validate("NHR Tax Regime Changes")
	assert.Equal(t, 6, mid.PriorityScore)
	assert.Equal(t, "tax", mid.Category)

	low := g.Validate("Best Beaches in the Algarve")
	assert.Equal(t, 1, low.PriorityScore)
	assert.Equal(t, config.DefaultCategory, low.Category)
}

func TestValidate_CategoryPrecedenceOrder(t *testing.T) {
	// "golden visa" matches both visa-investment and visa; first category wins.
	g := NewGuard(testOptions())

	result := g.Validate("Golden Visa Tax Implications")
	assert.Equal(t, "visa-investment", result.Category)
	assert.Equal(t, 10, result.PriorityScore)
}

func TestValidate_LowValueStillApproved(t *testing.T) {
	g := NewGuard(testOptions())

	result := g.Validate("Best Beaches in the Algarve")
	assert.True(t, result.Approved)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, "Greece Golden Visa Real Estate Requirements", result.SuggestedAlternative)
	assert.Contains(t, result.Reason, "low-value")
}

func TestValidate_SuggestionSkipsCompleted(t *testing.T) {
	g := NewGuard(testOptions())
	g.Load([]string{"Greece Golden Visa Real Estate Requirements"})

	result := g.Validate("Best Beaches in the Algarve")
	assert.Equal(t, "US Expat Tax Filing Deadlines", result.SuggestedAlternative)
}

func TestValidate_EmptyTopic(t *testing.T) {
	g := NewGuard(testOptions())

	result := g.Validate("   ")
	assert.False(t, result.Approved)
	assert.False(t, result.IsDuplicate)
}

func TestGuard_AddGrowsRegistry(t *testing.T) {
	g := NewGuard(testOptions())
	require.Equal(t, 0, g.CompletedCount())

	g.Add("Spain Non-Lucrative Visa Guide")
	assert.Equal(t, 1, g.CompletedCount())

	result := g.Validate("Spain Non-Lucrative Visa Guide")
	assert.True(t, result.IsDuplicate)
}
