package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordDensity(t *testing.T) {
	content := "golden visa options for the golden visa applicant " + strings.Repeat("word ", 92)
	// 2 occurrences over 100 words = 2%.
	assert.InDelta(t, 2.0, KeywordDensity(content, "golden visa"), 0.01)
}

func TestKeywordDensity_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, KeywordDensity("", "visa"))
	assert.Equal(t, 0.0, KeywordDensity("some words here", ""))
}

func TestCountLinks(t *testing.T) {
	content := "See [our guide](/guides/visa) and [fees](/fees), plus " +
		"[SEF](https://www.sef.pt) and [EU portal](http://europa.eu/visas)."
	internal, external := CountLinks(content)
	assert.Equal(t, 2, internal)
	assert.Equal(t, 2, external)
}

func TestValidateSEO_HeaderHierarchy(t *testing.T) {
	good := "# Title\n\n## A\ntext\n## B\ntext\n## C\ntext\n"
	check := ValidateSEO(good, "", 70)
	assert.Equal(t, 1, check.H1Count)
	assert.Equal(t, 3, check.H2Count)
	assert.True(t, check.ValidHeaders)

	twoH1 := "# Title\n\n# Another\n\n## A\n## B\n## C\n"
	assert.False(t, ValidateSEO(twoH1, "", 70).ValidHeaders)

	fewH2 := "# Title\n\n## Only\n"
	assert.False(t, ValidateSEO(fewH2, "", 70).ValidHeaders)
}

func TestValidateSEO_H3NotCountedAsH2(t *testing.T) {
	content := "# Title\n\n### Sub\n### Sub2\n### Sub3\n"
	check := ValidateSEO(content, "", 70)
	assert.Equal(t, 0, check.H2Count)
}

func TestValidateSEO_PenaltyAccumulation(t *testing.T) {
	// Thin content misses every band: density 0, bad headers, no links,
	// default readability 60 clears only the readability band.
	check := ValidateSEO("tiny", "visa", 70)
	assert.InDelta(t, 100-densityPenalty-headerPenalty-internalPenalty-externalPenalty, check.Score, 1e-9)
	assert.False(t, check.Passed)
}

func TestValidateSEO_PassThresholdConfigurable(t *testing.T) {
	content := "tiny"
	strict := ValidateSEO(content, "visa", 70)
	lax := ValidateSEO(content, "visa", 40)
	assert.Equal(t, strict.Score, lax.Score)
	assert.False(t, strict.Passed)
	assert.True(t, lax.Passed)
}
