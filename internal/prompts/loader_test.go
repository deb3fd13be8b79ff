package prompts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("research.json", "synthesis-bundle")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "research assistant")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("research.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("generation.json", "draft-article")
		assert.NotEmpty(t, prompt)
	})
}

func TestTemplates_CarrySprintfVerbs(t *testing.T) {
	ClearCache()

	filled := fmt.Sprintf(MustGet("research.json", "premium-synthesis"), "Spain digital nomad visa", "## Source [1]: Official guide")
	assert.Contains(t, filled, "Topic: Spain digital nomad visa")
	assert.Contains(t, filled, "## Source [1]: Official guide")
	assert.NotContains(t, filled, "%s")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("generation.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "draft-article")
	assert.Contains(t, keys, "refine-article")
	assert.Contains(t, keys, "image-prompt")
}
