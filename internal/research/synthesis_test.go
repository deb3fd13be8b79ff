package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/llm"
	"github.com/jonathan/article-engine/internal/types"
)

type fakeLLM struct {
	response string
	err      error
	lastTier llm.ModelTier
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
	f.lastTier = tier
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
	f.lastTier = tier
	return f.response, f.err
}

func (f *fakeLLM) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                    { return nil }

const validBundleJSON = `{
	"topic": "echoed topic",
	"content": "Portugal's golden visa program grants residency through qualifying investment.",
	"sources": [{"url": "https://example.com/gv", "title": "Golden Visa Overview"}],
	"seo_data": {"primary_keyword": "golden visa"},
	"ai_insights": {"key_takeaways": ["investment thresholds changed in 2024"]}
}`

func TestSynthesisProvider_Success(t *testing.T) {
	client := &fakeLLM{response: validBundleJSON}
	provider := NewSynthesisProvider(client, nil)

	bundle, err := provider.Search(context.Background(), "portugal golden visa guide")
	require.NoError(t, err)

	// Topic is forced to the query, not the model's echo.
	assert.Equal(t, "portugal golden visa guide", bundle.Topic)
	assert.Equal(t, types.TierSynthesis, bundle.Tier)
	assert.Equal(t, llm.TierStandard, client.lastTier)
	assert.Equal(t, llm.DefaultConfig().CallCost(llm.TierStandard), bundle.Cost)
	assert.Contains(t, bundle.Content, "golden visa program")
	require.NotNil(t, bundle.SEOData)
	assert.Equal(t, "golden visa", bundle.SEOData.PrimaryKeyword)
	assert.False(t, bundle.RetrievedAt.IsZero())
}

func TestSynthesisProvider_GenerationFailureIsRetryable(t *testing.T) {
	provider := NewSynthesisProvider(&fakeLLM{err: assert.AnError}, nil)

	_, err := provider.Search(context.Background(), "topic")
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "synthesis", provErr.Provider)
	assert.True(t, provErr.Retryable)
}

func TestSynthesisProvider_InvalidPayloadIsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON", "I refuse to answer in JSON"},
		{"missing required fields", `{"topic": "t"}`},
		{"empty content", `{"topic": "t", "content": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewSynthesisProvider(&fakeLLM{response: tt.response}, nil)

			_, err := provider.Search(context.Background(), "topic")
			require.Error(t, err)

			var provErr *ProviderError
			require.ErrorAs(t, err, &provErr)
			assert.False(t, provErr.Retryable)
		})
	}
}
