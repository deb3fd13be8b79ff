package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/types"
)

type fakeProvider struct {
	name   string
	tier   types.ResearchTier
	bundle *types.ResearchBundle
	err    error
	calls  int
}

func (f *fakeProvider) Name() string             { return f.name }
func (f *fakeProvider) Tier() types.ResearchTier { return f.tier }

func (f *fakeProvider) Search(_ context.Context, query string) (*types.ResearchBundle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	bundle := *f.bundle
	bundle.Topic = query
	return &bundle, nil
}

func okProvider(name string, tier types.ResearchTier, cost float64) *fakeProvider {
	return &fakeProvider{
		name: name,
		tier: tier,
		bundle: &types.ResearchBundle{
			Content: "research content",
			Sources: []types.Source{{URL: "https://example.com"}},
			Tier:    tier,
			Cost:    cost,
		},
	}
}

func failingProvider(name string, tier types.ResearchTier) *fakeProvider {
	return &fakeProvider{
		name: name,
		tier: tier,
		err:  &ProviderError{Provider: name, Message: "unavailable", Retryable: true},
	}
}

func TestRunner_ServesRoutedTier(t *testing.T) {
	premium := okProvider("premium", types.TierPremium, 0.50)
	standard := okProvider("web", types.TierStandard, 0.05)
	runner := NewRunner([]Provider{premium, standard}, nil)

	bundle, err := runner.Run(context.Background(), "portugal golden visa", types.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, types.TierPremium, bundle.Tier)
	assert.Equal(t, "portugal golden visa", bundle.Topic)
	assert.Equal(t, 1, premium.calls)
	assert.Equal(t, 0, standard.calls)
}

func TestRunner_FallsThroughOnFailure(t *testing.T) {
	premium := failingProvider("premium", types.TierPremium)
	standard := okProvider("web", types.TierStandard, 0.05)
	synthesis := okProvider("synthesis", types.TierSynthesis, 0.02)
	runner := NewRunner([]Provider{premium, standard, synthesis}, nil)

	bundle, err := runner.Run(context.Background(), "spain visas", types.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, types.TierStandard, bundle.Tier)
	assert.Equal(t, 1, premium.calls)
	assert.Equal(t, 1, standard.calls)
	assert.Equal(t, 0, synthesis.calls)
}

func TestRunner_StartsAtRoutedTierNotAbove(t *testing.T) {
	premium := okProvider("premium", types.TierPremium, 0.50)
	synthesis := okProvider("synthesis", types.TierSynthesis, 0.02)
	runner := NewRunner([]Provider{premium, synthesis}, nil)

	bundle, err := runner.Run(context.Background(), "expat taxes", types.TierSynthesis)
	require.NoError(t, err)
	assert.Equal(t, types.TierSynthesis, bundle.Tier)
	assert.Equal(t, 0, premium.calls)
}

func TestRunner_SkipsUnregisteredTiers(t *testing.T) {
	synthesis := okProvider("synthesis", types.TierSynthesis, 0.02)
	runner := NewRunner([]Provider{synthesis}, nil)

	bundle, err := runner.Run(context.Background(), "digital nomad visas", types.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, types.TierSynthesis, bundle.Tier)
}

func TestRunner_AllTiersExhausted(t *testing.T) {
	premium := failingProvider("premium", types.TierPremium)
	standard := failingProvider("web", types.TierStandard)
	synthesis := failingProvider("synthesis", types.TierSynthesis)
	runner := NewRunner([]Provider{premium, standard, synthesis}, nil)

	_, err := runner.Run(context.Background(), "doomed topic", types.TierPremium)
	require.Error(t, err)

	var exhausted *TiersExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "doomed topic", exhausted.Topic)
	assert.Equal(t, []string{"premium", "web", "synthesis"}, exhausted.Attempted)
	assert.False(t, IsRetryable(err))
}

func TestTiersFrom(t *testing.T) {
	assert.Equal(t, TierOrder, tiersFrom(types.TierPremium))
	assert.Equal(t, []types.ResearchTier{types.TierStandard, types.TierSynthesis}, tiersFrom(types.TierStandard))
	assert.Equal(t, []types.ResearchTier{types.TierSynthesis}, tiersFrom(types.TierSynthesis))
	assert.Equal(t, TierOrder, tiersFrom(types.ResearchTier("bogus")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&ProviderError{Provider: "web", Message: "timeout", Retryable: true}))
	assert.False(t, IsRetryable(&ProviderError{Provider: "web", Message: "bad payload"}))
	assert.False(t, IsRetryable(assert.AnError))
	assert.False(t, IsRetryable(nil))
}
