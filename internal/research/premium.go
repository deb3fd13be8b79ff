package research

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/article-engine/internal/llm"
	"github.com/jonathan/article-engine/internal/prompts"
	"github.com/jonathan/article-engine/internal/types"
)

// PremiumProvider is the high-cost tier: it builds a web corpus like the
// standard tier, then runs an advanced-model synthesis pass over it to produce
// a deeply structured bundle with SEO and insight sub-objects.
type PremiumProvider struct {
	web    *WebProvider
	client llm.Client
	config *llm.Config
}

// NewPremiumProvider creates the deep-research provider.
func NewPremiumProvider(web *WebProvider, client llm.Client, config *llm.Config) *PremiumProvider {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &PremiumProvider{web: web, client: client, config: config}
}

// Name identifies the provider in logs and error reports
func (p *PremiumProvider) Name() string { return "premium" }

// Tier returns the research tier this provider serves
func (p *PremiumProvider) Tier() types.ResearchTier { return types.TierPremium }

// Search fetches a web corpus and synthesizes it with the advanced model.
func (p *PremiumProvider) Search(ctx context.Context, query string) (*types.ResearchBundle, error) {
	corpus, err := p.web.Search(ctx, query)
	if err != nil {
		// Corpus failure is reported under this provider's name so the
		// fallback chain attributes the attempt correctly.
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "corpus collection failed",
			Retryable: IsRetryable(err),
			Cause:     err,
		}
	}

	prompt := buildPremiumPrompt(query, corpus)
	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "synthesis over corpus failed",
			Retryable: true,
			Cause:     err,
		}
	}

	bundle, err := parseBundle(raw, query)
	if err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "invalid research payload",
			Retryable: false,
			Cause:     err,
		}
	}

	// The synthesis may drop or hallucinate sources; the fetched corpus is
	// authoritative for citations and raw SERP measurements. Model-derived
	// headings and gaps are kept.
	bundle.Sources = corpus.Sources
	if bundle.SERPAnalysis == nil {
		bundle.SERPAnalysis = &types.SERPAnalysis{}
	}
	bundle.SERPAnalysis.TopResults = corpus.SERPAnalysis.TopResults
	bundle.SERPAnalysis.AvgWordCount = corpus.SERPAnalysis.AvgWordCount
	bundle.Tier = types.TierPremium
	bundle.Cost = corpus.Cost + p.config.CallCost(llm.TierAdvanced)
	bundle.RetrievedAt = time.Now().UTC()
	return bundle, nil
}

func buildPremiumPrompt(query string, corpus *types.ResearchBundle) string {
	return fmt.Sprintf(prompts.MustGet("research.json", "premium-synthesis"), query, corpus.Content)
}
