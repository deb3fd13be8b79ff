package research

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/article-engine/internal/llm"
	"github.com/jonathan/article-engine/internal/prompts"
	"github.com/jonathan/article-engine/internal/schemas"
	"github.com/jonathan/article-engine/internal/types"
)

// SynthesisProvider is the low-cost tier: no network corpus, the model
// synthesizes research from its own knowledge. Output is schema-validated
// before it is allowed into the pipeline.
type SynthesisProvider struct {
	client llm.Client
	config *llm.Config
}

// NewSynthesisProvider creates a model-only research provider.
func NewSynthesisProvider(client llm.Client, config *llm.Config) *SynthesisProvider {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &SynthesisProvider{client: client, config: config}
}

// Name identifies the provider in logs and error reports
func (p *SynthesisProvider) Name() string { return "synthesis" }

// Tier returns the research tier this provider serves
func (p *SynthesisProvider) Tier() types.ResearchTier { return types.TierSynthesis }

// Search asks the model for a structured research bundle on the query.
func (p *SynthesisProvider) Search(ctx context.Context, query string) (*types.ResearchBundle, error) {
	prompt := buildSynthesisPrompt(query)

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "generation failed",
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

	bundle.Tier = types.TierSynthesis
	bundle.Cost = p.config.CallCost(llm.TierStandard)
	bundle.RetrievedAt = time.Now().UTC()
	return bundle, nil
}

func buildSynthesisPrompt(query string) string {
	return fmt.Sprintf(prompts.MustGet("research.json", "synthesis-bundle"), query)
}

// parseBundle validates raw model output against the bundle schema and
// unmarshals it. The topic is forced to the original query so that cache
// keys stay consistent regardless of how the model echoed it back.
func parseBundle(raw, query string) (*types.ResearchBundle, error) {
	if err := schemas.ValidateResearchBundle(raw); err != nil {
		return nil, err
	}

	var bundle types.ResearchBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal research bundle: %w", err)
	}

	bundle.Topic = query
	return &bundle, nil
}
