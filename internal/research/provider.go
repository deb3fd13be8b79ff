// Package research implements the external research providers and the ordered
// fallback chain that turns a topic string into a research bundle.
package research

import (
	"context"

	"github.com/jonathan/article-engine/internal/types"
)

// Provider is one external research strategy. Implementations map to tiers:
// premium (search corpus + deep model synthesis), standard (search + fetched
// pages), synthesis (model-only, no network corpus).
type Provider interface {
	// Name identifies the provider in logs and error reports
	Name() string
	// Tier returns the research tier this provider serves
	Tier() types.ResearchTier
	// Search produces a research bundle for the query, or a provider error
	Search(ctx context.Context, query string) (*types.ResearchBundle, error)
}

// TierOrder is the fall-through order from most to least expensive. A job
// routed at some tier starts there and degrades rightward on failure.
var TierOrder = []types.ResearchTier{
	types.TierPremium,
	types.TierStandard,
	types.TierSynthesis,
}
