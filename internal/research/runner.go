package research

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/article-engine/internal/types"
)

// DefaultCallTimeout bounds one provider attempt end to end.
const DefaultCallTimeout = 2 * time.Minute

// Runner drives the ordered fallback chain: a job routed at some tier starts
// with that tier's provider and degrades to cheaper tiers on failure. Provider
// errors never propagate raw; the runner either returns a bundle or a
// TiersExhaustedError.
type Runner struct {
	providers map[types.ResearchTier]Provider
	timeout   time.Duration
	verbose   bool
}

// RunnerConfig holds construction options for the runner.
type RunnerConfig struct {
	CallTimeout time.Duration
	Verbose     bool
}

// NewRunner creates a runner over the given providers. Tiers without a
// registered provider are skipped during fall-through.
func NewRunner(providers []Provider, config *RunnerConfig) *Runner {
	if config == nil {
		config = &RunnerConfig{}
	}
	if config.CallTimeout == 0 {
		config.CallTimeout = DefaultCallTimeout
	}

	byTier := make(map[types.ResearchTier]Provider, len(providers))
	for _, p := range providers {
		byTier[p.Tier()] = p
	}
	return &Runner{
		providers: byTier,
		timeout:   config.CallTimeout,
		verbose:   config.Verbose,
	}
}

// Run executes research for a topic starting at the given tier. Each attempt
// runs under its own timeout. On success the bundle's Cost reflects the tier
// that actually served the request, which may be cheaper than the routed tier.
func (r *Runner) Run(ctx context.Context, topic string, tier types.ResearchTier) (*types.ResearchBundle, error) {
	var attempted []string

	for _, candidate := range tiersFrom(tier) {
		provider, ok := r.providers[candidate]
		if !ok {
			continue
		}
		attempted = append(attempted, provider.Name())

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		bundle, err := provider.Search(callCtx, topic)
		cancel()

		if err != nil {
			log.Printf("[RESEARCH] tier %s failed for %q: %v", candidate, topic, err)
			continue
		}
		if r.verbose {
			log.Printf("[RESEARCH] tier %s served %q: %d words, %d sources, cost %.4f",
				candidate, topic, bundle.WordCount(), len(bundle.Sources), bundle.Cost)
		}
		return bundle, nil
	}

	return nil, &TiersExhaustedError{Topic: topic, Attempted: attempted}
}

// tiersFrom returns the fall-through sequence starting at tier. An unknown
// tier falls back to the full chain.
func tiersFrom(tier types.ResearchTier) []types.ResearchTier {
	for i, t := range TierOrder {
		if t == tier {
			return TierOrder[i:]
		}
	}
	return TierOrder
}
