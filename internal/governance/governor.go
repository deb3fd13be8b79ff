// Package governance implements the research routing decision engine. Given a
// topic it prefers free cache reuse over paid research, and coarse cluster
// reuse over fine topic reuse, emitting an explicit decision the pipeline acts
// on.
package governance

import (
	"context"
	"log"

	"github.com/jonathan/article-engine/internal/cache"
	"github.com/jonathan/article-engine/internal/classify"
	"github.com/jonathan/article-engine/internal/embedding"
	"github.com/jonathan/article-engine/internal/research"
	"github.com/jonathan/article-engine/internal/types"
)

// DecisionKind enumerates the governor's possible routing outcomes.
type DecisionKind string

const (
	// DecisionReuseCluster serves the cluster cache's bundle at zero cost
	DecisionReuseCluster DecisionKind = "reuse_cluster"
	// DecisionReuseTopic serves a similar topic's cached bundle at zero cost
	DecisionReuseTopic DecisionKind = "reuse_topic"
	// DecisionRouteTier routes to a paid external research tier
	DecisionRouteTier DecisionKind = "route_tier"
	// DecisionSkip declines the topic: outside the managed cluster strategy
	DecisionSkip DecisionKind = "skip"
)

// Decision is the governor's routing verdict for one topic.
type Decision struct {
	Kind          DecisionKind
	Cluster       *types.ClusterMatch
	Tier          types.ResearchTier
	EstimatedCost float64
	// Bundle is the cached payload on reuse decisions, nil otherwise
	Bundle *types.ResearchBundle
	// Embedding is carried from Decide to Complete so the topic-cache
	// write-back does not pay for a second embedding call
	Embedding  []float32
	Similarity float64
	ReuseCount int
}

// Config tunes the governor's routing policy.
type Config struct {
	// AllowUnclustered lets topics with no cluster fall through to
	// topic-only caching and the default tier instead of being skipped
	AllowUnclustered bool
	// DefaultTier is used for unclustered topics when they are allowed
	DefaultTier types.ResearchTier
	// DefaultSufficiency is the minimum 0-100 research quality score a
	// bundle must reach before it is written back to the caches
	DefaultSufficiency int
	// TierCosts estimates the spend of routing to each tier
	TierCosts map[types.ResearchTier]float64
}

// DefaultConfig returns the default routing policy.
func DefaultConfig() Config {
	return Config{
		AllowUnclustered:   true,
		DefaultTier:        types.TierSynthesis,
		DefaultSufficiency: 60,
		TierCosts: map[types.ResearchTier]float64{
			types.TierPremium:   0.50,
			types.TierStandard:  0.05,
			types.TierSynthesis: 0.02,
		},
	}
}

// Governor decides, per topic, whether research is reused from a cache or
// bought from an external tier, and owns the post-research cache write-back.
type Governor struct {
	classifier   *classify.Classifier
	clusterCache *cache.ClusterCache
	vectorCache  *cache.VectorCache
	embedder     embedding.Embedder
	config       Config
}

// New creates a Governor over the given caches and embedder.
func New(classifier *classify.Classifier, clusterCache *cache.ClusterCache, vectorCache *cache.VectorCache, embedder embedding.Embedder, config Config) *Governor {
	if config.DefaultTier == "" {
		config.DefaultTier = types.TierSynthesis
	}
	if config.TierCosts == nil {
		config.TierCosts = DefaultConfig().TierCosts
	}
	return &Governor{
		classifier:   classifier,
		clusterCache: clusterCache,
		vectorCache:  vectorCache,
		embedder:     embedder,
		config:       config,
	}
}

// Decide evaluates the routing state machine for a topic, in strict order:
// cluster classification, cluster cache, topic cache, paid tier. Cache and
// embedding failures degrade to the next step instead of failing the call.
func (g *Governor) Decide(ctx context.Context, topic string) (*Decision, error) {
	match := g.classifier.Classify(topic)

	if match == nil && !g.config.AllowUnclustered {
		return &Decision{Kind: DecisionSkip}, nil
	}

	// Cluster reuse short-circuits before any embedding spend.
	if match != nil {
		hit, err := g.clusterCache.GetByMatch(ctx, match)
		if err != nil {
			log.Printf("[GOVERNOR] cluster cache lookup failed for %q: %v", topic, err)
		} else if hit != nil {
			return &Decision{
				Kind:       DecisionReuseCluster,
				Cluster:    match,
				Bundle:     hit.Bundle,
				ReuseCount: hit.ReuseCount,
			}, nil
		}
	}

	// Topic reuse needs an embedding. Embedding failure is fatal to this
	// path only; the topic still proceeds to paid research.
	emb, err := g.embedder.Embed(ctx, topic)
	if err != nil {
		log.Printf("[GOVERNOR] embedding failed for %q, skipping topic cache: %v", topic, err)
		emb = nil
	}
	if len(emb) > 0 {
		hit, err := g.vectorCache.Lookup(ctx, emb)
		if err != nil {
			log.Printf("[GOVERNOR] topic cache lookup failed for %q: %v", topic, err)
		} else if hit != nil {
			return &Decision{
				Kind:       DecisionReuseTopic,
				Cluster:    match,
				Bundle:     hit.Bundle,
				Embedding:  emb,
				Similarity: hit.Similarity,
				ReuseCount: hit.ReuseCount,
			}, nil
		}
	}

	tier := g.config.DefaultTier
	if match != nil {
		tier = match.Cluster.ResearchTier
	}

	return &Decision{
		Kind:          DecisionRouteTier,
		Cluster:       match,
		Tier:          tier,
		EstimatedCost: g.config.TierCosts[tier],
		Embedding:     emb,
	}, nil
}

// Complete writes a paid research result into both caches, gated on the
// sufficiency score. Thin research is never cached; it is recomputed next
// time instead. Returns whether the bundle was cached and its score.
// Write-back failures are logged, not fatal: the caches optimize cost, the
// bundle itself already belongs to the job.
func (g *Governor) Complete(ctx context.Context, topic string, bundle *types.ResearchBundle, emb []float32) (bool, int) {
	score := research.Sufficiency(bundle)
	if score < g.config.DefaultSufficiency {
		log.Printf("[GOVERNOR] research for %q scored %d/100, below %d: not cached",
			topic, score, g.config.DefaultSufficiency)
		return false, score
	}

	saved, err := g.clusterCache.Save(ctx, topic, bundle, bundle.Cost)
	if err != nil {
		log.Printf("[GOVERNOR] cluster cache write-back failed for %q: %v", topic, err)
	} else if !saved {
		log.Printf("[GOVERNOR] topic %q has no cluster, cluster cache skipped", topic)
	}

	if len(emb) == 0 {
		var embErr error
		emb, embErr = g.embedder.Embed(ctx, topic)
		if embErr != nil {
			log.Printf("[GOVERNOR] embedding failed for %q, topic cache skipped: %v", topic, embErr)
			return true, score
		}
	}
	if err := g.vectorCache.StoreWithEmbedding(ctx, topic, emb, bundle); err != nil {
		log.Printf("[GOVERNOR] topic cache write-back failed for %q: %v", topic, err)
	}

	return true, score
}
