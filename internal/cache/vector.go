package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/embedding"
	"github.com/jonathan/article-engine/internal/types"
)

// TopicStore is the persistence surface the vector cache needs
type TopicStore interface {
	InsertTopicResearch(ctx context.Context, topic string, embedding []float32, payload any, ttl time.Duration) (*db.TopicResearchRow, error)
	ListActiveTopicResearch(ctx context.Context) ([]db.TopicResearchRow, error)
	RecordTopicCacheHit(ctx context.Context, id uuid.UUID) (int, error)
}

// VectorCache is the per-topic research cache keyed by embedding similarity.
// Lookup scans non-expired rows for the nearest stored embedding and returns
// it only when similarity strictly exceeds the configured threshold.
type VectorCache struct {
	store     TopicStore
	threshold float64
	ttl       time.Duration
	now       func() time.Time
}

// VectorCacheConfig holds tuning for a VectorCache
type VectorCacheConfig struct {
	SimilarityThreshold float64
	TTL                 time.Duration
}

// NewVectorCache creates a VectorCache over the given store
func NewVectorCache(store TopicStore, cfg VectorCacheConfig) *VectorCache {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.85
	}
	if cfg.TTL == 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &VectorCache{
		store:     store,
		threshold: cfg.SimilarityThreshold,
		ttl:       cfg.TTL,
		now:       time.Now,
	}
}

// Lookup finds the highest-similarity non-expired entry for the query
// embedding. Returns nil on miss. Malformed rows are skipped, not fatal.
func (c *VectorCache) Lookup(ctx context.Context, queryEmbedding []float32) (*TopicHit, error) {
	rows, err := c.store.ListActiveTopicResearch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic cache: %w", err)
	}

	now := c.now()
	var best *db.TopicResearchRow
	var bestSim float64
	var bundle types.ResearchBundle
	for i := range rows {
		row := &rows[i]
		if !IsFresh(row.ExpiresAt, now) {
			continue
		}
		sim, err := embedding.CosineSimilarity(queryEmbedding, row.Embedding)
		if err != nil {
			log.Printf("[CACHE] skipping topic cache row %s: %v", row.ID, err)
			continue
		}
		if sim <= c.threshold || sim <= bestSim {
			continue
		}
		var candidate types.ResearchBundle
		if err := json.Unmarshal(row.Payload, &candidate); err != nil {
			// A corrupt row must not shadow a lower-ranked valid one.
			log.Printf("[CACHE] skipping topic cache row %s: malformed payload: %v", row.ID, err)
			continue
		}
		best, bestSim, bundle = row, sim, candidate
	}

	if best == nil {
		return nil, nil
	}

	hits, err := c.store.RecordTopicCacheHit(ctx, best.ID)
	if err != nil {
		// Accounting failure does not invalidate the hit
		log.Printf("[CACHE] failed to record topic cache hit: %v", err)
		hits = best.CacheHits + 1
	}

	return &TopicHit{
		Hit: Hit{
			Bundle:     &bundle,
			AgeDays:    AgeDays(best.CreatedAt, now),
			ReuseCount: hits,
		},
		Topic:      best.Topic,
		Similarity: bestSim,
	}, nil
}

// StoreWithEmbedding inserts a new cache entry for a topic.
// Entries are insert-only; TTL is fixed days from now.
func (c *VectorCache) StoreWithEmbedding(ctx context.Context, topic string, emb []float32, bundle *types.ResearchBundle) error {
	if len(emb) == 0 {
		return fmt.Errorf("cannot cache topic %q without an embedding", topic)
	}
	if _, err := c.store.InsertTopicResearch(ctx, topic, emb, bundle, c.ttl); err != nil {
		return fmt.Errorf("failed to store topic research: %w", err)
	}
	return nil
}
