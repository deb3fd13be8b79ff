package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/article-engine/internal/classify"
	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/types"
)

// ClusterStore is the persistence surface the cluster cache needs
type ClusterStore interface {
	GetCurrentClusterResearch(ctx context.Context, clusterSlug string) (*db.ClusterResearchRow, error)
	UpsertClusterResearch(ctx context.Context, clusterSlug string, payload any, cost float64, ttl time.Duration) (*db.ClusterResearchRow, error)
	IncrementClusterReuse(ctx context.Context, id uuid.UUID) (int, error)
	MarkClusterResearchStale(ctx context.Context, clusterSlug string) error
}

// ClusterCache is the coarse research cache shared by every topic in a
// cluster. Its long TTL trades staleness risk for large cost reduction.
// Concurrent saves to the same cluster row are last-write-wins; an occasional
// duplicate paid research call is cheaper than a distributed lock.
type ClusterCache struct {
	store      ClusterStore
	classifier *classify.Classifier
	defaultTTL time.Duration
	now        func() time.Time
}

// NewClusterCache creates a ClusterCache over the given store and classifier
func NewClusterCache(store ClusterStore, classifier *classify.Classifier, defaultTTL time.Duration) *ClusterCache {
	if defaultTTL == 0 {
		defaultTTL = 90 * 24 * time.Hour
	}
	return &ClusterCache{
		store:      store,
		classifier: classifier,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get classifies the topic and returns the cluster's current research bundle,
// or nil when the topic has no cluster or the cluster has no valid row.
func (c *ClusterCache) Get(ctx context.Context, topic string) (*ClusterHit, error) {
	match := c.classifier.Classify(topic)
	if match == nil {
		return nil, nil
	}
	return c.GetByMatch(ctx, match)
}

// GetByMatch returns the current research bundle for an already-classified
// cluster, incrementing its reuse counter on hit.
func (c *ClusterCache) GetByMatch(ctx context.Context, match *types.ClusterMatch) (*ClusterHit, error) {
	row, err := c.store.GetCurrentClusterResearch(ctx, match.Cluster.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query cluster cache: %w", err)
	}
	if row == nil || row.Stale {
		return nil, nil
	}

	now := c.now()
	if !IsFresh(row.ExpiresAt, now) {
		return nil, nil
	}

	var bundle types.ResearchBundle
	if err := json.Unmarshal(row.Payload, &bundle); err != nil {
		log.Printf("[CACHE] malformed payload in cluster cache for %s: %v", match.Cluster.Slug, err)
		return nil, nil
	}

	reuse, err := c.store.IncrementClusterReuse(ctx, row.ID)
	if err != nil {
		log.Printf("[CACHE] failed to increment cluster reuse: %v", err)
		reuse = row.ReuseCount + 1
	}

	return &ClusterHit{
		Hit: Hit{
			Bundle:     &bundle,
			AgeDays:    AgeDays(row.CreatedAt, now),
			ReuseCount: reuse,
		},
		Match: match,
	}, nil
}

// Save upserts the research bundle as the cluster's current row.
// Returns false when the topic does not belong to any cluster.
func (c *ClusterCache) Save(ctx context.Context, topic string, bundle *types.ResearchBundle, researchCost float64) (bool, error) {
	match := c.classifier.Classify(topic)
	if match == nil {
		return false, nil
	}

	ttl := c.defaultTTL
	if match.Cluster.CacheTTLDays > 0 {
		ttl = time.Duration(match.Cluster.CacheTTLDays) * 24 * time.Hour
	}

	if _, err := c.store.UpsertClusterResearch(ctx, match.Cluster.Slug, bundle, researchCost, ttl); err != nil {
		return false, fmt.Errorf("failed to save cluster research: %w", err)
	}
	return true, nil
}

// Invalidate marks a cluster's current research as stale ahead of its TTL
func (c *ClusterCache) Invalidate(ctx context.Context, clusterSlug string) error {
	if err := c.store.MarkClusterResearchStale(ctx, clusterSlug); err != nil {
		return fmt.Errorf("failed to invalidate cluster research: %w", err)
	}
	return nil
}
