// Package cache provides the two research cache backends: a fine-grained
// topic cache keyed by embedding similarity and a coarse cluster cache keyed
// by cluster identity. Both share the same freshness and reuse-accounting
// rules. The caches optimize cost, never correctness: any failure below them
// is reported as a miss and the caller falls through to paid research.
package cache

import (
	"context"
	"time"

	"github.com/jonathan/article-engine/internal/types"
)

// Hit is the common result of a successful cache lookup
type Hit struct {
	Bundle     *types.ResearchBundle `json:"bundle"`
	AgeDays    float64               `json:"age_days"`
	ReuseCount int                   `json:"reuse_count"`
}

// TopicHit is a topic cache hit with its similarity score
type TopicHit struct {
	Hit
	Topic      string  `json:"topic"`
	Similarity float64 `json:"similarity"`
}

// ClusterHit is a cluster cache hit with the matched cluster
type ClusterHit struct {
	Hit
	Match *types.ClusterMatch `json:"match"`
}

// ResearchCache is the shared read/write surface of both backends
type ResearchCache interface {
	// Store writes a research bundle into the cache
	Store(ctx context.Context, topic string, bundle *types.ResearchBundle) error
}

// IsFresh reports whether an expiry timestamp is still in the future.
// Both sides are normalized to UTC before comparison; mixing naive and aware
// timestamps in age arithmetic was a recurring defect in systems like this.
func IsFresh(expiresAt, now time.Time) bool {
	return expiresAt.UTC().After(now.UTC())
}

// AgeDays returns the age of a creation timestamp in fractional days
func AgeDays(createdAt, now time.Time) float64 {
	return now.UTC().Sub(createdAt.UTC()).Hours() / 24
}
