package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClusterResearchRow is one cached research bundle for a cluster.
// At most one non-expired, non-stale row is considered current per cluster;
// saving replaces rather than appending.
type ClusterResearchRow struct {
	ID          uuid.UUID       `json:"id"`
	ClusterSlug string          `json:"cluster_slug"`
	Payload     json.RawMessage `json:"payload"`
	Cost        float64         `json:"cost"`
	ReuseCount  int             `json:"reuse_count"`
	Stale       bool            `json:"stale"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// TopicResearchRow is one fine-grained cache entry keyed by topic embedding.
// Rows are insert-only; they expire rather than being deleted.
type TopicResearchRow struct {
	ID           uuid.UUID       `json:"id"`
	Topic        string          `json:"topic"`
	Embedding    []float32       `json:"embedding"`
	Payload      json.RawMessage `json:"payload"`
	CacheHits    int             `json:"cache_hits"`
	LastAccessed *time.Time      `json:"last_accessed,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}
