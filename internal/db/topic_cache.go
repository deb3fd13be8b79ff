package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Topic Research Cache Methods
// -----------------------------------------------------------------------------

// InsertTopicResearch stores a new topic cache entry. The cache is
// insert-only: entries expire rather than being updated in place.
func (db *DB) InsertTopicResearch(ctx context.Context, topic string, embedding []float32, payload any, ttl time.Duration) (*TopicResearchRow, error) {
	payloadData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal research payload: %w", err)
	}
	embeddingData, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	now := time.Now().UTC()
	var row TopicResearchRow
	err = db.pool.QueryRow(ctx,
		`INSERT INTO topic_research_cache (topic, embedding, payload, cache_hits, created_at, expires_at)
		 VALUES ($1, $2, $3, 0, $4, $5)
		 RETURNING id, topic, embedding, payload, cache_hits, last_accessed, created_at, expires_at`,
		topic, embeddingData, payloadData, now, now.Add(ttl),
	).Scan(&row.ID, &row.Topic, &embeddingData, &row.Payload, &row.CacheHits,
		&row.LastAccessed, &row.CreatedAt, &row.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert topic research: %w", err)
	}

	if err := json.Unmarshal(embeddingData, &row.Embedding); err != nil {
		return nil, fmt.Errorf("failed to decode stored embedding: %w", err)
	}
	row.CreatedAt = row.CreatedAt.UTC()
	row.ExpiresAt = row.ExpiresAt.UTC()
	return &row, nil
}

// ListActiveTopicResearch returns all non-expired topic cache entries.
// The similarity scan over embeddings happens in the cache layer; the
// database only filters on freshness.
func (db *DB) ListActiveTopicResearch(ctx context.Context) ([]TopicResearchRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, topic, embedding, payload, cache_hits, last_accessed, created_at, expires_at
		 FROM topic_research_cache
		 WHERE expires_at > NOW()
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic research: %w", err)
	}
	defer rows.Close()

	var entries []TopicResearchRow
	for rows.Next() {
		var row TopicResearchRow
		var embeddingData []byte
		if err := rows.Scan(&row.ID, &row.Topic, &embeddingData, &row.Payload, &row.CacheHits,
			&row.LastAccessed, &row.CreatedAt, &row.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic research row: %w", err)
		}
		if err := json.Unmarshal(embeddingData, &row.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for %q: %w", row.Topic, err)
		}
		row.CreatedAt = row.CreatedAt.UTC()
		row.ExpiresAt = row.ExpiresAt.UTC()
		entries = append(entries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topic research: %w", err)
	}
	return entries, nil
}

// RecordTopicCacheHit increments the hit counter and stamps last access.
// Last-write-wins across concurrent jobs is acceptable: the counter informs
// cost reporting, not correctness.
func (db *DB) RecordTopicCacheHit(ctx context.Context, id uuid.UUID) (int, error) {
	var hits int
	err := db.pool.QueryRow(ctx,
		`UPDATE topic_research_cache
		 SET cache_hits = cache_hits + 1, last_accessed = NOW()
		 WHERE id = $1
		 RETURNING cache_hits`,
		id,
	).Scan(&hits)
	if err != nil {
		return 0, fmt.Errorf("failed to record topic cache hit: %w", err)
	}
	return hits, nil
}

// TopicCacheStats summarizes topic cache effectiveness
type TopicCacheStats struct {
	TotalEntries  int `json:"total_entries"`
	ActiveEntries int `json:"active_entries"`
	TotalHits     int `json:"total_hits"`
}

// GetTopicCacheStats returns aggregate counters for the topic cache
func (db *DB) GetTopicCacheStats(ctx context.Context) (*TopicCacheStats, error) {
	var stats TopicCacheStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE expires_at > NOW()),
		        COALESCE(SUM(cache_hits), 0)
		 FROM topic_research_cache`,
	).Scan(&stats.TotalEntries, &stats.ActiveEntries, &stats.TotalHits)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic cache stats: %w", err)
	}
	return &stats, nil
}
