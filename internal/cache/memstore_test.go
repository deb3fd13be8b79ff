package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/article-engine/internal/db"
)

// In-memory store fakes for exercising the cache layer without PostgreSQL.

type memTopicStore struct {
	rows    map[uuid.UUID]*db.TopicResearchRow
	order   []uuid.UUID
	listErr error
}

func newMemTopicStore() *memTopicStore {
	return &memTopicStore{rows: make(map[uuid.UUID]*db.TopicResearchRow)}
}

func (s *memTopicStore) InsertTopicResearch(_ context.Context, topic string, emb []float32, payload any, ttl time.Duration) (*db.TopicResearchRow, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	row := &db.TopicResearchRow{
		ID:        uuid.New(),
		Topic:     topic,
		Embedding: emb,
		Payload:   data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.rows[row.ID] = row
	s.order = append(s.order, row.ID)
	return row, nil
}

func (s *memTopicStore) ListActiveTopicResearch(_ context.Context) ([]db.TopicResearchRow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	now := time.Now().UTC()
	var out []db.TopicResearchRow
	for _, id := range s.order {
		if s.rows[id].ExpiresAt.After(now) {
			out = append(out, *s.rows[id])
		}
	}
	return out, nil
}

func (s *memTopicStore) RecordTopicCacheHit(_ context.Context, id uuid.UUID) (int, error) {
	row, ok := s.rows[id]
	if !ok {
		return 0, fmt.Errorf("no such row: %s", id)
	}
	row.CacheHits++
	now := time.Now().UTC()
	row.LastAccessed = &now
	return row.CacheHits, nil
}

type memClusterStore struct {
	rows map[string]*db.ClusterResearchRow
}

func newMemClusterStore() *memClusterStore {
	return &memClusterStore{rows: make(map[string]*db.ClusterResearchRow)}
}

func (s *memClusterStore) GetCurrentClusterResearch(_ context.Context, slug string) (*db.ClusterResearchRow, error) {
	row, ok := s.rows[slug]
	if !ok || row.Stale || !row.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *memClusterStore) UpsertClusterResearch(_ context.Context, slug string, payload any, cost float64, ttl time.Duration) (*db.ClusterResearchRow, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	row := &db.ClusterResearchRow{
		ID:          uuid.New(),
		ClusterSlug: slug,
		Payload:     data,
		Cost:        cost,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	s.rows[slug] = row
	return row, nil
}

func (s *memClusterStore) IncrementClusterReuse(_ context.Context, id uuid.UUID) (int, error) {
	for _, row := range s.rows {
		if row.ID == id {
			row.ReuseCount++
			return row.ReuseCount, nil
		}
	}
	return 0, fmt.Errorf("no such row: %s", id)
}

func (s *memClusterStore) MarkClusterResearchStale(_ context.Context, slug string) error {
	if row, ok := s.rows[slug]; ok {
		row.Stale = true
	}
	return nil
}
