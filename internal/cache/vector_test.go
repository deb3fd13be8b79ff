package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/types"
)

func testBundle(topic string) *types.ResearchBundle {
	return &types.ResearchBundle{
		Topic:   topic,
		Content: "research content for " + topic,
		Sources: []types.Source{{URL: "https://example.com/a", Title: "A"}},
	}
}

func TestVectorCache_StoreThenLookup(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.85, TTL: 30 * 24 * time.Hour})

	emb := []float32{0.6, 0.8, 0}
	require.NoError(t, c.StoreWithEmbedding(context.Background(), "portugal golden visa", emb, testBundle("portugal golden visa")))

	hit, err := c.Lookup(context.Background(), emb)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.InDelta(t, 1.0, hit.Similarity, 1e-6)
	assert.Equal(t, "portugal golden visa", hit.Topic)
	assert.Equal(t, 1, hit.ReuseCount)
	assert.Equal(t, "research content for portugal golden visa", hit.Bundle.Content)
}

func TestVectorCache_MissBelowThreshold(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.85})

	require.NoError(t, c.StoreWithEmbedding(context.Background(), "topic a", []float32{1, 0}, testBundle("topic a")))

	// Orthogonal-ish query: similarity 0.6, below 0.85.
	hit, err := c.Lookup(context.Background(), []float32{0.6, 0.8})
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestVectorCache_ThresholdIsExclusive(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 1.0})

	emb := []float32{1, 2, 3}
	require.NoError(t, c.StoreWithEmbedding(context.Background(), "topic", emb, testBundle("topic")))

	// Similarity is exactly 1.0, which does not strictly exceed the threshold.
	hit, err := c.Lookup(context.Background(), emb)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestVectorCache_HitCountMonotonic(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.5})

	emb := []float32{1, 0}
	require.NoError(t, c.StoreWithEmbedding(context.Background(), "topic", emb, testBundle("topic")))

	for want := 1; want <= 3; want++ {
		hit, err := c.Lookup(context.Background(), emb)
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.Equal(t, want, hit.ReuseCount)
	}
}

func TestVectorCache_ExpiryBoundary(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.5})

	emb := []float32{1, 0}
	bundleData, err := json.Marshal(testBundle("old topic"))
	require.NoError(t, err)

	// Created 89 days ago with a 90-day TTL: still fresh.
	fresh := &db.TopicResearchRow{
		ID:        uuid.New(),
		Topic:     "old topic",
		Embedding: emb,
		Payload:   bundleData,
		CreatedAt: time.Now().UTC().Add(-89 * 24 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-89 * 24 * time.Hour).Add(90 * 24 * time.Hour),
	}
	store.rows[fresh.ID] = fresh
	store.order = append(store.order, fresh.ID)

	hit, err := c.Lookup(context.Background(), emb)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.InDelta(t, 89, hit.AgeDays, 0.1)

	// At 91 days the row is past expiry and must never be returned,
	// regardless of similarity or prior reuse.
	fresh.CreatedAt = time.Now().UTC().Add(-91 * 24 * time.Hour)
	fresh.ExpiresAt = fresh.CreatedAt.Add(90 * 24 * time.Hour)

	hit, err = c.Lookup(context.Background(), emb)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestVectorCache_MalformedPayloadIsMiss(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.5})

	row := &db.TopicResearchRow{
		ID:        uuid.New(),
		Topic:     "broken",
		Embedding: []float32{1, 0},
		Payload:   []byte("{not json"),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	store.rows[row.ID] = row
	store.order = append(store.order, row.ID)

	hit, err := c.Lookup(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestVectorCache_MalformedRowYieldsToNextBest(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.5})

	// Corrupt row ranks first on similarity but must not shadow the
	// valid runner-up.
	broken := &db.TopicResearchRow{
		ID:        uuid.New(),
		Topic:     "broken",
		Embedding: []float32{1, 0},
		Payload:   []byte("{not json"),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	store.rows[broken.ID] = broken
	store.order = append(store.order, broken.ID)

	require.NoError(t, c.StoreWithEmbedding(context.Background(), "runner-up", []float32{0.9, 0.1}, testBundle("runner-up")))

	hit, err := c.Lookup(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "runner-up", hit.Topic)
	assert.Equal(t, "research content for runner-up", hit.Bundle.Content)
}

func TestVectorCache_StoreFailsWithoutEmbedding(t *testing.T) {
	c := NewVectorCache(newMemTopicStore(), VectorCacheConfig{})

	err := c.StoreWithEmbedding(context.Background(), "topic", nil, testBundle("topic"))
	assert.Error(t, err)
}

func TestVectorCache_ScanErrorPropagates(t *testing.T) {
	store := newMemTopicStore()
	store.listErr = fmt.Errorf("connection refused")
	c := NewVectorCache(store, VectorCacheConfig{})

	_, err := c.Lookup(context.Background(), []float32{1, 0})
	assert.Error(t, err)
}

func TestVectorCache_DimensionMismatchRowsSkipped(t *testing.T) {
	store := newMemTopicStore()
	c := NewVectorCache(store, VectorCacheConfig{SimilarityThreshold: 0.5})

	require.NoError(t, c.StoreWithEmbedding(context.Background(), "bad dims", []float32{1, 0, 0}, testBundle("bad dims")))
	require.NoError(t, c.StoreWithEmbedding(context.Background(), "good", []float32{1, 0}, testBundle("good")))

	hit, err := c.Lookup(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "good", hit.Topic)
}
