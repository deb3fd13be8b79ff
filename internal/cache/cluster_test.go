package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/classify"
	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/types"
)

func testClassifier() *classify.Classifier {
	return classify.New([]types.TopicCluster{
		{
			Name:            "Portugal Golden Visa",
			Slug:            "portugal-golden-visa",
			PrimaryKeywords: []string{"golden visa"},
			ResearchTier:    types.TierPremium,
			CacheTTLDays:    90,
		},
	})
}

func TestClusterCache_SaveThenGet(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	saved, err := c.Save(context.Background(), "Portugal Golden Visa Guide", testBundle("golden visa"), 0.45)
	require.NoError(t, err)
	assert.True(t, saved)

	hit, err := c.Get(context.Background(), "Golden Visa Investment Options")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "portugal-golden-visa", hit.Match.Cluster.Slug)
	assert.Equal(t, 1, hit.ReuseCount)
	assert.Equal(t, "research content for golden visa", hit.Bundle.Content)
}

func TestClusterCache_RepeatedGetsMonotonicReuse(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	_, err := c.Save(context.Background(), "golden visa", testBundle("golden visa"), 0.45)
	require.NoError(t, err)

	var lastPayload string
	for want := 1; want <= 3; want++ {
		hit, err := c.Get(context.Background(), "golden visa requirements")
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.Equal(t, want, hit.ReuseCount)
		if lastPayload != "" {
			assert.Equal(t, lastPayload, hit.Bundle.Content)
		}
		lastPayload = hit.Bundle.Content
	}
}

func TestClusterCache_NoClusterIsMiss(t *testing.T) {
	c := NewClusterCache(newMemClusterStore(), testClassifier(), 0)

	hit, err := c.Get(context.Background(), "Best Ramen in Tokyo")
	require.NoError(t, err)
	assert.Nil(t, hit)

	saved, err := c.Save(context.Background(), "Best Ramen in Tokyo", testBundle("ramen"), 1.0)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestClusterCache_StaleRowNeverHits(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	_, err := c.Save(context.Background(), "golden visa", testBundle("golden visa"), 0.45)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background(), "portugal-golden-visa"))

	hit, err := c.Get(context.Background(), "golden visa")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestClusterCache_ExpiredRowNeverHits(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	data, err := json.Marshal(testBundle("golden visa"))
	require.NoError(t, err)
	created := time.Now().UTC().Add(-91 * 24 * time.Hour)
	store.rows["portugal-golden-visa"] = &db.ClusterResearchRow{
		ID:          uuid.New(),
		ClusterSlug: "portugal-golden-visa",
		Payload:     data,
		CreatedAt:   created,
		ExpiresAt:   created.Add(90 * 24 * time.Hour),
	}

	hit, err := c.Get(context.Background(), "golden visa")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestClusterCache_SaveReplacesAndResets(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	_, err := c.Save(context.Background(), "golden visa", testBundle("first"), 0.45)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "golden visa")
	require.NoError(t, err)

	// A new save replaces the payload and resets the reuse counter.
	_, err = c.Save(context.Background(), "golden visa", testBundle("second"), 0.50)
	require.NoError(t, err)

	hit, err := c.Get(context.Background(), "golden visa")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "research content for second", hit.Bundle.Content)
	assert.Equal(t, 1, hit.ReuseCount)
}

func TestClusterCache_MalformedPayloadIsMiss(t *testing.T) {
	store := newMemClusterStore()
	c := NewClusterCache(store, testClassifier(), 0)

	store.rows["portugal-golden-visa"] = &db.ClusterResearchRow{
		ID:          uuid.New(),
		ClusterSlug: "portugal-golden-visa",
		Payload:     []byte("{broken"),
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	}

	hit, err := c.Get(context.Background(), "golden visa")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestIsFresh_UTCNormalization(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Now()

	// Same instant expressed in different zones must compare identically.
	expiry := now.Add(time.Minute).In(loc)
	assert.True(t, IsFresh(expiry, now))

	expired := now.Add(-time.Minute).In(loc)
	assert.False(t, IsFresh(expired, now))
}

func TestAgeDays(t *testing.T) {
	now := time.Now().UTC()
	assert.InDelta(t, 2.0, AgeDays(now.Add(-48*time.Hour), now), 1e-9)
	assert.InDelta(t, 0.5, AgeDays(now.Add(-12*time.Hour), now), 1e-9)
}
