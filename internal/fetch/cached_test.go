package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()

	require.NotNil(t, config)
	assert.Equal(t, DefaultPageCacheTTL, config.CacheTTL)
	assert.False(t, config.SkipCache)
	assert.NotNil(t, config.Options)
}

func TestCachedFetcher_SecondFetchServedFromCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Cached Page</title></head><body><main><p>Body text here.</p></main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)

	first, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Contains(t, first.Text, "Body text here")
	assert.Equal(t, "Cached Page", first.Title)

	second, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, f.Size())
}

func TestCachedFetcher_ExpiredEntryRefetched(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html><body><main>fresh</main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{CacheTTL: time.Hour})
	base := time.Now()
	f.now = func() time.Time { return base }

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	f.now = func() time.Time { return base.Add(2 * time.Hour) }

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html><body><main>content</main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{SkipCache: true})

	for i := 0; i < 3; i++ {
		result, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, 0, f.Size())
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html><body><main>content</main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	f.Invalidate(server.URL)

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestCachedFetcher_FetchErrorNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, 0, f.Size())
}
