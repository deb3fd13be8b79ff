// Package fetch - cached.go provides URL fetching with in-memory caching.
package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultPageCacheTTL is how long a fetched page stays fresh in memory.
const DefaultPageCacheTTL = 24 * time.Hour

// CachedFetcher wraps URL fetching with an in-memory page cache. Research runs
// for related topics often hit the same sources within one process lifetime,
// so repeat fetches are served locally instead of re-requesting.
type CachedFetcher struct {
	mu         sync.Mutex
	pages      map[string]cachedPage
	options    *Options
	cacheTTL   time.Duration
	skipCache  bool // For testing or forcing fresh fetches
	useBrowser bool
	verbose    bool
	now        func() time.Time
}

type cachedPage struct {
	result    Result
	fetchedAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
	// UseBrowser enables a headless browser fallback for pages whose
	// server-rendered HTML yields too little text
	UseBrowser bool
	Verbose    bool
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultPageCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultPageCacheTTL
	}
	return &CachedFetcher{
		pages:      make(map[string]cachedPage),
		options:    config.Options,
		cacheTTL:   config.CacheTTL,
		skipCache:  config.SkipCache,
		useBrowser: config.UseBrowser,
		verbose:    config.Verbose,
		now:        time.Now,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool // Whether this result came from cache
}

// Fetch retrieves a URL, serving from cache when the cached copy is within TTL.
// Fresh fetches extract the main text and title before caching, using
// selectors chosen from the detected source type.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache {
		f.mu.Lock()
		page, ok := f.pages[urlStr]
		f.mu.Unlock()
		if ok && f.now().Sub(page.fetchedAt) < f.cacheTTL {
			result := page.result
			return &CachedResult{Result: &result, FromCache: true}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	sourceType := DetectSourceType(urlStr)
	text, err := ExtractMainText(result.HTML, SourceContentSelectors(sourceType), SourceNoiseSelectors(sourceType)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	result.Text = text

	// SPA-heavy sources often serve near-empty HTML to plain HTTP clients.
	// When enabled, retry through a headless browser and re-extract.
	if f.useBrowser && ShouldUseBrowser(text) {
		if rendered, berr := BrowserSimple(ctx, urlStr, f.verbose); berr == nil {
			if btext, terr := ExtractMainText(rendered, SourceContentSelectors(sourceType), SourceNoiseSelectors(sourceType)...); terr == nil && len(btext) > len(text) {
				result.HTML = rendered
				result.Text = btext
			}
		}
	}

	title, err := ExtractTitle(result.HTML)
	if err == nil {
		result.Title = title
	}

	if !f.skipCache {
		f.mu.Lock()
		f.pages[urlStr] = cachedPage{result: *result, fetchedAt: f.now()}
		f.mu.Unlock()
	}

	return &CachedResult{Result: result, FromCache: false}, nil
}

// Invalidate drops any cached copy of a URL.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	delete(f.pages, urlStr)
	f.mu.Unlock()
}

// Size returns the number of cached pages.
func (f *CachedFetcher) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}
