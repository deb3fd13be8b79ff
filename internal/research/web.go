package research

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/article-engine/internal/fetch"
	"github.com/jonathan/article-engine/internal/types"
)

// DefaultMaxSources is how many search results the web provider fetches.
const DefaultMaxSources = 6

// maxPageExcerpt caps how much extracted text one page contributes to the
// research corpus.
const maxPageExcerpt = 4000

// DefaultSearchCost is the estimated spend for one programmable-search run.
const DefaultSearchCost = 0.01

// SearchItem is one result from a search backend.
type SearchItem struct {
	URL     string
	Title   string
	Snippet string
}

// SearchService abstracts the search backend so tests can substitute a fake.
type SearchService interface {
	Search(ctx context.Context, query string, num int) ([]SearchItem, error)
}

// GoogleSearch implements SearchService over Google Programmable Search.
type GoogleSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSearch creates a search service backed by the customsearch API.
func NewGoogleSearch(ctx context.Context, apiKey, cx string) (*GoogleSearch, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearch{svc: svc, cx: cx}, nil
}

// Search runs one query and returns up to num results.
func (g *GoogleSearch) Search(ctx context.Context, query string, num int) ([]SearchItem, error) {
	resp, err := g.svc.Cse.List().Context(ctx).Cx(g.cx).Q(query).Num(int64(num)).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	items := make([]SearchItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, SearchItem{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}
	return items, nil
}

// PageFetcher is the slice of the fetch layer the web provider needs.
type PageFetcher interface {
	Fetch(ctx context.Context, urlStr string) (*fetch.CachedResult, error)
}

// WebProvider is the standard tier: search the web for the topic, fetch the
// top results concurrently, and assemble the extracted text into a corpus.
type WebProvider struct {
	search     SearchService
	fetcher    PageFetcher
	searchCost float64
	maxSources int
	verbose    bool
}

// WebProviderConfig holds construction options for the web provider.
type WebProviderConfig struct {
	SearchCost float64
	MaxSources int
	Verbose    bool
}

// NewWebProvider creates a web research provider.
func NewWebProvider(search SearchService, fetcher PageFetcher, config *WebProviderConfig) *WebProvider {
	if config == nil {
		config = &WebProviderConfig{}
	}
	if config.SearchCost == 0 {
		config.SearchCost = DefaultSearchCost
	}
	if config.MaxSources == 0 {
		config.MaxSources = DefaultMaxSources
	}
	return &WebProvider{
		search:     search,
		fetcher:    fetcher,
		searchCost: config.SearchCost,
		maxSources: config.MaxSources,
		verbose:    config.Verbose,
	}
}

// Name identifies the provider in logs and error reports
func (p *WebProvider) Name() string { return "web" }

// Tier returns the research tier this provider serves
func (p *WebProvider) Tier() types.ResearchTier { return types.TierStandard }

// Search queries the search backend and builds a corpus from the fetched pages.
func (p *WebProvider) Search(ctx context.Context, query string) (*types.ResearchBundle, error) {
	items, err := p.search.Search(ctx, query, p.maxSources)
	if err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "search request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	if len(items) == 0 {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   fmt.Sprintf("no search results for %q", query),
			Retryable: false,
		}
	}

	corpus, sources := p.fetchCorpus(ctx, items)
	if len(corpus) == 0 {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Message:   "no fetchable pages among search results",
			Retryable: true,
		}
	}

	content := assembleCorpus(query, corpus)

	bundle := &types.ResearchBundle{
		Topic:   query,
		Content: content,
		Sources: sources,
		SERPAnalysis: &types.SERPAnalysis{
			TopResults:   topResults(items),
			AvgWordCount: avgWords(corpus),
		},
		Tier:        types.TierStandard,
		Cost:        p.searchCost,
		RetrievedAt: time.Now().UTC(),
	}
	return bundle, nil
}

type pageSection struct {
	title string
	url   string
	text  string
}

// fetchCorpus fans out over the search results and collects extracted page
// text. Individual fetch failures are logged and skipped; the corpus is built
// from whatever succeeded.
func (p *WebProvider) fetchCorpus(ctx context.Context, items []SearchItem) ([]pageSection, []types.Source) {
	var mu sync.Mutex
	sections := make([]pageSection, len(items))
	fetched := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, item := range items {
		g.Go(func() error {
			result, err := p.fetcher.Fetch(gctx, item.URL)
			if err != nil {
				if p.verbose {
					log.Printf("[RESEARCH] skipping %s: %v", item.URL, err)
				}
				return nil
			}
			text := truncateExcerpt(result.Text, maxPageExcerpt)
			mu.Lock()
			sections[i] = pageSection{title: item.Title, url: item.URL, text: text}
			fetched[i] = len(strings.TrimSpace(text)) > 0
			mu.Unlock()
			return nil
		})
	}
	// Goroutines only return nil; Wait is for joining.
	_ = g.Wait()

	var corpus []pageSection
	var sources []types.Source
	for i, ok := range fetched {
		if !ok {
			continue
		}
		corpus = append(corpus, sections[i])
		sources = append(sources, types.Source{URL: sections[i].url, Title: sections[i].title})
	}
	return corpus, sources
}

func assembleCorpus(query string, corpus []pageSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research corpus for: %s\n", query)
	for i, section := range corpus {
		fmt.Fprintf(&b, "\n## Source [%d]: %s (%s)\n%s\n", i+1, section.title, section.url, section.text)
	}
	return b.String()
}

func topResults(items []SearchItem) []types.Source {
	results := make([]types.Source, 0, len(items))
	for _, item := range items {
		results = append(results, types.Source{URL: item.URL, Title: item.Title})
	}
	return results
}

func avgWords(corpus []pageSection) int {
	if len(corpus) == 0 {
		return 0
	}
	total := 0
	for _, section := range corpus {
		total += len(strings.Fields(section.text))
	}
	return total / len(corpus)
}

// truncateExcerpt cuts text to at most max bytes without splitting a rune.
func truncateExcerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
