package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonathan/article-engine/internal/cache"
	"github.com/jonathan/article-engine/internal/classify"
	"github.com/jonathan/article-engine/internal/config"
	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/dedup"
	"github.com/jonathan/article-engine/internal/embedding"
	"github.com/jonathan/article-engine/internal/fetch"
	"github.com/jonathan/article-engine/internal/governance"
	"github.com/jonathan/article-engine/internal/llm"
	"github.com/jonathan/article-engine/internal/observability"
	"github.com/jonathan/article-engine/internal/pipeline"
	"github.com/jonathan/article-engine/internal/quality"
	"github.com/jonathan/article-engine/internal/research"
)

// loadConfigFile loads and validates cfg from path when non-empty. Callers
// layer their own flag overrides and defaults on top.
func loadConfigFile(path string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if path == "" {
		return cfg, nil
	}
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}
	if verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", path)
	}
	return *loaded, nil
}

// loadRegistry loads the cluster registry named in cfg, falling back to the
// built-in seed registry.
func loadRegistry(cfg config.Config) (*config.Registry, error) {
	if cfg.RegistryPath == "" {
		return config.DefaultRegistry(), nil
	}
	reg, err := config.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// resolveSecrets fills API key and database URL from the environment when the
// config and flags left them empty.
func resolveSecrets(cfg *config.Config) error {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return nil
}

// engine bundles the wired collaborators for one CLI invocation.
type engine struct {
	cfg      config.Config
	registry *config.Registry
	database *db.DB
	guard    *dedup.Guard
	governor *governance.Governor
	printer  *observability.Printer
	deps     pipeline.Deps

	client   llm.Client
	embedder *embedding.GeminiEmbedder
}

// buildEngine connects to the database and LLM provider and wires the full
// pipeline dependency graph from cfg. Callers must Close the engine.
func buildEngine(ctx context.Context, cfg config.Config) (*engine, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if err := resolveSecrets(&cfg); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmConfig := llm.DefaultGeminiConfig()
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, "")
	if err != nil {
		_ = client.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	classifier := classify.New(registry.Clusters)
	clusterCache := cache.NewClusterCache(database, classifier, time.Duration(cfg.ClusterTTLDays)*24*time.Hour)
	vectorCache := cache.NewVectorCache(database, cache.VectorCacheConfig{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TTL:                 time.Duration(cfg.TopicCacheTTLDays) * 24 * time.Hour,
	})

	govConfig := governance.DefaultConfig()
	govConfig.DefaultSufficiency = int(cfg.SufficiencyThreshold)
	governor := governance.New(classifier, clusterCache, vectorCache, embedder, govConfig)

	guard := dedup.NewGuard(dedup.Options{
		Categories:        registry.Categories,
		Backlog:           registry.Backlog,
		OverlapThreshold:  cfg.OverlapThreshold,
		LowValueThreshold: cfg.LowValueThreshold,
	})
	titles, err := database.ListCompletedTitles(ctx)
	if err != nil {
		_ = embedder.Close()
		_ = client.Close()
		database.Close()
		return nil, fmt.Errorf("failed to load completed articles: %w", err)
	}
	guard.Load(titles)

	providers := []research.Provider{research.NewSynthesisProvider(client, llmConfig)}
	searchKey := os.Getenv("GOOGLE_SEARCH_API_KEY")
	searchCX := os.Getenv("GOOGLE_SEARCH_CX")
	if searchKey != "" && searchCX != "" {
		search, err := research.NewGoogleSearch(ctx, searchKey, searchCX)
		if err != nil {
			_ = embedder.Close()
			_ = client.Close()
			database.Close()
			return nil, fmt.Errorf("failed to create search service: %w", err)
		}
		fetcher := fetch.NewCachedFetcher(&fetch.CachedFetcherConfig{
			UseBrowser: cfg.UseBrowser,
			Verbose:    cfg.Verbose,
		})
		web := research.NewWebProvider(search, fetcher, &research.WebProviderConfig{Verbose: cfg.Verbose})
		providers = append(providers,
			web,
			research.NewPremiumProvider(web, client, llmConfig),
		)
	} else {
		log.Printf("[SETUP] GOOGLE_SEARCH_API_KEY/GOOGLE_SEARCH_CX not set; premium and standard research tiers disabled")
	}
	runner := research.NewRunner(providers, &research.RunnerConfig{Verbose: cfg.Verbose})

	gate := quality.NewGate(quality.Options{
		MinCitations:     cfg.MinCitations,
		MinWordCount:     cfg.MinWordCount,
		SEOPassScore:     cfg.SEOPassScore,
		PublishThreshold: cfg.PublishThreshold,
		ReviewThreshold:  cfg.ReviewThreshold,
	})

	printer := observability.NewPrinter(os.Stdout)

	deps := pipeline.Deps{
		Guard:              guard,
		Governor:           governor,
		Runner:             runner,
		Drafter:            pipeline.NewLLMDrafter(client, llmConfig),
		Refiner:            pipeline.NewLLMRefiner(client, llmConfig),
		ImagePrompter:      pipeline.NewLLMImagePrompter(client, llmConfig),
		Gate:               gate,
		Store:              database,
		Printer:            printer,
		CostCapPerJob:      cfg.CostCapPerJob,
		MaxRefinePasses:    cfg.MaxRefinePasses,
		RefineCostEstimate: llmConfig.CallCost(llm.TierStandard),
	}

	return &engine{
		cfg:      cfg,
		registry: registry,
		database: database,
		guard:    guard,
		governor: governor,
		printer:  printer,
		deps:     deps,
		client:   client,
		embedder: embedder,
	}, nil
}

// Close releases the engine's connections.
func (e *engine) Close() {
	if e.embedder != nil {
		_ = e.embedder.Close()
	}
	if e.client != nil {
		_ = e.client.Close()
	}
	if e.database != nil {
		e.database.Close()
	}
}
