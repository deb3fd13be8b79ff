package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/observability"
)

var cacheStatsCommand = &cobra.Command{
	Use:   "cache-stats",
	Short: "Show research cache effectiveness and per-cluster spend",
	RunE:  cacheStatsCmd,
}

var (
	cacheStatsConfigPath  string
	cacheStatsDatabaseURL string
)

func init() {
	cacheStatsCommand.Flags().StringVar(&cacheStatsConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cacheStatsCommand.Flags().StringVar(&cacheStatsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(cacheStatsCommand)
}

func cacheStatsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfigFile(cacheStatsConfigPath, false)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = cacheStatsDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	stats, err := database.GetTopicCacheStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}
	observability.NewPrinter(os.Stdout).PrintCacheStats(stats.TotalEntries, stats.ActiveEntries, stats.TotalHits)

	clusters, err := database.ListClusters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clusters: %w", err)
	}
	if len(clusters) == 0 {
		return nil
	}

	fmt.Printf("\n%-30s %-10s %9s %14s\n", "CLUSTER", "TIER", "ARTICLES", "RESEARCH SPEND")
	for _, c := range clusters {
		fmt.Printf("%-30s %-10s %9d %14s\n", c.Slug, c.ResearchTier, c.ArticleCount, fmt.Sprintf("$%.2f", c.TotalResearchSpend))
	}
	return nil
}
