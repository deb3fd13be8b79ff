package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/article-engine/internal/db"
)

var seedCommand = &cobra.Command{
	Use:   "seed",
	Short: "Load the cluster registry into the database",
	Long: `Upserts every cluster in the registry seed file (or the built-in registry) into the topic_clusters table, keyed by slug. Existing article counts and research spend are preserved.`,
	RunE: seedCmd,
}

var (
	seedConfigPath   string
	seedRegistryPath string
	seedDatabaseURL  string
)

func init() {
	seedCommand.Flags().StringVar(&seedConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	seedCommand.Flags().StringVarP(&seedRegistryPath, "registry", "r", "", "Path to cluster registry YAML seed file")
	seedCommand.Flags().StringVar(&seedDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(seedCommand)
}

func seedCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfigFile(seedConfigPath, false)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("registry") {
		cfg.RegistryPath = seedRegistryPath
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = seedDatabaseURL
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
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

	for _, c := range registry.Clusters {
		row := &db.TopicClusterRow{
			Name:              c.Name,
			Slug:              c.Slug,
			Priority:          string(c.Priority),
			PrimaryKeywords:   c.PrimaryKeywords,
			SecondaryKeywords: c.SecondaryKeywords,
			ResearchTier:      string(c.ResearchTier),
			CacheTTLDays:      c.CacheTTLDays,
		}
		saved, err := database.UpsertCluster(ctx, row)
		if err != nil {
			return fmt.Errorf("failed to seed cluster %q: %w", c.Slug, err)
		}
		fmt.Printf("seeded %-30s tier=%-10s ttl=%dd\n", saved.Slug, saved.ResearchTier, saved.CacheTTLDays)
	}
	fmt.Printf("%d clusters seeded\n", len(registry.Clusters))
	return nil
}
