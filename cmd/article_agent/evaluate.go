package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/article-engine/internal/config"
	"github.com/jonathan/article-engine/internal/observability"
	"github.com/jonathan/article-engine/internal/quality"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate <article.md>",
	Short: "Run the quality gate over a markdown article file",
	Long: `Scores an existing markdown article against the publication quality gate (citations, length, readability, SEO) and prints the publish/review/reject decision. Purely local; no API calls or database access.`,
	Args: cobra.ExactArgs(1),
	RunE: evaluateCmd,
}

var (
	evaluateConfigPath string
	evaluateKeyword    string
)

func init() {
	evaluateCommand.Flags().StringVar(&evaluateConfigPath, "config", "", "Path to config.json file with quality gate thresholds")
	evaluateCommand.Flags().StringVarP(&evaluateKeyword, "keyword", "k", "", "Primary SEO keyword to score density against")

	rootCmd.AddCommand(evaluateCommand)
}

func evaluateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(evaluateConfigPath, false)
	if err != nil {
		return err
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read article: %w", err)
	}

	gate := quality.NewGate(quality.Options{
		MinCitations:     cfg.MinCitations,
		MinWordCount:     cfg.MinWordCount,
		SEOPassScore:     cfg.SEOPassScore,
		PublishThreshold: cfg.PublishThreshold,
		ReviewThreshold:  cfg.ReviewThreshold,
	})
	eval := gate.Evaluate(string(content), evaluateKeyword)

	observability.NewPrinter(os.Stdout).PrintEvaluation(eval)
	return nil
}
