package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/article-engine/internal/config"
	"github.com/jonathan/article-engine/internal/pipeline"
	"github.com/jonathan/article-engine/internal/queue"
)

var runCommand = &cobra.Command{
	Use:   "run [topic]...",
	Short: "Generate articles for one or more topics end-to-end",
	Long: `Runs the full generation pipeline for each topic: dedup -> governance -> research -> drafting -> scoring -> refinement -> imagery -> publish decision.

Topics are processed through a bounded worker queue with retry on transient research failures. Configuration can be loaded from a JSON file using --config; command-line arguments override config file values.`,
	RunE: runArticlesCmd,
}

var (
	runConfigPath    string
	runTopicsFile    string
	runRegistryPath  string
	runAPIKey        string
	runDatabaseURL   string
	runWorkers       int
	runCostCap       float64
	runMaxRefine     int
	runUseBrowser    bool
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTopicsFile, "topics-file", "f", "", "Path to a file with one topic per line")
	runCommand.Flags().StringVarP(&runRegistryPath, "registry", "r", "", "Path to cluster registry YAML seed file")
	runCommand.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Number of concurrent pipeline workers")
	runCommand.Flags().Float64Var(&runCostCap, "cost-cap", 0, "Maximum LLM and search spend per article job (USD)")
	runCommand.Flags().IntVar(&runMaxRefine, "max-refine-passes", 0, "Maximum refinement passes per article")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sources (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for caches and artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runArticlesCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfigFile(runConfigPath, runVerbose)
	if err != nil {
		return err
	}

	// Apply CLI overrides; only override if the flag was explicitly set
	if cmd.Flags().Changed("registry") {
		cfg.RegistryPath = runRegistryPath
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("cost-cap") {
		cfg.CostCapPerJob = runCostCap
	}
	if cmd.Flags().Changed("max-refine-passes") {
		cfg.MaxRefinePasses = runMaxRefine
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	topics, err := collectTopics(args, runTopicsFile)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required (as an argument or via --topics-file)")
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	q := queue.New(func(ctx context.Context, topic string) (*pipeline.Result, error) {
		return pipeline.Run(ctx, pipeline.RunOptions{Topic: topic, Verbose: cfg.Verbose}, eng.deps)
	}, queue.Config{Workers: cfg.Workers})

	reports := q.Process(ctx, topics)

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED   %-40s %v (attempts: %d)\n", report.Topic, report.Err, report.Attempts)
			continue
		}
		r := report.Result
		fmt.Printf("%-8s %-40s score=%.1f cost=$%.2f passes=%d\n",
			strings.ToUpper(string(r.Outcome)), report.Topic, overallScore(r), r.TotalCost, r.RefinePasses)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d topics failed", failed, len(topics))
	}
	return nil
}

func overallScore(r *pipeline.Result) float64 {
	if r.Evaluation == nil {
		return 0
	}
	return r.Evaluation.OverallScore
}

// collectTopics merges positional args with the optional topics file. Blank
// lines and #-comments in the file are skipped.
func collectTopics(args []string, path string) ([]string, error) {
	topics := make([]string, 0, len(args))
	for _, a := range args {
		if t := strings.TrimSpace(a); t != "" {
			topics = append(topics, t)
		}
	}
	if path == "" {
		return topics, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topics file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}
	return topics, nil
}
