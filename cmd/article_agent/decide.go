package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/article-engine/internal/config"
)

var decideCommand = &cobra.Command{
	Use:   "decide <topic>",
	Short: "Show the research routing decision for a topic without running it",
	Long: `Runs dedup validation and research governance for a topic and prints what the pipeline would do: reuse cached research, route to a research tier, or skip. No research is performed and nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: decideCmd,
}

var (
	decideConfigPath   string
	decideRegistryPath string
	decideAPIKey       string
	decideDatabaseURL  string
	decideVerbose      bool
)

func init() {
	decideCommand.Flags().StringVar(&decideConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	decideCommand.Flags().StringVarP(&decideRegistryPath, "registry", "r", "", "Path to cluster registry YAML seed file")
	decideCommand.Flags().StringVar(&decideAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	decideCommand.Flags().StringVar(&decideDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	decideCommand.Flags().BoolVarP(&decideVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(decideCommand)
}

func decideCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	topic := args[0]

	cfg, err := loadConfigFile(decideConfigPath, decideVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("registry") {
		cfg.RegistryPath = decideRegistryPath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = decideAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = decideDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = decideVerbose
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	dedupResult := eng.guard.Validate(topic)
	eng.printer.PrintDedup(dedupResult)
	if !dedupResult.Approved {
		return nil
	}

	decision, err := eng.governor.Decide(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to decide routing for %q: %w", topic, err)
	}
	eng.printer.PrintDecision(topic, decision)
	return nil
}
