// Package main provides the entry point for the article engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "article_agent",
	Short: "SEO article research and generation engine",
	Long:  "article_agent produces long-form SEO articles with cost-governed research: topics are classified into clusters, research is cached and reused across related topics, and finished drafts pass a quality gate before publishing.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
