// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	RegistryPath string `json:"registry_path,omitempty"` // Path to cluster registry YAML seed file

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA sources
	Workers     int    `json:"workers,omitempty" validate:"gte=0"`

	// Cache tuning
	TopicCacheTTLDays   int     `json:"topic_cache_ttl_days,omitempty" validate:"gte=0"`
	ClusterTTLDays      int     `json:"cluster_ttl_days,omitempty" validate:"gte=0"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" validate:"gte=0,lte=1"`

	// Cost governance
	CostCapPerJob        float64 `json:"cost_cap_per_job,omitempty" validate:"gte=0"`
	SufficiencyThreshold float64 `json:"sufficiency_threshold,omitempty" validate:"gte=0,lte=100"`

	// Dedup
	OverlapThreshold  float64 `json:"overlap_threshold,omitempty" validate:"gte=0,lte=1"`
	LowValueThreshold int     `json:"low_value_threshold,omitempty" validate:"gte=0"`

	// Quality gate
	MinCitations     int     `json:"min_citations,omitempty" validate:"gte=0"`
	MinWordCount     int     `json:"min_word_count,omitempty" validate:"gte=0"`
	SEOPassScore     float64 `json:"seo_pass_score,omitempty" validate:"gte=0,lte=100"`
	PublishThreshold float64 `json:"publish_threshold,omitempty" validate:"gte=0,lte=100"`
	ReviewThreshold  float64 `json:"review_threshold,omitempty" validate:"gte=0,lte=100"`
	MaxRefinePasses  int     `json:"max_refine_passes,omitempty" validate:"gte=0,lte=5"`
}

// Defaults returns the baseline configuration used when neither the config
// file nor CLI flags supply a value. The thresholds are tuning knobs, not
// contracts; per-cluster TTL overrides live in the registry seed file.
func Defaults() Config {
	return Config{
		Workers:              2,
		TopicCacheTTLDays:    30,
		ClusterTTLDays:       90,
		SimilarityThreshold:  0.85,
		CostCapPerJob:        5.00,
		SufficiencyThreshold: 60,
		OverlapThreshold:     0.8,
		LowValueThreshold:    3,
		MinCitations:         5,
		MinWordCount:         2000,
		SEOPassScore:         70,
		PublishThreshold:     85,
		ReviewThreshold:      60,
		MaxRefinePasses:      2,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.ReviewThreshold > 0 && c.PublishThreshold > 0 && c.ReviewThreshold > c.PublishThreshold {
		return fmt.Errorf("config error: 'review_threshold' must not exceed 'publish_threshold'")
	}

	if c.RegistryPath != "" {
		if _, err := os.Stat(c.RegistryPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: registry file not found: %s", c.RegistryPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.RegistryPath == "" {
		result.RegistryPath = defaults.RegistryPath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.TopicCacheTTLDays == 0 {
		result.TopicCacheTTLDays = defaults.TopicCacheTTLDays
	}
	if result.ClusterTTLDays == 0 {
		result.ClusterTTLDays = defaults.ClusterTTLDays
	}
	if result.SimilarityThreshold == 0 {
		result.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if result.CostCapPerJob == 0 {
		result.CostCapPerJob = defaults.CostCapPerJob
	}
	if result.SufficiencyThreshold == 0 {
		result.SufficiencyThreshold = defaults.SufficiencyThreshold
	}
	if result.OverlapThreshold == 0 {
		result.OverlapThreshold = defaults.OverlapThreshold
	}
	if result.LowValueThreshold == 0 {
		result.LowValueThreshold = defaults.LowValueThreshold
	}
	if result.MinCitations == 0 {
		result.MinCitations = defaults.MinCitations
	}
	if result.MinWordCount == 0 {
		result.MinWordCount = defaults.MinWordCount
	}
	if result.SEOPassScore == 0 {
		result.SEOPassScore = defaults.SEOPassScore
	}
	if result.PublishThreshold == 0 {
		result.PublishThreshold = defaults.PublishThreshold
	}
	if result.ReviewThreshold == 0 {
		result.ReviewThreshold = defaults.ReviewThreshold
	}
	if result.MaxRefinePasses == 0 {
		result.MaxRefinePasses = defaults.MaxRefinePasses
	}

	return result
}
