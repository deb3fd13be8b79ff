// Package llm provides centralized LLM configuration and client abstractions.
// This package enables easy switching between model tiers and future multi-provider support.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: research synthesis, editing passes
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: long-form drafting, refinement
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, currently the only one wired
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// CallCosts is the estimated spend per generation call by tier, fed into
	// the per-job cost ledger. Estimates, not invoices: the ledger needs
	// conservative numbers before a stage runs, not exact ones after.
	CallCosts map[ModelTier]float64
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		CallCosts: map[ModelTier]float64{
			TierLite:     0.005,
			TierStandard: 0.02,
			TierAdvanced: 0.12,
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// CallCost returns the estimated per-call cost for a tier
func (c *Config) CallCost(tier ModelTier) float64 {
	return c.CallCosts[tier]
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:  c.Provider,
		Models:    make(map[ModelTier]string),
		CallCosts: make(map[ModelTier]float64),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.CallCosts {
		newConfig.CallCosts[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
