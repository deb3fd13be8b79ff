package types

// Priority represents the business value tier of a topic cluster
type Priority string

// Priority tiers in descending business value
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ResearchTier represents the cost/quality level of external research strategy
type ResearchTier string

const (
	// TierPremium is the high-cost, high-quality deep research strategy
	TierPremium ResearchTier = "premium"
	// TierStandard is the medium-cost web research strategy
	TierStandard ResearchTier = "standard"
	// TierSynthesis is the low-cost model-only synthesis strategy
	TierSynthesis ResearchTier = "synthesis"
)

// TopicCluster is a named group of related topics sharing research
type TopicCluster struct {
	Name              string       `json:"name" yaml:"name"`
	Slug              string       `json:"slug" yaml:"slug"`
	Priority          Priority     `json:"priority" yaml:"priority"`
	PrimaryKeywords   []string     `json:"primary_keywords" yaml:"primary_keywords"`
	SecondaryKeywords []string     `json:"secondary_keywords,omitempty" yaml:"secondary_keywords,omitempty"`
	ResearchTier      ResearchTier `json:"research_tier" yaml:"research_tier"`
	CacheTTLDays      int          `json:"cache_ttl_days" yaml:"cache_ttl_days"`
}

// ClusterMatch is the result of classifying a topic into a cluster
type ClusterMatch struct {
	Cluster        *TopicCluster `json:"cluster"`
	MatchedKeyword string        `json:"matched_keyword"`
}
