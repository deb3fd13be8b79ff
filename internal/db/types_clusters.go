package db

import (
	"time"

	"github.com/google/uuid"
)

// TopicClusterRow represents a topic cluster record with cumulative stats.
// Clusters are statically seeded at deployment and only grown afterwards.
type TopicClusterRow struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	Priority           string    `json:"priority"`
	PrimaryKeywords    []string  `json:"primary_keywords"`
	SecondaryKeywords  []string  `json:"secondary_keywords,omitempty"`
	ResearchTier       string    `json:"research_tier"`
	CacheTTLDays       int       `json:"cache_ttl_days"`
	ArticleCount       int       `json:"article_count"`
	TotalResearchSpend float64   `json:"total_research_spend"`
	CreatedAt          time.Time `json:"created_at"`
}
