// Package types provides type definitions for structured data used throughout the article-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Source represents one cited source in a research bundle
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SEOData represents keyword-level SEO findings extracted during research
type SEOData struct {
	PrimaryKeyword     string   `json:"primary_keyword,omitempty"`
	SecondaryKeywords  []string `json:"secondary_keywords,omitempty"`
	SearchVolume       int      `json:"search_volume,omitempty"`
	KeywordDifficulty  float64  `json:"keyword_difficulty,omitempty"`
	SuggestedTitleTags []string `json:"suggested_title_tags,omitempty"`
}

// SERPAnalysis represents competitor analysis of the search results page
type SERPAnalysis struct {
	TopResults     []Source `json:"top_results,omitempty"`
	AvgWordCount   int      `json:"avg_word_count,omitempty"`
	CommonHeadings []string `json:"common_headings,omitempty"`
	ContentGaps    []string `json:"content_gaps,omitempty"`
}

// AIInsights represents model-synthesized angles and talking points
type AIInsights struct {
	KeyTakeaways    []string `json:"key_takeaways,omitempty"`
	UniqueAngles    []string `json:"unique_angles,omitempty"`
	CommonQuestions []string `json:"common_questions,omitempty"`
}

// ResearchBundle is the structured research payload moving through the pipeline.
// Content and Sources are always populated for a usable bundle; the sub-objects
// are optional and consumers must check for nil rather than probing blindly.
type ResearchBundle struct {
	Topic        string        `json:"topic"`
	Content      string        `json:"content"`
	Sources      []Source      `json:"sources,omitempty"`
	SEOData      *SEOData      `json:"seo_data,omitempty"`
	SERPAnalysis *SERPAnalysis `json:"serp_analysis,omitempty"`
	AIInsights   *AIInsights   `json:"ai_insights,omitempty"`
	Tier         ResearchTier  `json:"tier,omitempty"`
	Cost         float64       `json:"cost"`
	RetrievedAt  time.Time     `json:"retrieved_at,omitempty"`
}

// WordCount returns the number of whitespace-separated words in the bundle content
func (b *ResearchBundle) WordCount() int {
	if b == nil {
		return 0
	}
	count := 0
	inWord := false
	for _, r := range b.Content {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}
