package types

// Decision represents the quality gate outcome for an article
type Decision string

// Quality gate decisions
const (
	DecisionPublish Decision = "publish"
	DecisionReview  Decision = "review"
	DecisionReject  Decision = "reject"
)

// CitationCheck holds the citation validation sub-result
type CitationCheck struct {
	CitationCount        int  `json:"citation_count"`
	HasReferencesSection bool `json:"has_references_section"`
	WordCount            int  `json:"word_count"`
	Passed               bool `json:"passed"`
}

// SEOCheck holds the SEO validation sub-result
type SEOCheck struct {
	KeywordDensity   float64 `json:"keyword_density"`
	H1Count          int     `json:"h1_count"`
	H2Count          int     `json:"h2_count"`
	ValidHeaders     bool    `json:"valid_headers"`
	InternalLinks    int     `json:"internal_links"`
	ExternalLinks    int     `json:"external_links"`
	ReadabilityScore float64 `json:"readability_score"`
	Score            float64 `json:"score"`
	Passed           bool    `json:"passed"`
}

// DimensionScores holds the per-dimension quality scores (0-100 each)
type DimensionScores struct {
	Accuracy   float64 `json:"accuracy"`
	Writing    float64 `json:"writing"`
	SEO        float64 `json:"seo"`
	Engagement float64 `json:"engagement"`
}

// QualityEvaluation is one scoring result for a candidate article.
// A refinement pass produces a new evaluation; evaluations are never mutated.
type QualityEvaluation struct {
	OverallScore float64         `json:"overall_score"`
	Dimensions   DimensionScores `json:"dimensions"`
	Citations    CitationCheck   `json:"citations"`
	SEO          SEOCheck        `json:"seo"`
	Decision     Decision        `json:"decision"`
	Deficiencies []string        `json:"deficiencies,omitempty"`
}
