package quality

import (
	"github.com/jonathan/article-engine/internal/types"
)

// Deficiency labels reported on failed evaluations. The refinement pass
// targets exactly these; labels are stable identifiers, not display strings.
const (
	DeficiencyFewCitations = "too_few_citations"
	DeficiencyShortContent = "content_too_short"
	DeficiencyLowWriting   = "low_writing_score"
	DeficiencyLowAccuracy  = "low_accuracy_score"
	DeficiencyWeakSEO      = "weak_seo"
)

// Dimension weights for the overall 0-100 score
const (
	weightAccuracy   = 0.30
	weightWriting    = 0.25
	weightSEO        = 0.25
	weightEngagement = 0.20
)

// Options configures a Gate. Thresholds were observed being tuned over time;
// they are injected, never hard-coded at call sites.
type Options struct {
	MinCitations     int
	MinWordCount     int
	SEOPassScore     float64
	PublishThreshold float64
	ReviewThreshold  float64
}

// DefaultOptions returns the current production thresholds
func DefaultOptions() Options {
	return Options{
		MinCitations:     5,
		MinWordCount:     2000,
		SEOPassScore:     70,
		PublishThreshold: 85,
		ReviewThreshold:  60,
	}
}

// Gate evaluates finished articles. Evaluation is deterministic: the same
// content and thresholds always produce the same result.
type Gate struct {
	opts Options
}

// NewGate creates a Gate with the given thresholds
func NewGate(opts Options) *Gate {
	return &Gate{opts: opts}
}

// Evaluate scores an article and maps the overall score onto the
// publish/review/reject decision. Quality rejection is data, not an error.
func (g *Gate) Evaluate(content, primaryKeyword string) *types.QualityEvaluation {
	citations := ValidateCitations(content, g.opts.MinCitations, g.opts.MinWordCount)
	seo := ValidateSEO(content, primaryKeyword, g.opts.SEOPassScore)

	dims := types.DimensionScores{
		Accuracy:   accuracyScore(citations),
		Writing:    writingScore(seo.ReadabilityScore),
		SEO:        seo.Score,
		Engagement: engagementScore(citations, seo),
	}

	overall := dims.Accuracy*weightAccuracy +
		dims.Writing*weightWriting +
		dims.SEO*weightSEO +
		dims.Engagement*weightEngagement

	eval := &types.QualityEvaluation{
		OverallScore: overall,
		Dimensions:   dims,
		Citations:    citations,
		SEO:          seo,
		Decision:     g.decide(overall),
	}
	eval.Deficiencies = g.deficiencies(eval)
	return eval
}

func (g *Gate) decide(overall float64) types.Decision {
	switch {
	case overall >= g.opts.PublishThreshold:
		return types.DecisionPublish
	case overall >= g.opts.ReviewThreshold:
		return types.DecisionReview
	default:
		return types.DecisionReject
	}
}

// deficiencies lists the specific failed sub-checks a refinement pass should
// target. An empty list means no targeted refinement is available.
func (g *Gate) deficiencies(eval *types.QualityEvaluation) []string {
	var out []string
	if eval.Citations.CitationCount < g.opts.MinCitations || !eval.Citations.HasReferencesSection {
		out = append(out, DeficiencyFewCitations)
	}
	if eval.Citations.WordCount < g.opts.MinWordCount {
		out = append(out, DeficiencyShortContent)
	}
	if eval.Dimensions.Writing < g.opts.ReviewThreshold {
		out = append(out, DeficiencyLowWriting)
	}
	if eval.Dimensions.Accuracy < g.opts.ReviewThreshold {
		out = append(out, DeficiencyLowAccuracy)
	}
	if !eval.SEO.Passed {
		out = append(out, DeficiencyWeakSEO)
	}
	return out
}

// accuracyScore derives the accuracy dimension from citation evidence:
// each unique citation is worth 12 points and a references section 28,
// capped at 100.
func accuracyScore(c types.CitationCheck) float64 {
	score := float64(c.CitationCount) * 12
	if c.HasReferencesSection {
		score += 28
	}
	if score > 100 {
		score = 100
	}
	return score
}

// writingScore maps readability into the writing dimension. Readability in
// the 50-80 band is ideal long-form register; scores fall off outside it.
func writingScore(readability float64) float64 {
	switch {
	case readability >= 50 && readability <= 80:
		return 90
	case readability >= 40 && readability < 50:
		return 75
	case readability > 80:
		return 80
	case readability >= 30:
		return 60
	default:
		return 40
	}
}

// engagementScore rewards structure and outbound evidence: headings, links
// and substantial word count.
func engagementScore(c types.CitationCheck, s types.SEOCheck) float64 {
	score := 40.0
	if s.ValidHeaders {
		score += 20
	}
	if s.InternalLinks >= minInternalLinks {
		score += 10
	}
	if s.ExternalLinks >= minExternalLinks {
		score += 10
	}
	if c.WordCount >= 1500 {
		score += 10
	}
	if c.WordCount >= 2500 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
