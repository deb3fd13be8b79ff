package quality

import (
	"regexp"
	"strings"

	"github.com/jonathan/article-engine/internal/types"
)

var (
	h1Re           = regexp.MustCompile(`(?m)^#\s+\S`)
	h2Re           = regexp.MustCompile(`(?m)^##\s+\S`)
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
)

// SEO scoring bands and penalties. Sub-metrics outside their band subtract
// fixed points from a 100-point starting score.
const (
	minKeywordDensity = 0.5 // percent
	maxKeywordDensity = 3.0
	minH2Headings     = 3
	minInternalLinks  = 2
	minExternalLinks  = 2
	minReadability    = 50.0

	densityPenalty     = 15.0
	headerPenalty      = 20.0
	internalPenalty    = 10.0
	externalPenalty    = 10.0
	readabilityPenalty = 15.0
)

// KeywordDensity returns occurrences of the primary keyword as a percentage
// of total words. Multi-word keywords count each phrase occurrence once.
func KeywordDensity(content, keyword string) float64 {
	words := CountWords(content)
	if words == 0 || strings.TrimSpace(keyword) == "" {
		return 0
	}
	occurrences := strings.Count(strings.ToLower(content), strings.ToLower(keyword))
	return float64(occurrences) / float64(words) * 100
}

// CountLinks returns the internal and external markdown link counts.
// Internal links are relative paths; external links are absolute URLs.
func CountLinks(content string) (internal, external int) {
	for _, m := range markdownLinkRe.FindAllStringSubmatch(content, -1) {
		target := m[1]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			external++
		} else {
			internal++
		}
	}
	return internal, external
}

// ValidateSEO scores the content's on-page SEO from a 100-point start,
// subtracting fixed penalties per sub-metric outside its target band.
// The pass threshold is configuration, not a contract.
func ValidateSEO(content, primaryKeyword string, passScore float64) types.SEOCheck {
	internal, external := CountLinks(content)
	check := types.SEOCheck{
		KeywordDensity:   KeywordDensity(content, primaryKeyword),
		H1Count:          len(h1Re.FindAllString(content, -1)),
		H2Count:          len(h2Re.FindAllString(content, -1)),
		InternalLinks:    internal,
		ExternalLinks:    external,
		ReadabilityScore: FleschReadingEase(content),
	}
	check.ValidHeaders = check.H1Count == 1 && check.H2Count >= minH2Headings

	score := 100.0
	if check.KeywordDensity < minKeywordDensity || check.KeywordDensity > maxKeywordDensity {
		score -= densityPenalty
	}
	if !check.ValidHeaders {
		score -= headerPenalty
	}
	if check.InternalLinks < minInternalLinks {
		score -= internalPenalty
	}
	if check.ExternalLinks < minExternalLinks {
		score -= externalPenalty
	}
	if check.ReadabilityScore < minReadability {
		score -= readabilityPenalty
	}
	if score < 0 {
		score = 0
	}

	check.Score = score
	check.Passed = score >= passScore
	return check
}
