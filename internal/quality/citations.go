// Package quality scores finished articles against citation, SEO and
// readability thresholds and emits the publish/review/reject decision.
package quality

import (
	"regexp"
	"strings"

	"github.com/jonathan/article-engine/internal/types"
)

var (
	citationMarkerRe    = regexp.MustCompile(`\[(\d+)\]`)
	referencesHeaderRe  = regexp.MustCompile(`(?im)^#{1,6}\s*(references|sources)\b`)
	whitespaceSplitter  = regexp.MustCompile(`\s+`)
	markdownSyntaxChars = "#*_>`|"
)

// CountCitations returns the number of unique bracketed numeric citation
// markers in the content. "[1] ... [2] ... [1]" counts as 2.
func CountCitations(content string) int {
	seen := make(map[string]bool)
	for _, m := range citationMarkerRe.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = true
	}
	return len(seen)
}

// HasReferencesSection reports whether the content contains a references or
// sources section header, matched case-insensitively.
func HasReferencesSection(content string) bool {
	return referencesHeaderRe.MatchString(content)
}

// CountWords returns the number of words in the content, ignoring pure
// markdown syntax tokens.
func CountWords(content string) int {
	count := 0
	for _, tok := range whitespaceSplitter.Split(strings.TrimSpace(content), -1) {
		if tok == "" || strings.Trim(tok, markdownSyntaxChars) == "" {
			continue
		}
		count++
	}
	return count
}

// ValidateCitations checks citation count, references section presence and
// word count against the configured minimums. All three must clear for the
// check to pass.
func ValidateCitations(content string, minCitations, minWords int) types.CitationCheck {
	check := types.CitationCheck{
		CitationCount:        CountCitations(content),
		HasReferencesSection: HasReferencesSection(content),
		WordCount:            CountWords(content),
	}
	check.Passed = check.CitationCount >= minCitations &&
		check.HasReferencesSection &&
		check.WordCount >= minWords
	return check
}
