package research

import (
	"regexp"
	"strings"

	"github.com/jonathan/article-engine/internal/types"
)

// Sufficiency component weights. The composite is normalized to 0-100.
const (
	lengthPointsMax = 40
	sourcePointsMax = 30
	linkPointsMax   = 30

	// fullLengthWords is the content length that earns full length points.
	fullLengthWords = 2000
	// pointsPerSource is earned per cited source up to the component max.
	pointsPerSource = 6
	// pointsPerLink is earned per URL found in the content body.
	pointsPerLink = 5
)

var urlRe = regexp.MustCompile(`https?://[^\s)\]">]+`)

// Sufficiency scores a research bundle 0-100 on content length, source count,
// and link density. Thin research below the configured pass threshold is not
// written back to the caches; it gets recomputed next time instead of
// polluting cache rows with unusable data.
func Sufficiency(bundle *types.ResearchBundle) int {
	if bundle == nil {
		return 0
	}

	words := bundle.WordCount()
	lengthPoints := words * lengthPointsMax / fullLengthWords
	if lengthPoints > lengthPointsMax {
		lengthPoints = lengthPointsMax
	}

	sourcePoints := len(bundle.Sources) * pointsPerSource
	if sourcePoints > sourcePointsMax {
		sourcePoints = sourcePointsMax
	}

	linkPoints := countLinks(bundle.Content) * pointsPerLink
	if linkPoints > linkPointsMax {
		linkPoints = linkPointsMax
	}

	return lengthPoints + sourcePoints + linkPoints
}

// Sufficient reports whether the bundle clears the pass threshold.
func Sufficient(bundle *types.ResearchBundle, threshold int) bool {
	return Sufficiency(bundle) >= threshold
}

func countLinks(content string) int {
	if !strings.Contains(content, "http") {
		return 0
	}
	return len(urlRe.FindAllString(content, -1))
}
