// Package dedup guards against producing near-duplicate articles and scores
// candidate topics by business value.
package dedup

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/jonathan/article-engine/internal/config"
	"github.com/jonathan/article-engine/internal/types"
)

// Guard validates candidate topics against the registry of completed work.
// The completed set is rebuilt from the article store at startup and grows as
// jobs finish; it is process-scoped state over a durable backing store.
type Guard struct {
	categories       []config.Category
	backlog          []config.BacklogEntry
	overlapThreshold float64
	lowValueScore    int

	mu        sync.RWMutex
	completed map[string]bool // normalized titles and slug forms
	titles    []string        // normalized titles, for overlap scans
}

// Options configures a Guard
type Options struct {
	Categories        []config.Category
	Backlog           []config.BacklogEntry
	OverlapThreshold  float64 // duplicate when overlap strictly exceeds this
	LowValueThreshold int     // warn when priority score is below this
}

// NewGuard creates a Guard with the given scoring tables and thresholds
func NewGuard(opts Options) *Guard {
	if opts.OverlapThreshold == 0 {
		opts.OverlapThreshold = 0.8
	}
	return &Guard{
		categories:       opts.Categories,
		backlog:          opts.Backlog,
		overlapThreshold: opts.OverlapThreshold,
		lowValueScore:    opts.LowValueThreshold,
		completed:        make(map[string]bool),
	}
}

// Load registers previously completed topics. Both the normalized title and
// its slug form are tracked so lookups match either representation.
func (g *Guard) Load(titles []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range titles {
		norm := Normalize(t)
		if norm == "" {
			continue
		}
		if !g.completed[norm] {
			g.completed[norm] = true
			g.titles = append(g.titles, norm)
		}
		g.completed[Slugify(t)] = true
	}
}

// Add registers a newly completed topic
func (g *Guard) Add(title string) {
	g.Load([]string{title})
}

// CompletedCount returns the number of distinct completed topics tracked
func (g *Guard) CompletedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.titles)
}

// Validate checks a candidate topic for duplication and scores its priority.
// Duplication and priority are independent: a unique but low-value topic is
// approved with a warning and a suggested alternative.
func (g *Guard) Validate(topic string) types.DedupResult {
	norm := Normalize(topic)
	score, category := g.scoreTopic(norm)

	result := types.DedupResult{
		Approved:      true,
		PriorityScore: score,
		Category:      category,
		Reason:        "approved",
	}

	if norm == "" {
		result.Approved = false
		result.Reason = "empty topic"
		return result
	}

	g.mu.RLock()
	exact := g.completed[norm] || g.completed[Slugify(topic)]
	var nearMatch string
	var nearRatio float64
	if !exact {
		nearMatch, nearRatio = g.nearestCompletedLocked(norm)
	}
	g.mu.RUnlock()

	if exact {
		result.Approved = false
		result.IsDuplicate = true
		result.Reason = fmt.Sprintf("duplicate: %q already produced", topic)
		result.SuggestedAlternative = g.suggestAlternative()
		return result
	}

	if nearRatio > g.overlapThreshold {
		result.Approved = false
		result.IsDuplicate = true
		result.Reason = fmt.Sprintf("near-duplicate of %q (%.0f%% word overlap)", nearMatch, nearRatio*100)
		result.SuggestedAlternative = g.suggestAlternative()
		return result
	}

	if score < g.lowValueScore {
		result.Reason = fmt.Sprintf("low-value topic (score %d, category %s); consider the suggested alternative", score, category)
		result.SuggestedAlternative = g.suggestAlternative()
	}

	return result
}

// nearestCompletedLocked returns the completed title with the highest word
// overlap against the candidate, measured over the candidate's word set.
// Caller must hold at least a read lock.
func (g *Guard) nearestCompletedLocked(normCandidate string) (string, float64) {
	candidateWords := wordSet(normCandidate)
	if len(candidateWords) == 0 {
		return "", 0
	}

	var bestTitle string
	var bestRatio float64
	for _, title := range g.titles {
		overlap := 0
		for w := range wordSet(title) {
			if candidateWords[w] {
				overlap++
			}
		}
		ratio := float64(overlap) / float64(len(candidateWords))
		if ratio > bestRatio {
			bestRatio = ratio
			bestTitle = title
		}
	}
	return bestTitle, bestRatio
}

// scoreTopic scans the category table in precedence order and returns the
// first matching category's score. Topics matching nothing fall back to the
// default category.
func (g *Guard) scoreTopic(norm string) (int, string) {
	defScore, defName := 1, config.DefaultCategory
	for _, cat := range g.categories {
		if cat.Name == config.DefaultCategory {
			defScore, defName = cat.Score, cat.Name
			continue
		}
		for _, kw := range cat.Keywords {
			if kw != "" && strings.Contains(norm, Normalize(kw)) {
				return cat.Score, cat.Name
			}
		}
	}
	return defScore, defName
}

// suggestAlternative scans the backlog in category precedence order and
// returns the first entry not yet completed, or empty when the backlog is
// exhausted.
func (g *Guard) suggestAlternative() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, cat := range g.categories {
		for _, entry := range g.backlog {
			if entry.Category != cat.Name {
				continue
			}
			if !g.completed[Normalize(entry.Title)] {
				return entry.Title
			}
		}
	}
	// Backlog entries with categories outside the table are considered last
	for _, entry := range g.backlog {
		if !g.completed[Normalize(entry.Title)] {
			return entry.Title
		}
	}
	return ""
}

// Normalize strips punctuation, collapses whitespace and lower-cases a topic
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Slugify converts a topic to its hyphenated slug form
func Slugify(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "-")
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
