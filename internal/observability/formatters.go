// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/article-engine/internal/cache"
	"github.com/jonathan/article-engine/internal/cost"
	"github.com/jonathan/article-engine/internal/governance"
	"github.com/jonathan/article-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDecision outputs a human-readable summary of a governor routing verdict.
func (p *Printer) PrintDecision(topic string, decision *governance.Decision) {
	if decision == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic:    %s\n", topic))
	sb.WriteString(fmt.Sprintf("Decision: %s\n", decision.Kind))

	if decision.Cluster != nil {
		sb.WriteString(fmt.Sprintf("Cluster:  %s (via %q)\n",
			decision.Cluster.Cluster.Slug, decision.Cluster.MatchedKeyword))
	} else {
		sb.WriteString("Cluster:  none\n")
	}

	switch decision.Kind {
	case governance.DecisionRouteTier:
		sb.WriteString(fmt.Sprintf("Tier:     %s\n", decision.Tier))
		sb.WriteString(fmt.Sprintf("Est cost: $%.4f\n", decision.EstimatedCost))
	case governance.DecisionReuseTopic:
		sb.WriteString(fmt.Sprintf("Similarity: %.4f\n", decision.Similarity))
		sb.WriteString(fmt.Sprintf("Reuse:      hit #%d, cost $0.00\n", decision.ReuseCount))
	case governance.DecisionReuseCluster:
		sb.WriteString(fmt.Sprintf("Reuse:    hit #%d, cost $0.00\n", decision.ReuseCount))
	}

	p.printBox("RESEARCH ROUTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDedup outputs the dedup guard's verdict for a topic.
func (p *Printer) PrintDedup(result types.DedupResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Approved:  %v\n", result.Approved))
	sb.WriteString(fmt.Sprintf("Category:  %s (score %d)\n", result.Category, result.PriorityScore))
	if result.IsDuplicate {
		sb.WriteString(fmt.Sprintf("Duplicate: yes (%s)\n", result.Reason))
		if result.SuggestedAlternative != "" {
			sb.WriteString(fmt.Sprintf("Try:       %s\n", result.SuggestedAlternative))
		}
	}
	p.printBox("TOPIC VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvaluation outputs a quality gate scoring breakdown.
func (p *Printer) PrintEvaluation(eval *types.QualityEvaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:  %.1f/100 -> %s\n\n", eval.OverallScore, eval.Decision))
	sb.WriteString(fmt.Sprintf("Accuracy:   %.1f\n", eval.Dimensions.Accuracy))
	sb.WriteString(fmt.Sprintf("Writing:    %.1f\n", eval.Dimensions.Writing))
	sb.WriteString(fmt.Sprintf("SEO:        %.1f\n", eval.Dimensions.SEO))
	sb.WriteString(fmt.Sprintf("Engagement: %.1f\n", eval.Dimensions.Engagement))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Citations: %d unique, refs=%v, %d words (pass=%v)\n",
		eval.Citations.CitationCount, eval.Citations.HasReferencesSection,
		eval.Citations.WordCount, eval.Citations.Passed))
	sb.WriteString(fmt.Sprintf("SEO check: density %.2f%%, readability %.1f (pass=%v)\n",
		eval.SEO.KeywordDensity, eval.SEO.ReadabilityScore, eval.SEO.Passed))

	if len(eval.Deficiencies) > 0 {
		sb.WriteString("\nDeficiencies:\n")
		count := min(len(eval.Deficiencies), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", eval.Deficiencies[i]))
		}
	}

	p.printBox("QUALITY EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLedger outputs the per-stage cost breakdown of a job's ledger.
func (p *Printer) PrintLedger(ledger *cost.Ledger) {
	if ledger == nil {
		return
	}

	var sb strings.Builder
	breakdown := ledger.Breakdown()
	stages := make([]string, 0, len(breakdown))
	for stage := range breakdown {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	for _, stage := range stages {
		sb.WriteString(fmt.Sprintf("%-10s $%.4f\n", stage, breakdown[stage]))
	}
	sb.WriteString(fmt.Sprintf("%-10s $%.4f\n", "total", ledger.Total()))
	if remaining := ledger.Remaining(); remaining >= 0 {
		sb.WriteString(fmt.Sprintf("%-10s $%.4f\n", "remaining", remaining))
	}

	p.printBox("COST LEDGER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCacheStats outputs topic cache aggregate statistics.
func (p *Printer) PrintCacheStats(entries, activeEntries, totalHits int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries:       %d\n", entries))
	sb.WriteString(fmt.Sprintf("Active:        %d\n", activeEntries))
	sb.WriteString(fmt.Sprintf("Hits recorded: %d\n", totalHits))
	p.printBox("TOPIC CACHE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClusterHit outputs details of a cluster cache hit.
func (p *Printer) PrintClusterHit(hit *cache.ClusterHit) {
	if hit == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cluster:  %s\n", hit.Match.Cluster.Slug))
	sb.WriteString(fmt.Sprintf("Age:      %.1f days\n", hit.AgeDays))
	sb.WriteString(fmt.Sprintf("Reuse:    %d hits\n", hit.ReuseCount))
	if hit.Bundle != nil {
		sb.WriteString(fmt.Sprintf("Words:    %d\n", hit.Bundle.WordCount()))
		sb.WriteString(fmt.Sprintf("Sources:  %d\n", len(hit.Bundle.Sources)))
	}
	p.printBox("CLUSTER CACHE HIT", strings.TrimSuffix(sb.String(), "\n"))
}
