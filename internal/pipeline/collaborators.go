package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/article-engine/internal/llm"
	"github.com/jonathan/article-engine/internal/prompts"
	"github.com/jonathan/article-engine/internal/quality"
	"github.com/jonathan/article-engine/internal/types"
)

// StageResult is the uniform return of every downstream generation
// collaborator: what it produced and what it cost.
type StageResult struct {
	Output string
	Cost   float64
}

// Drafter turns a research bundle into a full article draft.
type Drafter interface {
	Draft(ctx context.Context, topic string, bundle *types.ResearchBundle) (*StageResult, error)
}

// Refiner rewrites a draft targeting the specific deficiencies the quality
// gate reported.
type Refiner interface {
	Refine(ctx context.Context, content string, bundle *types.ResearchBundle, deficiencies []string) (*StageResult, error)
}

// ImagePrompter produces a hero-image generation prompt for an article.
type ImagePrompter interface {
	ImagePrompt(ctx context.Context, topic, content string) (*StageResult, error)
}

// LLMDrafter drafts articles with the advanced model tier.
type LLMDrafter struct {
	client llm.Client
	config *llm.Config
}

// NewLLMDrafter creates the production drafting collaborator.
func NewLLMDrafter(client llm.Client, config *llm.Config) *LLMDrafter {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &LLMDrafter{client: client, config: config}
}

// Draft generates a complete markdown article from the research bundle.
func (d *LLMDrafter) Draft(ctx context.Context, topic string, bundle *types.ResearchBundle) (*StageResult, error) {
	prompt := draftPrompt(topic, bundle)
	output, err := d.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("drafting failed: %w", err)
	}
	return &StageResult{Output: output, Cost: d.config.CallCost(llm.TierAdvanced)}, nil
}

// LLMRefiner edits drafts with the standard model tier.
type LLMRefiner struct {
	client llm.Client
	config *llm.Config
}

// NewLLMRefiner creates the production refinement collaborator.
func NewLLMRefiner(client llm.Client, config *llm.Config) *LLMRefiner {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &LLMRefiner{client: client, config: config}
}

// Refine rewrites the draft to fix exactly the reported deficiencies.
func (r *LLMRefiner) Refine(ctx context.Context, content string, bundle *types.ResearchBundle, deficiencies []string) (*StageResult, error) {
	prompt := refinePrompt(content, bundle, deficiencies)
	output, err := r.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("refinement failed: %w", err)
	}
	return &StageResult{Output: output, Cost: r.config.CallCost(llm.TierStandard)}, nil
}

// LLMImagePrompter produces image prompts with the lite model tier.
type LLMImagePrompter struct {
	client llm.Client
	config *llm.Config
}

// NewLLMImagePrompter creates the production image-prompt collaborator.
func NewLLMImagePrompter(client llm.Client, config *llm.Config) *LLMImagePrompter {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &LLMImagePrompter{client: client, config: config}
}

// ImagePrompt describes a hero image for the article.
func (p *LLMImagePrompter) ImagePrompt(ctx context.Context, topic, content string) (*StageResult, error) {
	excerpt := runeSafeExcerpt(content, 1500)
	prompt := fmt.Sprintf(prompts.MustGet("generation.json", "image-prompt"), topic, excerpt)

	output, err := p.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("image prompt generation failed: %w", err)
	}
	return &StageResult{Output: output, Cost: p.config.CallCost(llm.TierLite)}, nil
}

func draftPrompt(topic string, bundle *types.ResearchBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, prompts.MustGet("generation.json", "draft-article"), topic)

	if bundle.SEOData != nil && bundle.SEOData.PrimaryKeyword != "" {
		fmt.Fprintf(&b, prompts.MustGet("generation.json", "draft-primary-keyword"), bundle.SEOData.PrimaryKeyword)
		if len(bundle.SEOData.SecondaryKeywords) > 0 {
			fmt.Fprintf(&b, prompts.MustGet("generation.json", "draft-secondary-keywords"), strings.Join(bundle.SEOData.SecondaryKeywords, ", "))
		}
	}

	fmt.Fprintf(&b, "\nResearch material:\n%s\n", bundle.Content)

	if len(bundle.Sources) > 0 {
		b.WriteString("\nSources to cite:\n")
		for i, src := range bundle.Sources {
			fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, src.Title, src.URL)
		}
	}
	return b.String()
}

func refinePrompt(content string, bundle *types.ResearchBundle, deficiencies []string) string {
	var b strings.Builder
	b.WriteString(prompts.MustGet("generation.json", "refine-article"))
	for _, d := range deficiencies {
		fmt.Fprintf(&b, "- %s\n", deficiencyInstruction(d))
	}
	if bundle != nil && len(bundle.Sources) > 0 {
		b.WriteString("\nAdditional sources available for citations:\n")
		for i, src := range bundle.Sources {
			fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, src.Title, src.URL)
		}
	}
	fmt.Fprintf(&b, "\nArticle:\n%s\n\nReturn the full revised article in markdown.", content)
	return b.String()
}

func deficiencyInstruction(deficiency string) string {
	switch deficiency {
	case quality.DeficiencyFewCitations:
		return "add more bracketed numeric citations [N] backed by the reference list"
	case quality.DeficiencyShortContent:
		return "expand thin sections with concrete detail until the article exceeds 2000 words"
	case quality.DeficiencyLowWriting:
		return "shorten sentences and simplify wording to improve readability"
	case quality.DeficiencyLowAccuracy:
		return "ground claims in the cited sources and add a references section if missing"
	case quality.DeficiencyWeakSEO:
		return "fix heading hierarchy, keyword usage, and internal/external links"
	default:
		return deficiency
	}
}

// runeSafeExcerpt cuts s to at most max bytes on a rune boundary.
func runeSafeExcerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
