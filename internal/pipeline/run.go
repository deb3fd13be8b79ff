// Package pipeline provides the high-level orchestration for one article
// generation job: dedup, research governance, drafting, scoring, bounded
// refinement, imagery, and the publish decision, with every paid stage
// accounted against the job's cost ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/article-engine/internal/cost"
	"github.com/jonathan/article-engine/internal/db"
	"github.com/jonathan/article-engine/internal/dedup"
	"github.com/jonathan/article-engine/internal/governance"
	"github.com/jonathan/article-engine/internal/observability"
	"github.com/jonathan/article-engine/internal/quality"
	"github.com/jonathan/article-engine/internal/types"
)

// Stage names reported in progress events and job failure records.
const (
	StageDedup      = "dedup"
	StageGovernance = "governance"
	StageResearch   = "research"
	StageDrafting   = "drafting"
	StageScoring    = "scoring"
	StageRefinement = "refinement"
	StageImagery    = "imagery"
	StagePublish    = "publish_decision"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomePublished cleared the publish threshold
	OutcomePublished Outcome = "published"
	// OutcomeReview queued for human review
	OutcomeReview Outcome = "review"
	// OutcomeRejected failed the quality gate; a normal outcome, not an error
	OutcomeRejected Outcome = "rejected"
	// OutcomeDuplicate was declined by the dedup guard
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeSkipped fell outside the managed cluster strategy
	OutcomeSkipped Outcome = "skipped"
)

// StageError marks a terminal job failure with the stage that caused it, so
// operators can tell "system broken" from "topic not good enough".
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ResearchRunner is the slice of the research layer the pipeline needs.
type ResearchRunner interface {
	Run(ctx context.Context, topic string, tier types.ResearchTier) (*types.ResearchBundle, error)
}

// ResearchGovernor is the slice of the governance layer the pipeline needs.
// *governance.Governor implements it.
type ResearchGovernor interface {
	Decide(ctx context.Context, topic string) (*governance.Decision, error)
	Complete(ctx context.Context, topic string, bundle *types.ResearchBundle, emb []float32) (bool, int)
}

// Store is the persistence surface for jobs and articles. *db.DB implements
// it; a nil Store runs the pipeline without persistence.
type Store interface {
	CreateJob(ctx context.Context, topic string) (uuid.UUID, error)
	StartJob(ctx context.Context, id uuid.UUID) error
	CompleteJob(ctx context.Context, id uuid.UUID, articleID uuid.UUID, totalCost float64) error
	FailJob(ctx context.Context, id uuid.UUID, stage, reason string, totalCost float64) error
	CreateArticle(ctx context.Context, title, slug, clusterSlug string) (uuid.UUID, error)
	CompleteArticle(ctx context.Context, id uuid.UUID, content, primaryKeyword, status string, overallScore, totalCost float64) error
	FailArticle(ctx context.Context, id uuid.UUID) error
	IncrementClusterStats(ctx context.Context, slug string, researchSpend float64) error
}

// RunOptions holds per-run configuration.
type RunOptions struct {
	Topic      string
	Verbose    bool
	OnProgress ProgressCallback
}

// Deps wires the pipeline's collaborators. Guard, Governor, Runner, Drafter
// and Gate are required; the rest are optional.
type Deps struct {
	Guard         *dedup.Guard
	Governor      ResearchGovernor
	Runner        ResearchRunner
	Drafter       Drafter
	Refiner       Refiner
	ImagePrompter ImagePrompter
	Gate          *quality.Gate
	Store         Store
	Printer       *observability.Printer

	// CostCapPerJob bounds total spend; zero disables enforcement
	CostCapPerJob float64
	// MaxRefinePasses bounds the refinement loop
	MaxRefinePasses int
	// RefineCostEstimate is checked against the ledger's remaining budget
	// before starting a refinement pass
	RefineCostEstimate float64
}

// Result is the full outcome of one pipeline run.
type Result struct {
	JobID        uuid.UUID
	ArticleID    uuid.UUID
	Topic        string
	Outcome      Outcome
	Decision     *governance.Decision
	Dedup        types.DedupResult
	Evaluation   *types.QualityEvaluation
	Content      string
	ImagePrompt  string
	RefinePasses int
	TotalCost    float64
}

// Run executes one article generation job end to end. Stages are strictly
// ordered; each depends on the previous stage's output. Quality rejection and
// duplicate topics are normal outcomes carried in the Result; a non-nil error
// is always a *StageError and means the job failed.
func Run(ctx context.Context, opts RunOptions, deps Deps) (*Result, error) {
	ledger := cost.NewLedger(deps.CostCapPerJob)
	result := &Result{Topic: opts.Topic}

	if deps.Store != nil {
		jobID, err := deps.Store.CreateJob(ctx, opts.Topic)
		if err != nil {
			log.Printf("[PIPELINE] failed to create job record: %v", err)
		} else {
			result.JobID = jobID
			if err := deps.Store.StartJob(ctx, jobID); err != nil {
				log.Printf("[PIPELINE] failed to mark job running: %v", err)
			}
		}
	}

	// Stage 1: dedup guard.
	emit(&opts, StageDedup, "validating topic against completed work")
	result.Dedup = deps.Guard.Validate(opts.Topic)
	if opts.Verbose && deps.Printer != nil {
		deps.Printer.PrintDedup(result.Dedup)
	}
	if !result.Dedup.Approved {
		result.Outcome = OutcomeDuplicate
		reason := result.Dedup.Reason
		if result.Dedup.SuggestedAlternative != "" {
			reason = fmt.Sprintf("%s (suggested: %s)", reason, result.Dedup.SuggestedAlternative)
		}
		failJob(ctx, deps.Store, result.JobID, StageDedup, reason, ledger.Total())
		return result, nil
	}

	// Stage 2: research governance.
	emit(&opts, StageGovernance, "routing research")
	decision, err := deps.Governor.Decide(ctx, opts.Topic)
	if err != nil {
		return result, fail(ctx, deps.Store, result, StageGovernance, err, ledger)
	}
	result.Decision = decision
	if opts.Verbose && deps.Printer != nil {
		deps.Printer.PrintDecision(opts.Topic, decision)
	}
	if decision.Kind == governance.DecisionSkip {
		result.Outcome = OutcomeSkipped
		failJob(ctx, deps.Store, result.JobID, StageGovernance, "topic outside managed clusters", ledger.Total())
		return result, nil
	}

	if deps.Store != nil && result.JobID != uuid.Nil {
		clusterSlug := ""
		if decision.Cluster != nil {
			clusterSlug = decision.Cluster.Cluster.Slug
		}
		articleID, err := deps.Store.CreateArticle(ctx, opts.Topic, dedup.Slugify(opts.Topic), clusterSlug)
		if err != nil {
			log.Printf("[PIPELINE] failed to create article record: %v", err)
		} else {
			result.ArticleID = articleID
		}
	}

	// Stage 3: research, reused or bought.
	bundle, err := obtainResearch(ctx, &opts, deps, decision)
	if err != nil {
		return result, fail(ctx, deps.Store, result, StageResearch, err, ledger)
	}
	if err := ledger.Add(cost.StageResearch, bundle.Cost); err != nil {
		return result, fail(ctx, deps.Store, result, StageResearch, err, ledger)
	}

	// Stage 4: drafting.
	emit(&opts, StageDrafting, "drafting article")
	draft, err := deps.Drafter.Draft(ctx, opts.Topic, bundle)
	if err != nil {
		return result, fail(ctx, deps.Store, result, StageDrafting, err, ledger)
	}
	result.Content = draft.Output
	if err := ledger.Add(cost.StageContent, draft.Cost); err != nil {
		return result, fail(ctx, deps.Store, result, StageDrafting, err, ledger)
	}

	// Stage 5: scoring plus bounded refinement.
	keyword := primaryKeyword(opts.Topic, bundle)
	emit(&opts, StageScoring, "scoring draft")
	eval := deps.Gate.Evaluate(result.Content, keyword)
	result.Evaluation = eval

	for eval.Decision != types.DecisionPublish &&
		len(eval.Deficiencies) > 0 &&
		deps.Refiner != nil &&
		result.RefinePasses < deps.MaxRefinePasses {

		if remaining := ledger.Remaining(); remaining >= 0 && remaining < deps.RefineCostEstimate {
			log.Printf("[PIPELINE] refinement unaffordable for %q: $%.4f remaining", opts.Topic, remaining)
			break
		}

		emit(&opts, StageRefinement, fmt.Sprintf("refining: %s", strings.Join(eval.Deficiencies, ", ")))
		refined, err := deps.Refiner.Refine(ctx, result.Content, bundle, eval.Deficiencies)
		if err != nil {
			// A failed edit leaves the current draft standing.
			log.Printf("[PIPELINE] refinement failed for %q: %v", opts.Topic, err)
			break
		}
		if err := ledger.Add(cost.StageEditing, refined.Cost); err != nil {
			return result, fail(ctx, deps.Store, result, StageRefinement, err, ledger)
		}
		result.Content = refined.Output
		result.RefinePasses++
		eval = deps.Gate.Evaluate(result.Content, keyword)
		result.Evaluation = eval
	}

	if opts.Verbose && deps.Printer != nil {
		deps.Printer.PrintEvaluation(eval)
	}

	// Stage 6: imagery, skipped for rejected drafts.
	if eval.Decision != types.DecisionReject && deps.ImagePrompter != nil {
		emit(&opts, StageImagery, "generating image prompt")
		image, err := deps.ImagePrompter.ImagePrompt(ctx, opts.Topic, result.Content)
		if err != nil {
			log.Printf("[PIPELINE] image prompt failed for %q: %v", opts.Topic, err)
		} else {
			if err := ledger.Add(cost.StageImagery, image.Cost); err != nil {
				return result, fail(ctx, deps.Store, result, StageImagery, err, ledger)
			}
			result.ImagePrompt = image.Output
		}
	}

	// Stage 7: publish decision and persistence.
	emit(&opts, StagePublish, fmt.Sprintf("decision: %s", eval.Decision))
	result.Outcome = outcomeFor(eval.Decision)
	result.TotalCost = ledger.Total()
	if opts.Verbose && deps.Printer != nil {
		deps.Printer.PrintLedger(ledger)
	}

	persistCompletion(ctx, deps, result, decision, bundle, keyword)
	deps.Guard.Add(opts.Topic)

	return result, nil
}

// obtainResearch serves the decision: cached bundles are free, routed tiers go
// through the runner and the write-back gate.
func obtainResearch(ctx context.Context, opts *RunOptions, deps Deps, decision *governance.Decision) (*types.ResearchBundle, error) {
	if decision.Bundle != nil {
		emit(opts, StageResearch, fmt.Sprintf("reusing cached research (%s)", decision.Kind))
		reused := *decision.Bundle
		reused.Cost = 0
		return &reused, nil
	}

	emit(opts, StageResearch, fmt.Sprintf("running %s tier research", decision.Tier))
	bundle, err := deps.Runner.Run(ctx, opts.Topic, decision.Tier)
	if err != nil {
		return nil, err
	}

	cached, score := deps.Governor.Complete(ctx, opts.Topic, bundle, decision.Embedding)
	emit(opts, StageResearch, fmt.Sprintf("research sufficiency %d/100, cached=%v", score, cached))
	return bundle, nil
}

func primaryKeyword(topic string, bundle *types.ResearchBundle) string {
	if bundle.SEOData != nil && bundle.SEOData.PrimaryKeyword != "" {
		return bundle.SEOData.PrimaryKeyword
	}
	return strings.ToLower(topic)
}

func outcomeFor(decision types.Decision) Outcome {
	switch decision {
	case types.DecisionPublish:
		return OutcomePublished
	case types.DecisionReview:
		return OutcomeReview
	default:
		return OutcomeRejected
	}
}

func articleStatus(outcome Outcome) string {
	switch outcome {
	case OutcomePublished:
		return db.ArticleStatusPublished
	case OutcomeReview:
		return db.ArticleStatusReview
	default:
		return db.ArticleStatusRejected
	}
}

func persistCompletion(ctx context.Context, deps Deps, result *Result, decision *governance.Decision, bundle *types.ResearchBundle, keyword string) {
	if deps.Store == nil {
		return
	}

	if result.ArticleID != uuid.Nil {
		err := deps.Store.CompleteArticle(ctx, result.ArticleID, result.Content, keyword,
			articleStatus(result.Outcome), result.Evaluation.OverallScore, result.TotalCost)
		if err != nil {
			log.Printf("[PIPELINE] failed to persist article: %v", err)
		}
	}

	if result.JobID != uuid.Nil {
		if err := deps.Store.CompleteJob(ctx, result.JobID, result.ArticleID, result.TotalCost); err != nil {
			log.Printf("[PIPELINE] failed to complete job record: %v", err)
		}
	}

	// Every produced article counts against its cluster; reuse adds zero spend.
	if decision.Cluster != nil && decision.Cluster.Cluster != nil {
		if err := deps.Store.IncrementClusterStats(ctx, decision.Cluster.Cluster.Slug, bundle.Cost); err != nil {
			log.Printf("[PIPELINE] failed to update cluster stats: %v", err)
		}
	}
}

// fail records a terminal stage failure on the job and article records and
// wraps the cause in a StageError.
func fail(ctx context.Context, store Store, result *Result, stage string, err error, ledger *cost.Ledger) error {
	failJob(ctx, store, result.JobID, stage, err.Error(), ledger.Total())
	if store != nil && result.ArticleID != uuid.Nil {
		if ferr := store.FailArticle(ctx, result.ArticleID); ferr != nil {
			log.Printf("[PIPELINE] failed to mark article failed: %v", ferr)
		}
	}
	result.TotalCost = ledger.Total()

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr
	}
	return &StageError{Stage: stage, Err: err}
}

func failJob(ctx context.Context, store Store, jobID uuid.UUID, stage, reason string, total float64) {
	if store == nil || jobID == uuid.Nil {
		return
	}
	if err := store.FailJob(ctx, jobID, stage, reason, total); err != nil {
		log.Printf("[PIPELINE] failed to record job failure: %v", err)
	}
}

func emit(opts *RunOptions, stage, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Stage: stage, Message: message})
	}
	if opts.Verbose {
		log.Printf("[PIPELINE] %s: %s", stage, message)
	}
}
