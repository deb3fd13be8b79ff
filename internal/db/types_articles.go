package db

import (
	"time"

	"github.com/google/uuid"
)

// Article status constants
const (
	ArticleStatusPending   = "pending"
	ArticleStatusPublished = "published"
	ArticleStatusReview    = "review"
	ArticleStatusRejected  = "rejected"
	ArticleStatusFailed    = "failed"
)

// Generation job status constants
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ArticleRow represents a generated article record
type ArticleRow struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        *string    `json:"content,omitempty"`
	PrimaryKeyword *string    `json:"primary_keyword,omitempty"`
	ClusterSlug    *string    `json:"cluster_slug,omitempty"`
	Status         string     `json:"status"`
	OverallScore   *float64   `json:"overall_score,omitempty"`
	TotalCost      float64    `json:"total_cost"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// GenerationJobRow represents one article generation job record.
// FailedStage and FailureReason make operator triage possible: provider
// exhaustion, cost cap and quality rejection are distinguishable outcomes.
type GenerationJobRow struct {
	ID            uuid.UUID  `json:"id"`
	Topic         string     `json:"topic"`
	ArticleID     *uuid.UUID `json:"article_id,omitempty"`
	Status        string     `json:"status"`
	FailedStage   *string    `json:"failed_stage,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	TotalCost     float64    `json:"total_cost"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
