package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Generation Job Methods
// -----------------------------------------------------------------------------

// CreateJob records a queued generation job for a topic
func (db *DB) CreateJob(ctx context.Context, topic string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO generation_jobs (topic, status) VALUES ($1, $2) RETURNING id`,
		topic, JobStatusQueued,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// StartJob marks a job as running
func (db *DB) StartJob(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generation_jobs SET status = $1 WHERE id = $2`,
		JobStatusRunning, id)
	if err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	return nil
}

// CompleteJob marks a job as completed with its article and total spend
func (db *DB) CompleteJob(ctx context.Context, id uuid.UUID, articleID uuid.UUID, totalCost float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generation_jobs
		 SET status = $1, article_id = $2, total_cost = $3, completed_at = NOW()
		 WHERE id = $4`,
		JobStatusCompleted, articleID, totalCost, id)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// FailJob marks a job as failed, recording the stage and reason so operators
// can tell provider exhaustion, cost cap breaches and quality rejects apart.
func (db *DB) FailJob(ctx context.Context, id uuid.UUID, stage, reason string, totalCost float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generation_jobs
		 SET status = $1, failed_stage = $2, failure_reason = $3, total_cost = $4, completed_at = NOW()
		 WHERE id = $5`,
		JobStatusFailed, nullIfEmpty(stage), nullIfEmpty(reason), totalCost, id)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return nil
}
