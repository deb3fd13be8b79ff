package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Article Methods
// -----------------------------------------------------------------------------

// CreateArticle creates a pending article record and returns its ID
func (db *DB) CreateArticle(ctx context.Context, title, slug, clusterSlug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO articles (title, slug, cluster_slug, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		title, slug, nullIfEmpty(clusterSlug), ArticleStatusPending,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create article: %w", err)
	}
	return id, nil
}

// CompleteArticle stores the final content, score and cost for an article
func (db *DB) CompleteArticle(ctx context.Context, id uuid.UUID, content, primaryKeyword, status string, overallScore, totalCost float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE articles
		 SET content = $1, primary_keyword = $2, status = $3, overall_score = $4,
		     total_cost = $5, completed_at = NOW()
		 WHERE id = $6`,
		content, nullIfEmpty(primaryKeyword), status, overallScore, totalCost, id)
	if err != nil {
		return fmt.Errorf("failed to complete article: %w", err)
	}
	return nil
}

// FailArticle marks an article as failed
func (db *DB) FailArticle(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE articles SET status = $1, completed_at = NOW() WHERE id = $2`,
		ArticleStatusFailed, id)
	if err != nil {
		return fmt.Errorf("failed to mark article failed: %w", err)
	}
	return nil
}

// ListCompletedTitles returns titles of all non-failed articles. The dedup
// guard rebuilds its completed-topic registry from this at startup.
func (db *DB) ListCompletedTitles(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT title FROM articles WHERE status != $1`,
		ArticleStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan article title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article titles: %w", err)
	}
	return titles, nil
}

// GetArticleByID retrieves one article, or nil when absent
func (db *DB) GetArticleByID(ctx context.Context, id uuid.UUID) (*ArticleRow, error) {
	var row ArticleRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, slug, content, primary_keyword, cluster_slug, status,
		        overall_score, total_cost, created_at, completed_at
		 FROM articles WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Title, &row.Slug, &row.Content, &row.PrimaryKeyword,
		&row.ClusterSlug, &row.Status, &row.OverallScore, &row.TotalCost,
		&row.CreatedAt, &row.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &row, nil
}
