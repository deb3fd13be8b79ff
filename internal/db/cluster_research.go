package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Cluster Research Cache Methods
// -----------------------------------------------------------------------------

// GetCurrentClusterResearch returns the most recent non-expired, non-stale
// research row for a cluster, or nil on miss. Timestamps are normalized to
// UTC at the scan boundary so age arithmetic never mixes naive and aware
// values.
func (db *DB) GetCurrentClusterResearch(ctx context.Context, clusterSlug string) (*ClusterResearchRow, error) {
	var row ClusterResearchRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, cluster_slug, payload, cost, reuse_count, stale, created_at, expires_at
		 FROM cluster_research
		 WHERE cluster_slug = $1 AND stale = FALSE AND expires_at > NOW()
		 ORDER BY created_at DESC LIMIT 1`,
		clusterSlug,
	).Scan(&row.ID, &row.ClusterSlug, &row.Payload, &row.Cost, &row.ReuseCount,
		&row.Stale, &row.CreatedAt, &row.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cluster research: %w", err)
	}

	row.CreatedAt = row.CreatedAt.UTC()
	row.ExpiresAt = row.ExpiresAt.UTC()
	return &row, nil
}

// UpsertClusterResearch replaces the current research row for a cluster.
// One cluster has at most one current row; a save resets creation time,
// expiry and the stale flag. Concurrent saves are last-write-wins.
func (db *DB) UpsertClusterResearch(ctx context.Context, clusterSlug string, payload any, cost float64, ttl time.Duration) (*ClusterResearchRow, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal research payload: %w", err)
	}

	now := time.Now().UTC()
	var row ClusterResearchRow
	err = db.pool.QueryRow(ctx,
		`INSERT INTO cluster_research (cluster_slug, payload, cost, reuse_count, stale, created_at, expires_at)
		 VALUES ($1, $2, $3, 0, FALSE, $4, $5)
		 ON CONFLICT (cluster_slug) DO UPDATE SET
		     payload = EXCLUDED.payload,
		     cost = EXCLUDED.cost,
		     reuse_count = 0,
		     stale = FALSE,
		     created_at = EXCLUDED.created_at,
		     expires_at = EXCLUDED.expires_at
		 RETURNING id, cluster_slug, payload, cost, reuse_count, stale, created_at, expires_at`,
		clusterSlug, data, cost, now, now.Add(ttl),
	).Scan(&row.ID, &row.ClusterSlug, &row.Payload, &row.Cost, &row.ReuseCount,
		&row.Stale, &row.CreatedAt, &row.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cluster research: %w", err)
	}

	row.CreatedAt = row.CreatedAt.UTC()
	row.ExpiresAt = row.ExpiresAt.UTC()
	return &row, nil
}

// IncrementClusterReuse bumps the reuse counter for a research row and
// returns the new count.
func (db *DB) IncrementClusterReuse(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`UPDATE cluster_research SET reuse_count = reuse_count + 1 WHERE id = $1
		 RETURNING reuse_count`,
		id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment reuse count: %w", err)
	}
	return count, nil
}

// MarkClusterResearchStale invalidates a cluster's cached research before its
// TTL naturally expires. The row remains for audit but is never returned as a
// hit.
func (db *DB) MarkClusterResearchStale(ctx context.Context, clusterSlug string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE cluster_research SET stale = TRUE WHERE cluster_slug = $1`,
		clusterSlug)
	if err != nil {
		return fmt.Errorf("failed to mark cluster research stale: %w", err)
	}
	return nil
}
