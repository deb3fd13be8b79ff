package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Topic Cluster Methods
// -----------------------------------------------------------------------------

// UpsertCluster inserts or updates a cluster definition keyed by slug.
// Cumulative stats (article_count, total_research_spend) are preserved on update.
func (db *DB) UpsertCluster(ctx context.Context, cluster *TopicClusterRow) (*TopicClusterRow, error) {
	var row TopicClusterRow
	err := db.pool.QueryRow(ctx,
		`INSERT INTO topic_clusters (name, slug, priority, primary_keywords, secondary_keywords, research_tier, cache_ttl_days)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (slug) DO UPDATE SET
		     name = EXCLUDED.name,
		     priority = EXCLUDED.priority,
		     primary_keywords = EXCLUDED.primary_keywords,
		     secondary_keywords = EXCLUDED.secondary_keywords,
		     research_tier = EXCLUDED.research_tier,
		     cache_ttl_days = EXCLUDED.cache_ttl_days
		 RETURNING id, name, slug, priority, primary_keywords, secondary_keywords,
		           research_tier, cache_ttl_days, article_count, total_research_spend, created_at`,
		cluster.Name, cluster.Slug, cluster.Priority, cluster.PrimaryKeywords,
		cluster.SecondaryKeywords, cluster.ResearchTier, cluster.CacheTTLDays,
	).Scan(&row.ID, &row.Name, &row.Slug, &row.Priority, &row.PrimaryKeywords,
		&row.SecondaryKeywords, &row.ResearchTier, &row.CacheTTLDays,
		&row.ArticleCount, &row.TotalResearchSpend, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cluster: %w", err)
	}
	return &row, nil
}

// GetClusterBySlug retrieves a cluster by its slug, or nil when absent
func (db *DB) GetClusterBySlug(ctx context.Context, slug string) (*TopicClusterRow, error) {
	var row TopicClusterRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, slug, priority, primary_keywords, secondary_keywords,
		        research_tier, cache_ttl_days, article_count, total_research_spend, created_at
		 FROM topic_clusters WHERE slug = $1`,
		slug,
	).Scan(&row.ID, &row.Name, &row.Slug, &row.Priority, &row.PrimaryKeywords,
		&row.SecondaryKeywords, &row.ResearchTier, &row.CacheTTLDays,
		&row.ArticleCount, &row.TotalResearchSpend, &row.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}
	return &row, nil
}

// ListClusters returns all registered clusters ordered by creation
func (db *DB) ListClusters(ctx context.Context) ([]TopicClusterRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, slug, priority, primary_keywords, secondary_keywords,
		        research_tier, cache_ttl_days, article_count, total_research_spend, created_at
		 FROM topic_clusters ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []TopicClusterRow
	for rows.Next() {
		var row TopicClusterRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Slug, &row.Priority, &row.PrimaryKeywords,
			&row.SecondaryKeywords, &row.ResearchTier, &row.CacheTTLDays,
			&row.ArticleCount, &row.TotalResearchSpend, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cluster row: %w", err)
		}
		clusters = append(clusters, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clusters: %w", err)
	}
	return clusters, nil
}

// IncrementClusterStats adds one produced article and its research spend to a cluster
func (db *DB) IncrementClusterStats(ctx context.Context, slug string, researchSpend float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE topic_clusters
		 SET article_count = article_count + 1,
		     total_research_spend = total_research_spend + $1
		 WHERE slug = $2`,
		researchSpend, slug)
	if err != nil {
		return fmt.Errorf("failed to increment cluster stats: %w", err)
	}
	return nil
}
