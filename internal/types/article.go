package types

// ArticleStatus represents the lifecycle state of a generated article
type ArticleStatus string

// Article lifecycle states
const (
	StatusPending     ArticleStatus = "pending"
	StatusResearching ArticleStatus = "researching"
	StatusDrafting    ArticleStatus = "drafting"
	StatusScoring     ArticleStatus = "scoring"
	StatusPublished   ArticleStatus = "published"
	StatusReview      ArticleStatus = "review"
	StatusRejected    ArticleStatus = "rejected"
	StatusFailed      ArticleStatus = "failed"
)

// Article represents one generated long-form article
type Article struct {
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Content        string        `json:"content"`
	PrimaryKeyword string        `json:"primary_keyword,omitempty"`
	ClusterSlug    string        `json:"cluster_slug,omitempty"`
	Status         ArticleStatus `json:"status"`
	TotalCost      float64       `json:"total_cost"`
}
