package types

// DedupResult is the outcome of validating a candidate topic against prior work
type DedupResult struct {
	Approved             bool   `json:"approved"`
	IsDuplicate          bool   `json:"is_duplicate"`
	PriorityScore        int    `json:"priority_score"`
	Category             string `json:"category"`
	SuggestedAlternative string `json:"suggested_alternative,omitempty"`
	Reason               string `json:"reason"`
}
