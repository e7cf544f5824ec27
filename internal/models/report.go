package models

import "time"

// Report is the outcome of one analysis run over a working tree
type Report struct {
	ID             int64          `json:"id,omitempty"`
	Path           string         `json:"path"`
	Revision       string         `json:"revision"`
	TotalCommits   int            `json:"total_commits"`
	CommitsByOwner map[string]int `json:"commits_by_owner,omitempty"`
	Authors        []*AuthorStats `json:"authors"`
	FetchedStats   int            `json:"fetched_stats"`
	FailedStats    int            `json:"failed_stats"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
