package api

import (
	"github.com/Kamar-Folarin/repostats/internal/models"
)

// ErrorResponse represents an API error
// @Description Error response from the API
// @swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// @example repository path "/src/x" is not accessible
	Error string `json:"error" example:"failed to build repository"`
}

// AuthorListResponse represents the author leaderboard with metadata
// @Description Per-author aggregate, sorted as requested
// @swagger:model AuthorListResponse
type AuthorListResponse struct {
	// Data contains the sorted authors
	// @example [{"name":"Alice","insertions":3,"deletions":1,"net_lines":2,"total_commits":1,"merged_prs":0}]
	Data []*models.AuthorStats `json:"data"`
	// Metadata describes how the list was produced
	Metadata struct {
		// Path of the working tree
		// @example /src/project
		Repository string `json:"repository" example:"/src/project"`
		// Sort key
		// @example commits
		Sort string `json:"sort" example:"commits" enums:"name,commits,insertions,deletions,net,prs"`
		// Ascending order
		Ascending bool `json:"ascending"`
		// Number of authors requested, 0 for all
		// @example 10
		Limit int `json:"limit" example:"10"`
	} `json:"metadata"`
}

// CommitListResponse represents a list of commits
// @Description Commits in log order, newest first
// @swagger:model CommitListResponse
type CommitListResponse struct {
	// Data contains the commits
	// @example [{"hash":"abc123","owner":"Alice","relative_time":"2 days ago","message":"fix bug","stats":{"insertions":3,"deletions":1}}]
	Data []*models.Commit `json:"data"`
	// Total number of commits returned
	// @example 1
	Total int `json:"total" example:"1"`
}
