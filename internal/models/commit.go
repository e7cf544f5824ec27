package models

import (
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stats holds the line counts of a single commit's diff
type Stats struct {
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

// Commit is one revision as reported by git log.
// Stats are attached at most once and are read-only afterwards.
type Commit struct {
	Hash         string
	Owner        string
	RelativeTime string
	Message      string

	stats atomic.Pointer[Stats]
}

// NewCommit creates a commit without stats
func NewCommit(hash, owner, relativeTime, message string) *Commit {
	return &Commit{
		Hash:         hash,
		Owner:        owner,
		RelativeTime: relativeTime,
		Message:      message,
	}
}

// AttachStats stores s if no stats were attached yet. It reports whether
// this call performed the write.
func (c *Commit) AttachStats(s Stats) bool {
	return c.stats.CompareAndSwap(nil, &s)
}

// Stats returns the attached stats, if any
func (c *Commit) Stats() (Stats, bool) {
	s := c.stats.Load()
	if s == nil {
		return Stats{}, false
	}
	return *s, true
}

// HasStats reports whether stats have been attached
func (c *Commit) HasStats() bool {
	return c.stats.Load() != nil
}

type commitJSON struct {
	Hash         string `json:"hash"`
	Owner        string `json:"owner"`
	RelativeTime string `json:"relative_time"`
	Message      string `json:"message"`
	Stats        *Stats `json:"stats,omitempty"`
}

func (c *Commit) MarshalJSON() ([]byte, error) {
	return json.Marshal(commitJSON{
		Hash:         c.Hash,
		Owner:        c.Owner,
		RelativeTime: c.RelativeTime,
		Message:      c.Message,
		Stats:        c.stats.Load(),
	})
}

// AuthorStats holds the aggregate for one author
type AuthorStats struct {
	Name         string `json:"name"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
	NetLines     int    `json:"net_lines"`
	TotalCommits int    `json:"total_commits"`
	MergedPRs    int    `json:"merged_prs"`
}

// Add folds one commit into the aggregate. Commits without stats count
// towards TotalCommits only.
func (a *AuthorStats) Add(c *Commit) {
	a.TotalCommits++
	if s, ok := c.Stats(); ok {
		a.Insertions += s.Insertions
		a.Deletions += s.Deletions
	}
	a.NetLines = a.Insertions - a.Deletions
}
