package repository

import (
	"fmt"
	"weak"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

// Author is a view over the commits of one owner. It refers to its
// Repository weakly and to commits by index, so it never keeps the
// Repository alive.
type Author struct {
	Name    string
	repo    weak.Pointer[Repository]
	indices []int
}

func deriveAuthors(r *Repository, commits []*models.Commit) []*Author {
	handle := weak.Make(r)
	byName := make(map[string]*Author)
	var authors []*Author

	for i, c := range commits {
		a, ok := byName[c.Owner]
		if !ok {
			a = &Author{Name: c.Owner, repo: handle}
			byName[c.Owner] = a
			authors = append(authors, a)
		}
		a.indices = append(a.indices, i)
	}
	return authors
}

// CommitCount returns the number of commits attributed to the author
func (a *Author) CommitCount() int {
	return len(a.indices)
}

// Commits resolves the author's commits through the Repository
func (a *Author) Commits() ([]*models.Commit, error) {
	repo := a.repo.Value()
	if repo == nil {
		return nil, apperrors.NewDanglingReferenceError(fmt.Sprintf("repository of author %q has been released", a.Name))
	}

	commits := make([]*models.Commit, 0, len(a.indices))
	for _, i := range a.indices {
		c, err := repo.commitAt(i)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// Stats sums the author's commits. Commits without stats add to
// TotalCommits only.
func (a *Author) Stats() (*models.AuthorStats, error) {
	return a.StatsWhere(nil)
}

// StatsWhere is Stats over the commits for which keep returns true.
// A nil keep keeps every commit.
func (a *Author) StatsWhere(keep func(*models.Commit) bool) (*models.AuthorStats, error) {
	commits, err := a.Commits()
	if err != nil {
		return nil, err
	}

	stats := &models.AuthorStats{Name: a.Name}
	for _, c := range commits {
		if keep != nil && !keep(c) {
			continue
		}
		stats.Add(c)
	}
	return stats, nil
}
