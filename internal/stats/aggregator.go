package stats

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/repository"
)

// Filter decides whether a commit takes part in the aggregate
type Filter func(*models.Commit) bool

// AggregateOptions configures Aggregate
type AggregateOptions struct {
	// Filter excludes every commit for which it returns false. Nil keeps all.
	Filter Filter
}

// ExcludeAuthors returns a Filter that drops commits whose owner matches one
// of names exactly.
func ExcludeAuthors(names ...string) Filter {
	if len(names) == 0 {
		return nil
	}
	excluded := make(map[string]struct{}, len(names))
	for _, n := range names {
		excluded[n] = struct{}{}
	}
	return func(c *models.Commit) bool {
		_, skip := excluded[c.Owner]
		return !skip
	}
}

// Aggregate sums the commits of every author of repo. Authors left with
// no commits after the filter are omitted. The map has no defined order;
// see Leaderboard.
func Aggregate(repo *repository.Repository, opts AggregateOptions) (map[string]*models.AuthorStats, error) {
	result := make(map[string]*models.AuthorStats)
	for _, author := range repo.Authors() {
		stats, err := author.StatsWhere(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate author %q: %w", author.Name, err)
		}
		if stats.TotalCommits == 0 {
			continue
		}
		result[author.Name] = stats
	}
	return result, nil
}

// SortKey selects the leaderboard column
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByCommits    SortKey = "commits"
	SortByInsertions SortKey = "insertions"
	SortByDeletions  SortKey = "deletions"
	SortByNet        SortKey = "net"
	SortByMergedPRs  SortKey = "prs"
)

// SortKeys lists every accepted SortKey
var SortKeys = []string{
	string(SortByName),
	string(SortByCommits),
	string(SortByInsertions),
	string(SortByDeletions),
	string(SortByNet),
	string(SortByMergedPRs),
}

// ParseSortKey validates a user supplied sort key
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case SortByName, SortByCommits, SortByInsertions, SortByDeletions, SortByNet, SortByMergedPRs:
		return key, nil
	case "":
		return SortByCommits, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown sort key %q, expected one of %s", s, strings.Join(SortKeys, ", ")), nil)
}

// Leaderboard orders the aggregate by key. Numeric keys sort descending
// unless ascending is set; ties are broken by name ascending.
func Leaderboard(aggregate map[string]*models.AuthorStats, key SortKey, ascending bool) []*models.AuthorStats {
	board := make([]*models.AuthorStats, 0, len(aggregate))
	for _, a := range aggregate {
		board = append(board, a)
	}

	value := func(a *models.AuthorStats) int {
		switch key {
		case SortByInsertions:
			return a.Insertions
		case SortByDeletions:
			return a.Deletions
		case SortByNet:
			return a.NetLines
		case SortByMergedPRs:
			return a.MergedPRs
		default:
			return a.TotalCommits
		}
	}

	sort.Slice(board, func(i, j int) bool {
		a, b := board[i], board[j]
		if key == SortByName {
			if ascending {
				return a.Name < b.Name
			}
			return a.Name > b.Name
		}
		va, vb := value(a), value(b)
		if va != vb {
			if ascending {
				return va < vb
			}
			return va > vb
		}
		return a.Name < b.Name
	})
	return board
}
