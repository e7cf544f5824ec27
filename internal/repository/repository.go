package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

// BuildOptions controls how the log is read
type BuildOptions struct {
	// PageSize > 0 reads the log in pages of that many commits, driven by
	// the total revision count. Zero reads it in one call.
	PageSize int
	Logger   *logrus.Logger
}

// Repository owns the commits of one working tree in log order (newest first).
//
// Commits carry no pointer back to the Repository; operations that need the
// working tree take it from Root explicitly.
type Repository struct {
	root   string
	client *git.Client

	// held exclusively while commits are lent out for a stats fetch
	mu      sync.RWMutex
	commits []*models.Commit

	authorsOnce sync.Once
	authors     []*Author
}

// TotalCommitCount asks git for the number of revisions under path
func TotalCommitCount(ctx context.Context, client *git.Client, path string) (int, error) {
	count, err := client.RevCount(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits: %w", err)
	}
	return count, nil
}

// Build reads the log of the working tree at path and parses every line.
// Stats are not fetched here.
func Build(ctx context.Context, client *git.Client, path string, opts BuildOptions) (*Repository, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithFields(logrus.Fields{
		"repository": path,
		"action":     "build",
	})

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("repository path %q is not accessible", path), err)
	}
	if !info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("repository path %q is not a directory", path), nil)
	}

	lines, err := readLog(ctx, client, path, opts.PageSize)
	if err != nil {
		return nil, err
	}

	commits := make([]*models.Commit, 0, len(lines))
	for i, line := range lines {
		commit, err := git.ParseLogLine(line)
		if err != nil {
			return nil, fmt.Errorf("log line %d: %w", i+1, err)
		}
		commits = append(commits, commit)
	}

	log.WithField("commits", len(commits)).Info("Repository built")

	return &Repository{
		root:    path,
		client:  client,
		commits: commits,
	}, nil
}

func readLog(ctx context.Context, client *git.Client, path string, pageSize int) ([]string, error) {
	if pageSize <= 0 {
		lines, err := client.Log(ctx, path, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to read log: %w", err)
		}
		return lines, nil
	}

	total, err := TotalCommitCount(ctx, client, path)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, total)
	for skip := 0; skip < total; skip += pageSize {
		page, err := client.Log(ctx, path, skip, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read log page at %d: %w", skip, err)
		}
		lines = append(lines, page...)
		if len(page) < pageSize {
			break
		}
	}
	return lines, nil
}

// Root returns the working tree path
func (r *Repository) Root() string {
	return r.root
}

// Commits returns the commits in log order. It blocks while commits are lent out.
func (r *Repository) Commits() []*models.Commit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*models.Commit(nil), r.commits...)
}

// Len returns the number of commits
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commits)
}

// Lend hands out the commits that still lack stats. Readers of the
// Repository block until release is called; release is idempotent.
func (r *Repository) Lend() (pending []*models.Commit, release func()) {
	r.mu.Lock()
	for _, c := range r.commits {
		if !c.HasStats() {
			pending = append(pending, c)
		}
	}
	var once sync.Once
	return pending, func() { once.Do(r.mu.Unlock) }
}

// CommitsByOwner returns per-author commit counts from git shortlog.
// It does not look at the parsed commits and may disagree with Authors.
func (r *Repository) CommitsByOwner(ctx context.Context) (map[string]int, error) {
	counts, err := r.client.Shortlog(ctx, r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise commits by owner: %w", err)
	}
	return counts, nil
}

// MergesByOwner returns the hashes of merged pull requests, that is the
// merge commits on the first-parent history, grouped by the author who
// merged them.
func (r *Repository) MergesByOwner(ctx context.Context) (map[string][]string, error) {
	merges, err := r.client.Merges(ctx, r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list merged pull requests: %w", err)
	}
	return merges, nil
}

// Authors returns one view per distinct owner, in order of first
// appearance in the log. The views are derived on first use.
func (r *Repository) Authors() []*Author {
	r.authorsOnce.Do(func() {
		r.mu.RLock()
		defer r.mu.RUnlock()
		r.authors = deriveAuthors(r, r.commits)
	})
	return r.authors
}

// commitAt returns the commit at index i
func (r *Repository) commitAt(i int) (*models.Commit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.commits) {
		return nil, apperrors.NewInternalError(fmt.Sprintf("commit index %d out of range", i), nil)
	}
	return r.commits[i], nil
}
