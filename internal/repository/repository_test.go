package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/git/mocks"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

const testLog = "abc123|Alice|2 days ago|fix bug\n" +
	"def456|Bob|1 day ago|add feature\n" +
	"0a0a0a|Alice|3 days ago|refactor|cleanup\n"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(runner git.Runner) *git.Client {
	return git.NewClient(runner, git.WithLogger(testLogger()))
}

func buildTestRepository(t *testing.T, runner git.Runner) *Repository {
	t.Helper()
	repo, err := Build(context.Background(), newTestClient(runner), t.TempDir(), BuildOptions{Logger: testLogger()})
	require.NoError(t, err)
	return repo
}

func TestBuild(t *testing.T) {
	runner := mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")

	repo := buildTestRepository(t, runner)

	commits := repo.Commits()
	require.Len(t, commits, 3)
	assert.Equal(t, []string{"abc123", "def456", "0a0a0a"}, []string{commits[0].Hash, commits[1].Hash, commits[2].Hash})
	assert.Equal(t, "refactor|cleanup", commits[2].Message)
	for _, c := range commits {
		assert.False(t, c.HasStats(), "build must not fetch stats")
	}
	assert.Equal(t, []string{"log " + git.LogFormat + " HEAD"}, runner.Calls())
}

func TestBuildPaged(t *testing.T) {
	runner := mocks.NewScriptedRunner().
		OK("3\n", "rev-list", "--count", "HEAD").
		OK("abc123|Alice|2 days ago|fix bug\ndef456|Bob|1 day ago|add feature", "log", git.LogFormat, "--max-count=2", "HEAD").
		OK("0a0a0a|Alice|3 days ago|refactor", "log", git.LogFormat, "--skip=2", "--max-count=2", "HEAD")

	repo, err := Build(context.Background(), newTestClient(runner), t.TempDir(), BuildOptions{PageSize: 2, Logger: testLogger()})
	require.NoError(t, err)

	commits := repo.Commits()
	require.Len(t, commits, 3)
	assert.Equal(t, "0a0a0a", commits[2].Hash)
}

func TestBuildFailures(t *testing.T) {
	t.Run("log command fails", func(t *testing.T) {
		runner := mocks.NewScriptedRunner().Fail(128, "fatal: not a git repository", "log", git.LogFormat, "HEAD")
		_, err := Build(context.Background(), newTestClient(runner), t.TempDir(), BuildOptions{Logger: testLogger()})
		require.Error(t, err)
		assert.True(t, apperrors.IsCommandFailed(err))
	})

	t.Run("malformed line", func(t *testing.T) {
		runner := mocks.NewScriptedRunner().OK("abc123|Alice|2 days ago|ok\nbroken line\n", "log", git.LogFormat, "HEAD")
		_, err := Build(context.Background(), newTestClient(runner), t.TempDir(), BuildOptions{Logger: testLogger()})
		require.Error(t, err)
		assert.True(t, apperrors.IsMalformedLogLine(err))
		assert.Contains(t, err.Error(), "log line 2")
	})

	t.Run("missing path", func(t *testing.T) {
		runner := mocks.NewScriptedRunner()
		_, err := Build(context.Background(), newTestClient(runner), filepath.Join(t.TempDir(), "missing"), BuildOptions{})
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidInput(err))
		assert.Empty(t, runner.Calls())
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
		_, err := Build(context.Background(), newTestClient(mocks.NewScriptedRunner()), file, BuildOptions{})
		assert.True(t, apperrors.IsInvalidInput(err))
	})
}

func TestTotalCommitCount(t *testing.T) {
	runner := mocks.NewScriptedRunner().OK("128 \n", "rev-list", "--count", "HEAD")
	count, err := TotalCommitCount(context.Background(), newTestClient(runner), "/repo")
	require.NoError(t, err)
	assert.Equal(t, 128, count)

	runner = mocks.NewScriptedRunner().Fail(128, "fatal: bad revision", "rev-list", "--count", "HEAD")
	_, err = TotalCommitCount(context.Background(), newTestClient(runner), "/repo")
	assert.True(t, apperrors.IsCommandFailed(err))
}

func TestCommitsByOwner(t *testing.T) {
	runner := mocks.NewScriptedRunner().
		OK(testLog, "log", git.LogFormat, "HEAD").
		OK("     2\tAlice\n     1\tBob\n", "shortlog", "-sn", "HEAD")

	repo := buildTestRepository(t, runner)
	counts, err := repo.CommitsByOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Alice": 2, "Bob": 1}, counts)
}

func TestMergesByOwner(t *testing.T) {
	runner := mocks.NewScriptedRunner().
		OK(testLog, "log", git.LogFormat, "HEAD").
		OK("Alice|m1\nAlice|m2\n", "log", "--merges", "--first-parent", git.MergeFormat, "HEAD")

	repo := buildTestRepository(t, runner)
	merges, err := repo.MergesByOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Alice": {"m1", "m2"}}, merges)

	runner = mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")
	_, err = buildTestRepository(t, runner).MergesByOwner(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCommandFailed(err))
}

func TestAuthorsPartitionCommits(t *testing.T) {
	runner := mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")
	repo := buildTestRepository(t, runner)

	authors := repo.Authors()
	require.Len(t, authors, 2)
	assert.Equal(t, "Alice", authors[0].Name)
	assert.Equal(t, "Bob", authors[1].Name)
	assert.Same(t, authors[0], repo.Authors()[0], "authors are derived once")

	seen := make(map[*models.Commit]int)
	for _, a := range authors {
		commits, err := a.Commits()
		require.NoError(t, err)
		assert.Equal(t, a.CommitCount(), len(commits))
		for _, c := range commits {
			assert.Equal(t, a.Name, c.Owner)
			seen[c]++
		}
	}

	require.Len(t, seen, repo.Len())
	for _, c := range repo.Commits() {
		assert.Equal(t, 1, seen[c], c.Hash)
	}
}

func TestAuthorStats(t *testing.T) {
	runner := mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")
	repo := buildTestRepository(t, runner)

	commits := repo.Commits()
	commits[0].AttachStats(models.Stats{Insertions: 3, Deletions: 10})

	stats, err := repo.Authors()[0].Stats()
	require.NoError(t, err)
	assert.Equal(t, &models.AuthorStats{Name: "Alice", Insertions: 3, Deletions: 10, NetLines: -7, TotalCommits: 2}, stats)

	stats, err = repo.Authors()[0].StatsWhere(func(c *models.Commit) bool {
		return c.Hash != commits[0].Hash
	})
	require.NoError(t, err)
	assert.Equal(t, &models.AuthorStats{Name: "Alice", TotalCommits: 1}, stats)
}

func releasedAuthors(t *testing.T) []*Author {
	runner := mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")
	return buildTestRepository(t, runner).Authors()
}

func TestAuthorOutlivingRepository(t *testing.T) {
	authors := releasedAuthors(t)
	runtime.GC()

	_, err := authors[0].Commits()
	require.Error(t, err)
	assert.True(t, apperrors.IsDanglingReference(err))

	_, err = authors[1].Stats()
	assert.True(t, apperrors.IsDanglingReference(err))

	_, err = authors[1].StatsWhere(func(*models.Commit) bool { return true })
	assert.True(t, apperrors.IsDanglingReference(err))
}

func TestLendBlocksReaders(t *testing.T) {
	runner := mocks.NewScriptedRunner().OK(testLog, "log", git.LogFormat, "HEAD")
	repo := buildTestRepository(t, runner)
	repo.Commits()[1].AttachStats(models.Stats{Insertions: 1})

	pending, release := repo.Lend()
	require.Len(t, pending, 2, "commits with stats are not lent")

	done := make(chan struct{})
	go func() {
		repo.Commits()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("reader finished while commits were lent out")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after release")
	}
}
