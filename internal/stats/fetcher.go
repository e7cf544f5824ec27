package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/batch"
	"github.com/Kamar-Folarin/repostats/internal/config"
	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/repository"
)

// FetchResult summarises one stats fetch
type FetchResult struct {
	Attempted int
	Succeeded int
	Failures  []apperrors.CommitFailure
	// TimedOut is set when the configured timeout expired before every
	// commit finished. Unfinished commits keep no stats.
	TimedOut bool
	Duration time.Duration
}

// Fetcher attaches diff stats to the commits of a Repository, running at
// most Concurrency `git show --stat` processes at once.
type Fetcher struct {
	client    *git.Client
	config    *config.FetchConfig
	processor *batch.Processor
	logger    *logrus.Logger
}

// NewFetcher creates a new stats fetcher
func NewFetcher(client *git.Client, cfg *config.FetchConfig, logger *logrus.Logger) *Fetcher {
	if cfg == nil {
		cfg = config.DefaultFetchConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Fetcher{
		client:    client,
		config:    cfg,
		processor: batch.NewProcessor(cfg),
		logger:    logger,
	}
}

// Progress exposes the latest progress snapshot of the running fetch
func (f *Fetcher) Progress() <-chan *models.BatchProgress {
	return f.processor.GetProgress()
}

// Fetch populates stats for every commit of repo that has none. Readers of
// repo block until Fetch returns. Individual failures, including a missing
// diff summary or a non-zero git exit, are logged and reported in the
// result. An error is returned only when git could not be run for any
// commit or ctx itself was cancelled. An expired timeout is a partial
// result, never an error.
func (f *Fetcher) Fetch(ctx context.Context, repo *repository.Repository) (*FetchResult, error) {
	log := f.logger.WithFields(logrus.Fields{
		"repository": repo.Root(),
		"action":     "fetch_stats",
	})

	pending, release := repo.Lend()
	defer release()

	result := &FetchResult{Attempted: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	fetchCtx := ctx
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	log.WithFields(logrus.Fields{
		"commits":     len(pending),
		"concurrency": f.config.Concurrency,
	}).Info("Fetching commit stats")

	start := time.Now()
	itemErrs, err := f.processor.ProcessItems(fetchCtx, len(pending), func(ctx context.Context, i int) error {
		return f.fetchOne(ctx, repo.Root(), pending[i])
	})
	result.Duration = time.Since(start)

	for _, itemErr := range itemErrs {
		commit := pending[itemErr.Index]
		log.WithFields(logrus.Fields{
			"commit": commit.Hash,
			"owner":  commit.Owner,
		}).WithError(itemErr.Err).Warn("Failed to fetch commit stats")
		result.Failures = append(result.Failures, apperrors.CommitFailure{Hash: commit.Hash, Err: itemErr.Err})
	}
	for _, c := range pending {
		if c.HasStats() {
			result.Succeeded++
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("stats fetch interrupted: %w", ctx.Err())
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return result, err
	}

	// The deadline may expire while the last items are in flight, after the
	// processor has stopped scheduling. Those commits also keep no stats.
	if f.config.Timeout > 0 && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		log.WithFields(logrus.Fields{
			"timeout":   f.config.Timeout,
			"succeeded": result.Succeeded,
		}).Warn("Stats fetch timed out, remaining commits keep no stats")
		return result, nil
	}

	if result.Succeeded == 0 && len(result.Failures) == result.Attempted && allExecFailed(result.Failures) {
		return result, apperrors.NewFetchError(result.Attempted, result.Failures)
	}

	log.WithFields(logrus.Fields{
		"succeeded": result.Succeeded,
		"failed":    len(result.Failures),
		"duration":  result.Duration,
	}).Info("Commit stats fetched")

	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, dir string, commit *models.Commit) error {
	report, err := f.client.ShowStat(ctx, dir, commit.Hash)
	if err != nil {
		return err
	}
	s, err := git.ParseDiffStat(report)
	if err != nil {
		return err
	}
	if !commit.AttachStats(s) {
		return apperrors.NewInternalError(fmt.Sprintf("stats of commit %s were already attached", commit.Hash), nil)
	}
	return nil
}

// allExecFailed reports whether every failure is git failing to start,
// as opposed to git running and rejecting the commit.
func allExecFailed(failures []apperrors.CommitFailure) bool {
	for _, f := range failures {
		if !apperrors.IsExecFailed(f.Err) {
			return false
		}
	}
	return len(failures) > 0
}
