package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/config"
	"github.com/Kamar-Folarin/repostats/internal/db"
	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/repository"
	"github.com/Kamar-Folarin/repostats/internal/stats"
)

const progressInterval = time.Second

// Analysis is a generated report together with the data it was built from
type Analysis struct {
	Report     *models.Report
	Repository *repository.Repository
	Fetch      *stats.FetchResult
}

// Service runs the count, build, fetch and aggregate pipeline for a working
// tree and optionally keeps the resulting reports in a Store.
type Service struct {
	client  *git.Client
	fetcher *stats.Fetcher
	store   db.Store
	config  *config.Config
	logger  *logrus.Logger

	mu     sync.Mutex
	latest map[string]*Analysis
}

// NewService creates a report service. store may be nil, in which case
// reports are not persisted and History is unavailable.
func NewService(client *git.Client, store db.Store, cfg *config.Config, logger *logrus.Logger) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		client:  client,
		fetcher: stats.NewFetcher(client, &cfg.Fetch, logger),
		store:   store,
		config:  cfg,
		logger:  logger,
		latest:  make(map[string]*Analysis),
	}
}

// Fetcher exposes the stats fetcher, mainly for progress reporting
func (s *Service) Fetcher() *stats.Fetcher {
	return s.fetcher
}

// Generate analyses the working tree at path
func (s *Service) Generate(ctx context.Context, path string) (*Analysis, error) {
	log := s.logger.WithFields(logrus.Fields{
		"repository": path,
		"action":     "generate_report",
	})
	start := time.Now()

	repo, err := repository.Build(ctx, s.client, path, repository.BuildOptions{
		PageSize: s.config.PageSize,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	total, err := repository.TotalCommitCount(ctx, s.client, path)
	if err != nil {
		return nil, err
	}

	byOwner, err := repo.CommitsByOwner(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to summarise commits by owner")
	}

	var stopProgress func()
	if s.logger.IsLevelEnabled(logrus.DebugLevel) {
		stopProgress = s.logProgress(log)
	}
	fetch, err := s.fetcher.Fetch(ctx, repo)
	if stopProgress != nil {
		stopProgress()
	}
	if err != nil {
		return nil, err
	}

	aggregate, err := stats.Aggregate(repo, stats.AggregateOptions{
		Filter: stats.ExcludeAuthors(s.config.ExcludeAuthors...),
	})
	if err != nil {
		return nil, err
	}

	merges, err := repo.MergesByOwner(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to count merged pull requests")
	}
	for owner, hashes := range merges {
		if a, ok := aggregate[owner]; ok {
			a.MergedPRs = len(hashes)
		}
	}

	report := &models.Report{
		Path:           path,
		Revision:       s.client.Revision(),
		TotalCommits:   total,
		CommitsByOwner: byOwner,
		Authors:        stats.Leaderboard(aggregate, stats.SortByCommits, false),
		FetchedStats:   fetch.Succeeded,
		FailedStats:    len(fetch.Failures),
		GeneratedAt:    time.Now().UTC(),
	}

	if s.store != nil {
		s.compareWithPrevious(ctx, log, report)
		if err := s.store.SaveReport(ctx, report); err != nil {
			log.WithError(err).Error("Failed to save report")
		}
	}

	analysis := &Analysis{Report: report, Repository: repo, Fetch: fetch}

	s.mu.Lock()
	s.latest[path] = analysis
	s.mu.Unlock()

	log.WithFields(logrus.Fields{
		"total_commits": total,
		"authors":       len(report.Authors),
		"failed_stats":  report.FailedStats,
		"duration":      time.Since(start),
	}).Info("Report generated")

	return analysis, nil
}

// compareWithPrevious logs how far the working tree moved since the last
// stored report of the same path.
func (s *Service) compareWithPrevious(ctx context.Context, log *logrus.Entry, report *models.Report) {
	previous, err := s.store.GetLatestReport(ctx, report.Path)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.WithError(err).Warn("Failed to load previous report")
		}
		return
	}
	log.WithFields(logrus.Fields{
		"previous_report": previous.ID,
		"previous_at":     previous.GeneratedAt,
		"new_commits":     report.TotalCommits - previous.TotalCommits,
	}).Info("Compared with previous report")
}

// logProgress logs fetch progress at debug level once per progressInterval
// until stop is called. stop logs the last unread snapshot.
func (s *Service) logProgress(log *logrus.Entry) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	progress := s.fetcher.Progress()

	logSnapshot := func(p *models.BatchProgress) {
		log.WithFields(logrus.Fields{
			"processed": p.ProcessedItems,
			"failed":    p.FailedItems,
			"in_flight": p.InFlight,
			"total":     p.TotalItems,
		}).Debug("Fetch progress")
	}

	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				select {
				case p := <-progress:
					logSnapshot(p)
				default:
				}
			case <-done:
				select {
				case p := <-progress:
					logSnapshot(p)
				default:
				}
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// Latest returns the last analysis of path, generating one when there is
// none yet or refresh is set.
func (s *Service) Latest(ctx context.Context, path string, refresh bool) (*Analysis, error) {
	if !refresh {
		s.mu.Lock()
		analysis, ok := s.latest[path]
		s.mu.Unlock()
		if ok {
			return analysis, nil
		}
	}
	return s.Generate(ctx, path)
}

// History lists stored reports for path, newest first
func (s *Service) History(ctx context.Context, path string, limit int) ([]*models.Report, error) {
	if s.store == nil {
		return nil, apperrors.NewNotFoundError("report history is not configured", nil)
	}
	reports, err := s.store.ListReports(ctx, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
