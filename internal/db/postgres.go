package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SaveReport stores a report and its author rows in one transaction and
// sets report.ID.
func (s *PostgresStore) SaveReport(ctx context.Context, report *models.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	log := s.logger.WithFields(logrus.Fields{
		"repository": report.Path,
		"action":     "save_report",
	})

	byOwner, err := json.Marshal(report.CommitsByOwner)
	if err != nil {
		return fmt.Errorf("failed to marshal commits by owner: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reports (path, revision, total_commits, commits_by_owner, fetched_stats, failed_stats, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		report.Path,
		report.Revision,
		report.TotalCommits,
		string(byOwner),
		report.FetchedStats,
		report.FailedStats,
		report.GeneratedAt,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_authors (report_id, position, name, insertions, deletions, net_lines, total_commits, merged_prs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range report.Authors {
		if _, err := stmt.ExecContext(ctx, report.ID, i, a.Name, a.Insertions, a.Deletions, a.NetLines, a.TotalCommits, a.MergedPRs); err != nil {
			return fmt.Errorf("failed to save author %q: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"authors":   len(report.Authors),
	}).Debug("Report saved")
	return nil
}

// ListReports returns the most recent reports for path, newest first
func (s *PostgresStore) ListReports(ctx context.Context, path string, limit int) ([]*models.Report, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, path, revision, total_commits, commits_by_owner, fetched_stats, failed_stats, generated_at
		FROM
			reports
		WHERE
			path = $1
		ORDER BY
			generated_at DESC, id DESC
		LIMIT $2`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	for _, r := range reports {
		if r.Authors, err = s.reportAuthors(ctx, r.ID); err != nil {
			return nil, err
		}
	}

	return reports, nil
}

// GetLatestReport returns the newest report for path
func (s *PostgresStore) GetLatestReport(ctx context.Context, path string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			id, path, revision, total_commits, commits_by_owner, fetched_stats, failed_stats, generated_at
		FROM
			reports
		WHERE
			path = $1
		ORDER BY
			generated_at DESC, id DESC
		LIMIT 1`, path)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no report for %s", path), err)
	}
	if err != nil {
		return nil, err
	}

	if r.Authors, err = s.reportAuthors(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var (
		r       models.Report
		byOwner []byte
	)
	err := row.Scan(&r.ID, &r.Path, &r.Revision, &r.TotalCommits, &byOwner, &r.FetchedStats, &r.FailedStats, &r.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if len(byOwner) > 0 {
		if err := json.Unmarshal(byOwner, &r.CommitsByOwner); err != nil {
			return nil, fmt.Errorf("failed to unmarshal commits by owner: %w", err)
		}
	}
	return &r, nil
}

func (s *PostgresStore) reportAuthors(ctx context.Context, reportID int64) ([]*models.AuthorStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			name, insertions, deletions, net_lines, total_commits, merged_prs
		FROM
			report_authors
		WHERE
			report_id = $1
		ORDER BY
			position`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report authors: %w", err)
	}
	defer rows.Close()

	var authors []*models.AuthorStats
	for rows.Next() {
		var a models.AuthorStats
		if err := rows.Scan(&a.Name, &a.Insertions, &a.Deletions, &a.NetLines, &a.TotalCommits, &a.MergedPRs); err != nil {
			return nil, fmt.Errorf("failed to scan report author: %w", err)
		}
		authors = append(authors, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report authors: %w", err)
	}
	return authors, nil
}
