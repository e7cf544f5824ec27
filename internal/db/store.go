package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Store defines the interface for report history operations
type Store interface {
	SaveReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, path string, limit int) ([]*models.Report, error)
	GetLatestReport(ctx context.Context, path string) (*models.Report, error)
	Close() error
}

type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgresStore(connectionString string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Migrate applies the embedded schema migrations
func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
