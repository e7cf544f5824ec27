package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kamar-Folarin/repostats/internal/models"
)

// Store mock
type Store struct {
	mock.Mock
}

func (m *Store) SaveReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *Store) ListReports(ctx context.Context, path string, limit int) ([]*models.Report, error) {
	args := m.Called(ctx, path, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Report), args.Error(1)
}

func (m *Store) GetLatestReport(ctx context.Context, path string) (*models.Report, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}
