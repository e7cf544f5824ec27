package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/git/mocks"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/report"
	"github.com/Kamar-Folarin/repostats/internal/repository"
)

const testPath = "/src/project"

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Latest(ctx context.Context, path string, refresh bool) (*report.Analysis, error) {
	args := m.Called(ctx, path, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Analysis), args.Error(1)
}

func (m *MockReportService) History(ctx context.Context, path string, limit int) ([]*models.Report, error) {
	args := m.Called(ctx, path, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Report), args.Error(1)
}

func setupTestHandler() (*Handler, *MockReportService) {
	mockService := new(MockReportService)
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil)) // Discard logs during tests

	return NewHandler(mockService, testPath, logger), mockService
}

func setupTestRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/report", handler.GetReport)
	router.GET("/authors", handler.GetAuthors)
	router.GET("/commits", handler.GetCommits)
	router.GET("/history", handler.GetHistory)
	return router
}

func testAnalysis(t *testing.T) *report.Analysis {
	t.Helper()
	runner := mocks.NewScriptedRunner().
		OK("abc123|Alice|2 days ago|fix bug\ndef456|Bob|1 day ago|add feature\n0a0a0a|Alice|3 days ago|docs\n", "log", git.LogFormat, "HEAD")
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	repo, err := repository.Build(context.Background(), git.NewClient(runner, git.WithLogger(logger)), t.TempDir(), repository.BuildOptions{Logger: logger})
	require.NoError(t, err)
	repo.Commits()[0].AttachStats(models.Stats{Insertions: 3, Deletions: 1})

	return &report.Analysis{
		Repository: repo,
		Report: &models.Report{
			Path:         testPath,
			Revision:     "HEAD",
			TotalCommits: 3,
			Authors: []*models.AuthorStats{
				{Name: "Alice", Insertions: 3, Deletions: 1, NetLines: 2, TotalCommits: 2},
				{Name: "Bob", TotalCommits: 1},
			},
			FetchedStats: 1,
			GeneratedAt:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestGetReport(t *testing.T) {
	analysis := testAnalysis(t)

	tests := []struct {
		name           string
		query          string
		refresh        bool
		mockError      error
		expectedStatus int
	}{
		{name: "cached report", query: "", refresh: false, expectedStatus: http.StatusOK},
		{name: "refresh", query: "?refresh=true", refresh: true, expectedStatus: http.StatusOK},
		{name: "invalid refresh", query: "?refresh=maybe", expectedStatus: http.StatusBadRequest},
		{
			name:           "build failure",
			query:          "",
			mockError:      apperrors.NewCommandFailedError([]string{"log"}, 128, "fatal: not a git repository"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid path",
			query:          "",
			mockError:      apperrors.NewValidationError("repository path is not a directory", nil),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupTestHandler()
			router := setupTestRouter(handler)

			if tt.expectedStatus != http.StatusBadRequest || tt.mockError != nil {
				if tt.mockError != nil {
					mockService.On("Latest", mock.Anything, testPath, tt.refresh).Return(nil, tt.mockError)
				} else {
					mockService.On("Latest", mock.Anything, testPath, tt.refresh).Return(analysis, nil)
				}
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/report"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response models.Report
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, 3, response.TotalCommits)
				assert.Equal(t, analysis.Report.Authors, response.Authors)
			} else {
				var response ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.NotEmpty(t, response.Error)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetAuthors(t *testing.T) {
	analysis := testAnalysis(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedNames  []string
	}{
		{name: "default order", query: "", expectedStatus: http.StatusOK, expectedNames: []string{"Alice", "Bob"}},
		{name: "by name descending", query: "?sort=name", expectedStatus: http.StatusOK, expectedNames: []string{"Bob", "Alice"}},
		{name: "fewest commits first", query: "?sort=commits&asc=true", expectedStatus: http.StatusOK, expectedNames: []string{"Bob", "Alice"}},
		{name: "limited", query: "?sort=net&limit=1", expectedStatus: http.StatusOK, expectedNames: []string{"Alice"}},
		{name: "unknown sort key", query: "?sort=stars", expectedStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?limit=-1", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupTestHandler()
			router := setupTestRouter(handler)
			if tt.expectedStatus == http.StatusOK {
				mockService.On("Latest", mock.Anything, testPath, false).Return(analysis, nil)
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/authors"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response AuthorListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			names := make([]string, 0, len(response.Data))
			for _, a := range response.Data {
				names = append(names, a.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Equal(t, testPath, response.Metadata.Repository)
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetCommits(t *testing.T) {
	analysis := testAnalysis(t)
	handler, mockService := setupTestHandler()
	router := setupTestRouter(handler)
	mockService.On("Latest", mock.Anything, testPath, false).Return(analysis, nil)

	type commitJSON struct {
		Hash  string        `json:"hash"`
		Owner string        `json:"owner"`
		Stats *models.Stats `json:"stats"`
	}
	var response struct {
		Data  []commitJSON `json:"data"`
		Total int          `json:"total"`
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/commits", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Total)
	require.NotNil(t, response.Data[0].Stats)
	assert.Equal(t, 3, response.Data[0].Stats.Insertions)
	assert.Nil(t, response.Data[1].Stats)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/commits?owner=Alice", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	for _, c := range response.Data {
		assert.Equal(t, "Alice", c.Owner)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		limit          int
		mockResponse   []*models.Report
		mockError      error
		expectedStatus int
	}{
		{
			name:           "default limit",
			limit:          20,
			mockResponse:   []*models.Report{{ID: 2, Path: testPath}, {ID: 1, Path: testPath}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty history",
			query:          "?limit=5",
			limit:          5,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "history not configured",
			limit:          20,
			mockError:      apperrors.NewNotFoundError("report history is not configured", nil),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "store failure",
			limit:          20,
			mockError:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid limit",
			query:          "?limit=zero",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupTestHandler()
			router := setupTestRouter(handler)
			if tt.limit > 0 {
				if tt.mockError != nil {
					mockService.On("History", mock.Anything, testPath, tt.limit).Return(nil, tt.mockError)
				} else {
					mockService.On("History", mock.Anything, testPath, tt.limit).Return(tt.mockResponse, nil)
				}
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/history"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response []*models.Report
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Len(t, response, len(tt.mockResponse))
				assert.NotNil(t, response)
			}
			mockService.AssertExpectations(t)
		})
	}
}
