package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/models"
	"github.com/Kamar-Folarin/repostats/internal/report"
	"github.com/Kamar-Folarin/repostats/internal/stats"
)

// ReportService is the part of report.Service the handler needs
type ReportService interface {
	Latest(ctx context.Context, path string, refresh bool) (*report.Analysis, error)
	History(ctx context.Context, path string, limit int) ([]*models.Report, error)
}

// Handler serves the reports of one working tree
type Handler struct {
	service ReportService
	path    string
	logger  *logrus.Logger
}

func NewHandler(service ReportService, path string, logger *logrus.Logger) *Handler {
	return &Handler{
		service: service,
		path:    path,
		logger:  logger,
	}
}

// GetReport returns the current report
// @Summary Get the contribution report
// @Description Returns the cached report, or generates it first when none exists or refresh is set
// @Tags report
// @Produce json
// @Param refresh query bool false "Regenerate the report" default(false)
// @Success 200 {object} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /report [get]
func (h *Handler) GetReport(c *gin.Context) {
	refresh, err := getBoolQueryParam(c, "refresh", false)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid refresh parameter"})
		return
	}

	analysis, err := h.service.Latest(c.Request.Context(), h.path, refresh)
	if err != nil {
		h.respondWithError(c, "Failed to generate report", err)
		return
	}

	c.JSON(http.StatusOK, analysis.Report)
}

// GetAuthors returns the author leaderboard
// @Summary Get the author leaderboard
// @Description Per-author insertions, deletions, net lines and commit counts
// @Tags report
// @Produce json
// @Param sort query string false "Sort key" Enums(name, commits, insertions, deletions, net, prs) default(commits)
// @Param asc query bool false "Ascending order" default(false)
// @Param limit query int false "Number of authors to return, 0 for all" default(0)
// @Success 200 {object} AuthorListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /authors [get]
func (h *Handler) GetAuthors(c *gin.Context) {
	key, err := stats.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	asc, err := getBoolQueryParam(c, "asc", false)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid asc parameter"})
		return
	}
	limit, err := getIntQueryParam(c, "limit", 0)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
		return
	}

	analysis, err := h.service.Latest(c.Request.Context(), h.path, false)
	if err != nil {
		h.respondWithError(c, "Failed to generate report", err)
		return
	}

	aggregate := make(map[string]*models.AuthorStats, len(analysis.Report.Authors))
	for _, a := range analysis.Report.Authors {
		aggregate[a.Name] = a
	}
	board := stats.Leaderboard(aggregate, key, asc)
	if limit > 0 && limit < len(board) {
		board = board[:limit]
	}

	resp := AuthorListResponse{Data: board}
	resp.Metadata.Repository = h.path
	resp.Metadata.Sort = string(key)
	resp.Metadata.Ascending = asc
	resp.Metadata.Limit = limit
	c.JSON(http.StatusOK, resp)
}

// GetCommits returns the parsed commits
// @Summary List commits
// @Description Commits in log order with their stats, optionally for one owner
// @Tags report
// @Produce json
// @Param owner query string false "Only commits by this owner"
// @Success 200 {object} CommitListResponse
// @Failure 500 {object} ErrorResponse
// @Router /commits [get]
func (h *Handler) GetCommits(c *gin.Context) {
	owner := c.Query("owner")

	analysis, err := h.service.Latest(c.Request.Context(), h.path, false)
	if err != nil {
		h.respondWithError(c, "Failed to generate report", err)
		return
	}

	commits := make([]*models.Commit, 0)
	for _, commit := range analysis.Repository.Commits() {
		if owner == "" || commit.Owner == owner {
			commits = append(commits, commit)
		}
	}

	c.JSON(http.StatusOK, CommitListResponse{Data: commits, Total: len(commits)})
}

// GetHistory returns stored reports
// @Summary List stored reports
// @Description Previously generated reports, newest first
// @Tags report
// @Produce json
// @Param limit query int false "Number of reports to return" default(20)
// @Success 200 {array} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	limit, err := getIntQueryParam(c, "limit", 20)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
		return
	}

	reports, err := h.service.History(c.Request.Context(), h.path, limit)
	if err != nil {
		h.respondWithError(c, "Failed to list reports", err)
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}

	c.JSON(http.StatusOK, reports)
}

// HealthCheck reports that the server is up
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) respondWithError(c *gin.Context, msg string, err error) {
	h.logger.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err,
	}).Error(msg)

	c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func getIntQueryParam(c *gin.Context, param string, defaultValue int) (int, error) {
	value := c.Query(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getBoolQueryParam(c *gin.Context, param string, defaultValue bool) (bool, error) {
	value := c.Query(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
