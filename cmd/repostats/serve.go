package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/api"
	"github.com/Kamar-Folarin/repostats/internal/config"
	"github.com/Kamar-Folarin/repostats/internal/db"
	"github.com/Kamar-Folarin/repostats/internal/report"
	"github.com/Kamar-Folarin/repostats/internal/utils"
)

func runServe(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	path, err := utils.NormalizeRepoPath(*servePath)
	if err != nil {
		return err
	}

	var store db.Store
	if cfg.DBConnectionString != "" {
		pg, err := db.NewPostgresStore(cfg.DBConnectionString, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pg.Close()

		// Run migrations with retry logic
		if err := retry(3, 5*time.Second, pg.Migrate); err != nil {
			return fmt.Errorf("failed to run migrations after retries: %w", err)
		}
		store = pg
	} else {
		logger.Info("DB_CONNECTION_STRING not set, report history is disabled")
	}

	svc := report.NewService(newGitClient(cfg, logger), store, cfg, logger)
	handler := api.NewHandler(svc, path, logger)

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      api.SetupRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Generate the first report in the background so the first request is fast
	go func() {
		if _, err := svc.Latest(ctx, path, false); err != nil {
			logger.WithError(err).Warn("Initial report generation failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.ServerAddress).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server exited properly")
	return nil
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
