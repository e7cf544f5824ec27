package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/repostats/internal/config"
	"github.com/Kamar-Folarin/repostats/internal/git"
	"github.com/Kamar-Folarin/repostats/internal/stats"
)

var (
	Version = "dev"
)

var (
	app = kingpin.New("repostats", "Per-author commit, insertion and deletion statistics for a git working tree.")

	configPath     = app.Flag("config", "path to YAML config file").Short('c').String()
	revision       = app.Flag("rev", "revision range to analyse").PlaceHolder("HEAD").String()
	concurrency    = app.Flag("concurrency", "maximum concurrent git show processes").Short('j').Int()
	pageSize       = app.Flag("page-size", "read the log in pages of this many commits, 0 for one call").Int()
	timeout        = app.Flag("timeout", "deadline for fetching commit stats, 0 for none").Duration()
	retries        = app.Flag("retries", "retries per commit when fetching stats").Int()
	excludeAuthors = app.Flag("exclude-author", "leave commits by this exact author name out of the aggregate").Strings()
	logLevel       = app.Flag("log-level", "log level").Enum("trace", "debug", "info", "warn", "error")
	logFormat      = app.Flag("log-format", "log format").Enum("text", "json")

	reportCmd    = app.Command("report", "Print the per-author report.").Default()
	reportPath   = reportCmd.Arg("path", "path of the git working tree").Required().String()
	reportFormat = reportCmd.Flag("format", "output format").Short('f').Default("table").Enum("table", "json")
	reportTUI    = reportCmd.Flag("tui", "show an interactive leaderboard").Bool()
	reportSort   = reportCmd.Flag("sort", "leaderboard column").Short('s').Default(string(stats.SortByCommits)).Enum(stats.SortKeys...)
	reportAsc    = reportCmd.Flag("asc", "sort ascending").Bool()

	serveCmd  = app.Command("serve", "Serve the report over HTTP.")
	servePath = serveCmd.Arg("path", "path of the git working tree").Required().String()
	serveAddr = serveCmd.Flag("addr", "listen address").String()
)

func main() {
	app.Version(Version)
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case reportCmd.FullCommand():
		err = runReport(ctx, cfg, logger, os.Stdout)
	case serveCmd.FullCommand():
		err = runServe(ctx, cfg, logger)
	}

	if err != nil {
		logger.WithError(err).Error("repostats failed")
		stop()
		os.Exit(1)
	}
}

// loadConfig reads file and environment configuration, then applies flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	if *revision != "" {
		cfg.Revision = *revision
	}
	if *concurrency != 0 {
		cfg.Fetch.Concurrency = *concurrency
	}
	if *pageSize != 0 {
		cfg.PageSize = *pageSize
	}
	if *timeout != 0 {
		cfg.Fetch.Timeout = *timeout
	}
	if *retries != 0 {
		cfg.Fetch.MaxRetries = *retries
	}
	if len(*excludeAuthors) > 0 {
		cfg.ExcludeAuthors = append(cfg.ExcludeAuthors, *excludeAuthors...)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *serveAddr != "" {
		cfg.ServerAddress = *serveAddr
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func newGitClient(cfg *config.Config, logger *logrus.Logger) *git.Client {
	return git.NewClient(
		git.NewExecRunner(cfg.GitBinary),
		git.WithRevision(cfg.Revision),
		git.WithLogger(logger),
	)
}
