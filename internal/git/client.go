package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
)

// LogFormat is the pretty format handed to git log; ParseLogLine reads it back
const LogFormat = "--pretty=format:%h" + FieldSeparator + "%an" + FieldSeparator + "%ar" + FieldSeparator + "%s"

// MergeFormat lists merge commits as owner and hash; ParseMerges reads it back
const MergeFormat = "--pretty=format:%an" + FieldSeparator + "%H"

// DefaultRevision is used when no revision range is configured
const DefaultRevision = "HEAD"

// Client issues the git commands the analysis relies on and maps their
// outcome onto the application error taxonomy.
type Client struct {
	runner   Runner
	logger   *logrus.Logger
	revision string
}

// ClientOption allows configuring the git client
type ClientOption func(*Client)

// WithRevision sets the revision range used by count, log and shortlog
func WithRevision(rev string) ClientOption {
	return func(c *Client) {
		if rev != "" {
			c.revision = rev
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new git client on top of runner
func NewClient(runner Runner, opts ...ClientOption) *Client {
	client := &Client{
		runner:   runner,
		logger:   logrus.StandardLogger(),
		revision: DefaultRevision,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Revision returns the configured revision range
func (c *Client) Revision() string {
	return c.revision
}

// Run executes args in dir and returns stdout as text
func (c *Client) Run(ctx context.Context, dir string, args ...string) (string, error) {
	log := c.logger.WithFields(logrus.Fields{
		"dir":  dir,
		"args": strings.Join(args, " "),
	})
	log.Debug("running git")

	res, err := c.runner.Run(ctx, dir, args...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", apperrors.NewExecFailedError(args, err)
	}

	if res.ExitCode != 0 {
		log.WithField("exit_code", res.ExitCode).Debug("git exited non-zero")
		return "", apperrors.NewCommandFailedError(args, res.ExitCode, string(res.Stderr))
	}

	if !utf8.Valid(res.Stdout) {
		return "", apperrors.NewEncodingError(fmt.Sprintf("output of git %s is not valid UTF-8", strings.Join(args, " ")))
	}

	return string(res.Stdout), nil
}

// RevCount returns the number of revisions reachable from the configured revision
func (c *Client) RevCount(ctx context.Context, dir string) (int, error) {
	out, err := c.Run(ctx, dir, "rev-list", "--count", c.revision)
	if err != nil {
		return 0, err
	}
	return ParseCount(out)
}

// Log returns raw log lines, newest first. A positive maxCount pages the log.
func (c *Client) Log(ctx context.Context, dir string, skip, maxCount int) ([]string, error) {
	args := []string{"log", LogFormat}
	if skip > 0 {
		args = append(args, "--skip="+strconv.Itoa(skip))
	}
	if maxCount > 0 {
		args = append(args, "--max-count="+strconv.Itoa(maxCount))
	}
	args = append(args, c.revision)

	out, err := c.Run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ShowStat returns the diff stat report for one commit
func (c *Client) ShowStat(ctx context.Context, dir, hash string) (string, error) {
	return c.Run(ctx, dir, "show", "--stat", hash)
}

// Shortlog returns per-author commit counts as summarised by git itself
func (c *Client) Shortlog(ctx context.Context, dir string) (map[string]int, error) {
	out, err := c.Run(ctx, dir, "shortlog", "-sn", c.revision)
	if err != nil {
		return nil, err
	}
	return ParseShortlog(out)
}

// Merges returns the merge commits on the first-parent history of the
// configured revision, grouped by author. On a mainline each of them is a
// merged pull request.
func (c *Client) Merges(ctx context.Context, dir string) (map[string][]string, error) {
	out, err := c.Run(ctx, dir, "log", "--merges", "--first-parent", MergeFormat, c.revision)
	if err != nil {
		return nil, err
	}
	return ParseMerges(out)
}
