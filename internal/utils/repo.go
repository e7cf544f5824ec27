package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeRepoPath turns a user supplied working tree path into the
// absolute, cleaned form used to key reports
func NormalizeRepoPath(repoPath string) (string, error) {
	if strings.TrimSpace(repoPath) == "" {
		return "", fmt.Errorf("repository path must not be empty")
	}

	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return "", fmt.Errorf("invalid repository path %q: %w", repoPath, err)
	}

	return filepath.Clean(abs), nil
}
