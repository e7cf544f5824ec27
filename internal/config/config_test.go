package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "git", cfg.GitBinary)
	assert.Equal(t, "HEAD", cfg.Revision)
	assert.Equal(t, DefaultConcurrency, cfg.Fetch.Concurrency)
	assert.Equal(t, 0, cfg.PageSize)
	assert.Equal(t, time.Duration(0), cfg.Fetch.Timeout)
	assert.Empty(t, cfg.ExcludeAuthors)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REVISION", "main")
	t.Setenv("FETCH_CONCURRENCY", "4")
	t.Setenv("FETCH_TIMEOUT", "90s")
	t.Setenv("LOG_PAGE_SIZE", "500")
	t.Setenv("EXCLUDE_AUTHORS", "dependabot[bot],renovate[bot]")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Revision)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 500, cfg.PageSize)
	assert.Equal(t, []string{"dependabot[bot]", "renovate[bot]"}, cfg.ExcludeAuthors)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repostats.yml")
	require.NoError(t, os.WriteFile(path, []byte("revision: trunk\nfetch:\n  concurrency: 2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trunk", cfg.Revision)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, "git", cfg.GitBinary)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.Fetch.Concurrency = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Fetch.MaxRetries = -1 }, wantErr: true},
		{name: "negative page size", mutate: func(c *Config) { c.PageSize = -5 }, wantErr: true},
		{name: "empty revision", mutate: func(c *Config) { c.Revision = "" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Fetch.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
