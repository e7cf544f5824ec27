package config

import (
	"fmt"
	"time"
)

// DefaultConcurrency caps simultaneous git processes during a stats fetch
const DefaultConcurrency = 10

// FetchConfig holds stats fetch configuration
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency" env:"FETCH_CONCURRENCY" env-default:"10"`
	Timeout     time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT" env-default:"0s"`
	MaxRetries  int           `yaml:"max_retries" env:"FETCH_MAX_RETRIES" env-default:"0"`
	RetryDelay  time.Duration `yaml:"retry_delay" env:"FETCH_RETRY_DELAY" env-default:"200ms"`
}

// DefaultFetchConfig returns the default fetch configuration
func DefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		Concurrency: DefaultConcurrency,
		RetryDelay:  200 * time.Millisecond,
	}
}

func (c *FetchConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("fetch retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
