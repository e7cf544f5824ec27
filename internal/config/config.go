package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	GitBinary          string        `yaml:"git_binary" env:"GIT_BINARY" env-default:"git"`
	Revision           string        `yaml:"revision" env:"REVISION" env-default:"HEAD"`
	PageSize           int           `yaml:"page_size" env:"LOG_PAGE_SIZE" env-default:"0"`
	ExcludeAuthors     []string      `yaml:"exclude_authors" env:"EXCLUDE_AUTHORS" env-separator:","`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat          string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	ServerAddress      string        `yaml:"server_address" env:"SERVER_ADDRESS" env-default:":8080"`
	DBConnectionString string        `yaml:"db_connection_string" env:"DB_CONNECTION_STRING"`
	Fetch              FetchConfig   `yaml:"fetch"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Load reads an optional .env file, then the YAML file at path (if any),
// then the environment.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		GitBinary:       "git",
		Revision:        "HEAD",
		LogLevel:        "info",
		LogFormat:       "text",
		ServerAddress:   ":8080",
		Fetch:           *DefaultFetchConfig(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", c.PageSize)
	}
	if c.Revision == "" {
		return fmt.Errorf("revision must not be empty")
	}
	return c.Fetch.Validate()
}
