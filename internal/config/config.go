// Package config loads tableview settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/datatable-client/pkg/client"
	"github.com/Sternrassler/datatable-client/pkg/logging"
	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration.
type Config struct {
	LocalEndpoint  string `env:"DATATABLE_LOCAL_ENDPOINT" envDefault:"http://127.0.0.1:5000/data"`
	RemoteEndpoint string `env:"DATATABLE_REMOTE_ENDPOINT" envDefault:"https://fujoos.pythonanywhere.com/data"`

	// Host decides between the local and remote endpoint.
	Host string `env:"DATATABLE_HOST" envDefault:"localhost"`

	DatasetParam string        `env:"DATATABLE_DATASET_PARAM" envDefault:"dataset"`
	Datasets     []string      `env:"DATATABLE_DATASETS" envSeparator:","`
	PageSize     int           `env:"DATATABLE_PAGE_SIZE" envDefault:"10"`
	Timeout      time.Duration `env:"DATATABLE_TIMEOUT" envDefault:"30s"`

	// RedisAddr selects the Redis page store; empty keeps pages in memory.
	RedisAddr  string        `env:"DATATABLE_REDIS_ADDR"`
	CacheQuota int           `env:"DATATABLE_CACHE_QUOTA" envDefault:"5242880"`
	CacheTTL   time.Duration `env:"DATATABLE_CACHE_TTL"`

	// RunDB is the SQLite file persisting the last run id; empty keeps it
	// in memory.
	RunDB string `env:"DATATABLE_RUN_DB"`
	RunID string `env:"DATATABLE_RUN_ID"`

	LogLevel     string `env:"DATATABLE_LOG_LEVEL" envDefault:"info"`
	LogPretty    bool   `env:"DATATABLE_LOG_PRETTY"`
	OTelEndpoint string `env:"DATATABLE_OTEL_ENDPOINT"`

	Port int `env:"PORT" envDefault:"8080"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("DATATABLE_PAGE_SIZE must be >= 1, got %d", c.PageSize))
	}
	if c.CacheQuota < 0 {
		errs = append(errs, fmt.Errorf("DATATABLE_CACHE_QUOTA must be >= 0, got %d", c.CacheQuota))
	}
	if c.DatasetParam == "" {
		errs = append(errs, errors.New("DATATABLE_DATASET_PARAM must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	return errors.Join(errs...)
}

// Endpoint returns the data API URL for Host.
func (c Config) Endpoint() string {
	return client.ResolveEndpoint(c.Host, c.LocalEndpoint, c.RemoteEndpoint)
}

// ClientConfig derives the data fetcher configuration.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.Endpoint())
	cfg.DatasetParam = c.DatasetParam
	cfg.Timeout = c.Timeout
	return cfg
}

// LoggingConfig derives the logger configuration.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}

// DefaultDataset returns the first configured dataset, or "".
func (c Config) DefaultDataset() string {
	if len(c.Datasets) == 0 {
		return ""
	}
	return c.Datasets[0]
}
