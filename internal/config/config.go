package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

const (
	ServerModeDev  = "dev"
	ServerModeProd = "prod"

	PoolGoroutine = "goroutine"
	PoolAnts      = "ants"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Configuration struct {
	Server         Server
	Scheduler      Scheduler
	Store          Store
	Notifier       Notifier
	HTTPJobTimeout time.Duration `default:"30s"`
	LogFormat      string        `default:"console"`
	LogLevel       string        `default:"info"`
}

type Server struct {
	ServerMode string `default:"dev"`
	HTTPPort   int    `default:"8000"`
}

type Scheduler struct {
	MaxConcurrency int    `default:"3"`
	Pool           string `default:"goroutine"`
	// PoolSize is the ants pool capacity. Zero means MaxConcurrency+1.
	PoolSize int
}

type Store struct {
	// DataFolder holds taskd.duckdb. Empty keeps the database in memory.
	DataFolder string
}

type Notifier struct {
	MaxElapsed     time.Duration `default:"1m"`
	RequestTimeout time.Duration `default:"10s"`
}

// NewConfigurationWithDefaults returns a Configuration with every default applied.
func NewConfigurationWithDefaults() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	return cfg, nil
}

// EffectivePoolSize returns the ants pool capacity to use.
func (s Scheduler) EffectivePoolSize() int {
	if s.PoolSize == 0 {
		return s.MaxConcurrency + 1
	}
	return s.PoolSize
}

func (c *Configuration) Validate() error {
	switch c.Server.ServerMode {
	case ServerModeDev, ServerModeProd:
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", c.Server.ServerMode, ServerModeDev, ServerModeProd)
	}

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.Server.HTTPPort)
	}

	if c.Scheduler.MaxConcurrency < 1 {
		return fmt.Errorf("max concurrency must be at least 1, got %d", c.Scheduler.MaxConcurrency)
	}

	switch c.Scheduler.Pool {
	case PoolGoroutine:
	case PoolAnts:
		// the worker that ran a task also releases the next one
		if size := c.Scheduler.EffectivePoolSize(); size <= c.Scheduler.MaxConcurrency {
			return fmt.Errorf("ants pool size %d must be greater than max concurrency %d", size, c.Scheduler.MaxConcurrency)
		}
	default:
		return fmt.Errorf("invalid pool %q: must be %q or %q", c.Scheduler.Pool, PoolGoroutine, PoolAnts)
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	if c.HTTPJobTimeout <= 0 {
		return fmt.Errorf("http job timeout must be positive")
	}
	if c.Notifier.MaxElapsed < 0 {
		return fmt.Errorf("notifier max elapsed must not be negative")
	}

	return nil
}

// DebugMap returns the configuration as a flat map for structured logging.
func (c *Configuration) DebugMap() map[string]any {
	return map[string]any{
		"server.mode":               c.Server.ServerMode,
		"server.http_port":          c.Server.HTTPPort,
		"scheduler.max_concurrency": c.Scheduler.MaxConcurrency,
		"scheduler.pool":            c.Scheduler.Pool,
		"scheduler.pool_size":       c.Scheduler.EffectivePoolSize(),
		"store.data_folder":         c.Store.DataFolder,
		"notifier.max_elapsed":      c.Notifier.MaxElapsed.String(),
		"notifier.request_timeout":  c.Notifier.RequestTimeout.String(),
		"http_job_timeout":          c.HTTPJobTimeout.String(),
		"log_format":                c.LogFormat,
		"log_level":                 c.LogLevel,
	}
}
