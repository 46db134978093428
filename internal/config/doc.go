// Package config defines the configuration structure for taskd.
//
// Configuration is organized into logical sections (Server, Scheduler, Store,
// Notifier). Defaults come from struct tags applied with creasty/defaults;
// the command layer overrides them from flags and TASKD_ environment
// variables through viper.
//
// # Configuration Structure
//
//	Configuration
//	├── Server          - HTTP server settings
//	├── Scheduler       - Concurrency limit and thread pool
//	├── Store           - DuckDB location
//	├── Notifier        - Completion webhook retries
//	├── HTTPJobTimeout  - Timeout of the built-in "http" job kind
//	├── LogFormat       - Logging format
//	└── LogLevel        - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Scheduler Configuration
//
//	┌────────────────┬─────────────┬──────────────────────────────────────────┐
//	│ Field          │ Default     │ Description                              │
//	├────────────────┼─────────────┼──────────────────────────────────────────┤
//	│ MaxConcurrency │ 3           │ Tasks allowed to run at the same time    │
//	│ Pool           │ "goroutine" │ Thread pool: "goroutine" or "ants"       │
//	│ PoolSize       │ 0           │ ants capacity, 0 means MaxConcurrency+1  │
//	└────────────────┴─────────────┴──────────────────────────────────────────┘
//
// An ants pool must be strictly larger than MaxConcurrency: the worker that
// finished a task is the one that submits the next queued task.
//
// # Store And Notifier Configuration
//
//	┌────────────────────────┬─────────┬──────────────────────────────────────┐
//	│ Field                  │ Default │ Description                          │
//	├────────────────────────┼─────────┼──────────────────────────────────────┤
//	│ Store.DataFolder       │ ""      │ Folder of taskd.duckdb, "" in-memory │
//	│ Notifier.MaxElapsed    │ 1m      │ Give up retrying a webhook after it  │
//	│ Notifier.RequestTimeout│ 10s     │ Timeout of a single webhook call     │
//	└────────────────────────┴─────────┴──────────────────────────────────────┘
//
// # Usage Example
//
//	cfg, err := config.NewConfigurationWithDefaults()
//	if err != nil {
//	    return err
//	}
//	cfg.Scheduler.MaxConcurrency = 8
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Debug Logging
//
// DebugMap flattens the configuration for structured logging:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
