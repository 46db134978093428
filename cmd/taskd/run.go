package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubev2v/taskd/internal/config"
	"github.com/kubev2v/taskd/internal/handlers"
	"github.com/kubev2v/taskd/internal/metrics"
	"github.com/kubev2v/taskd/internal/server"
	"github.com/kubev2v/taskd/internal/services"
	"github.com/kubev2v/taskd/internal/store"
	"github.com/kubev2v/taskd/pkg/scheduler"
	"github.com/kubev2v/taskd/pkg/webhook"
)

const (
	dbFileName      = "taskd.duckdb"
	shutdownTimeout = 30 * time.Second
)

func newRunCmd() *cobra.Command {
	cfg, err := config.NewConfigurationWithDefaults()
	if err != nil {
		panic(err)
	}
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the taskd HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := loadConfigFile(cmd.Flags(), configFile); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			undo := zap.ReplaceGlobals(logger)
			defer undo()

			zap.S().Infow("configuration loaded", "config", cfg.DebugMap())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Optional YAML/JSON/TOML file holding flag values")
	flags.IntVar(&cfg.Server.HTTPPort, "http-port", cfg.Server.HTTPPort, "HTTP server listen port")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	flags.IntVar(&cfg.Scheduler.MaxConcurrency, "max-concurrency", cfg.Scheduler.MaxConcurrency, "Maximum number of jobs running at once")
	flags.StringVar(&cfg.Scheduler.Pool, "pool", cfg.Scheduler.Pool, "Thread pool: goroutine or ants")
	flags.IntVar(&cfg.Scheduler.PoolSize, "pool-size", cfg.Scheduler.PoolSize, "ants pool capacity, 0 means max-concurrency+1")
	flags.StringVar(&cfg.Store.DataFolder, "data-folder", cfg.Store.DataFolder, "Folder of the DuckDB file, empty for in-memory")
	flags.DurationVar(&cfg.Notifier.MaxElapsed, "notify-max-elapsed", cfg.Notifier.MaxElapsed, "Give up retrying a job callback after this duration")
	flags.DurationVar(&cfg.Notifier.RequestTimeout, "notify-timeout", cfg.Notifier.RequestTimeout, "Timeout of a single job callback request")
	flags.DurationVar(&cfg.HTTPJobTimeout, "http-job-timeout", cfg.HTTPJobTimeout, "Timeout of the http job kind")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")

	return cmd
}

// loadConfigFile sets every flag not given on the command line from path.
func loadConfigFile(flags *pflag.FlagSet, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var setErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if setErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil {
			setErr = fmt.Errorf("invalid value for %s in %s: %w", f.Name, path, err)
		}
	})
	return setErr
}

func run(ctx context.Context, cfg *config.Configuration) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			zap.S().Errorw("failed to close store", "error", err)
		}
	}()

	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter, err := metrics.NewExporter(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	pool, releasePool, err := newThreadPool(cfg)
	if err != nil {
		return err
	}

	sched := scheduler.NewBoundedScheduler(cfg.Scheduler.MaxConcurrency, pool, scheduler.WithMetrics(exporter))

	notifier := services.NewNotifier(webhook.NewClient(cfg.Notifier.RequestTimeout), cfg.Notifier.MaxElapsed)

	jobSrv := services.NewJobService(st, sched, services.NewDefaultRegistry(cfg.HTTPJobTimeout),
		services.WithNotifier(notifier),
		services.WithObserver(exporter),
	)

	// jobs are cancelled and drained before the pool goes away, so no
	// queued task is admitted into a released pool
	defer func() {
		jobSrv.Close()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := jobSrv.Drain(drainCtx); err != nil {
			zap.S().Warnw("jobs did not finish in time", "error", err)
		}
		releasePool()
		notifier.Wait()
	}()

	if _, err := jobSrv.RecoverInterrupted(ctx); err != nil {
		return fmt.Errorf("failed to recover interrupted jobs: %w", err)
	}

	h := handlers.New(jobSrv)
	srv, err := server.NewServer(cfg, registry, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h)
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		zap.S().Errorw("failed to stop http server", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Configuration) (*store.Store, error) {
	path := ":memory:"
	if cfg.Store.DataFolder != "" {
		if err := os.MkdirAll(cfg.Store.DataFolder, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
		path = filepath.Join(cfg.Store.DataFolder, dbFileName)
	}

	db, err := store.NewDB(path)
	if err != nil {
		return nil, err
	}

	st := store.NewStore(db)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return st, nil
}

// newThreadPool returns the configured pool and a function releasing it
// once its work finished.
func newThreadPool(cfg *config.Configuration) (scheduler.ThreadPool, func(), error) {
	switch cfg.Scheduler.Pool {
	case config.PoolAnts:
		pool, err := scheduler.NewAntsPool(cfg.Scheduler.EffectivePoolSize())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ants pool: %w", err)
		}
		return pool, func() {
			if err := pool.ReleaseTimeout(shutdownTimeout); err != nil {
				zap.S().Warnw("ants pool did not drain in time", "error", err)
			}
		}, nil
	default:
		pool := scheduler.NewGoroutinePool()
		return pool, pool.Wait, nil
	}
}
