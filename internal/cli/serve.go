package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/api"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/config"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/events"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/jobs"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging, os.Stdout)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Run archive (optional)
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	if db != nil {
		defer db.Close()
		logger.Info("run archive ready", "driver", cfg.Database.Driver())
	} else {
		logger.Info("run archive disabled")
	}

	// Events (optional)
	var publisher events.Publisher
	if cfg.Events.URL != "" {
		nc, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			publisher = nc
			defer nc.Close()
			logger.Info("connected to nats")
		}
	}

	engine := evaluation.New(db, publisher, evaluation.SettingsFromConfig(cfg), logger)

	jm := jobs.New(jobs.Options{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
		Timeout:   cfg.JobTimeout(),
	}, publisher, logger)
	jm.Start(ctx)
	defer jm.Stop()
	logger.Info("job workers started", "workers", cfg.Jobs.Workers, "timeout", cfg.JobTimeout())

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(engine, db, jm, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
			cancel()
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}

// openStore returns nil when persistence is disabled.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver() {
	case "":
		return nil, nil
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.URL)
	case "sqlite":
		return store.NewSQLiteStore(cfg.SQLitePath())
	}
	return nil, fmt.Errorf("unsupported database url %q", cfg.URL)
}
