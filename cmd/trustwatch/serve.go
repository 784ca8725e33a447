package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/trustwatch/trustwatch"
	"github.com/trustwatch/trustwatch/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// buildOptions converts a loaded config into SDK options.
func buildOptions(cfg *config.Config, logger *slog.Logger) []trustwatch.Option {
	opts := []trustwatch.Option{
		trustwatch.WithSources(buildSources(cfg)...),
		trustwatch.WithPort(cfg.Port),
		trustwatch.WithSyncInterval(cfg.SyncInterval.Duration()),
		trustwatch.WithFetchTimeout(cfg.FetchTimeout.Duration()),
		trustwatch.WithLogger(logger),
	}
	if cfg.DataPath != "" {
		opts = append(opts, trustwatch.WithDataPath(cfg.DataPath))
	}
	if cfg.DisableFallback {
		opts = append(opts, trustwatch.WithoutFallback())
	}
	return opts
}

// buildSources converts config sources to SDK sources.
func buildSources(cfg *config.Config) []trustwatch.Source {
	sources := make([]trustwatch.Source, len(cfg.Sources))
	for i, src := range cfg.Sources {
		sources[i] = trustwatch.Source{
			URL:       src.URL,
			Name:      src.Name,
			Enabled:   src.IsEnabled(),
			AuthToken: src.AuthToken,
		}
	}
	return sources
}

// serveCmd starts the TrustWatch sync daemon and dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync daemon and dashboard server",
	Long: `Run the TrustWatch sync daemon and dashboard server.

The daemon will:
  - Load configuration from the specified YAML file
  - Sync all configured sources immediately, then at the sync interval
  - Serve the status dashboard and API on the configured port
  - Reload the config file when it changes on disk

The daemon runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  trustwatch serve -c config.yaml
  trustwatch serve --config /etc/trustwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"sources", len(cfg.Sources),
		"sync_interval", cfg.SyncInterval.Duration().String(),
	)

	tw, err := trustwatch.New(buildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create TrustWatch: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// reload sync interval and source list when the config file changes
	go func() {
		err := config.Watch(ctx, configFile, logger, func(next *config.Config) {
			tw.SetSyncInterval(next.SyncInterval.Duration())
			if err := tw.UpdateSources(buildSources(next)); err != nil {
				logger.Warn("failed to apply reloaded sources", "error", err)
			}
		})
		if err != nil {
			logger.Warn("config watch unavailable", "error", err)
		}
	}()

	// start daemon - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- tw.Start(ctx)
	}()

	// wait for daemon to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
