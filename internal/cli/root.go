package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/cloud-cost-monitor/internal/config"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ccm",
	Short: "Cloud Cost Monitor - continuous cloud cost monitoring and alerting",
	Long: `Cloud Cost Monitor samples cost data from cloud accounts, evaluates it
against alert thresholds (absolute, percentage, anomaly, trend and budget
forecast), and sends notifications to Slack, Teams, Discord or webhooks.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.ccm/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initEngine builds a stopped engine from config. The returned runtime
// must be closed once the engine is no longer used.
func initEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*monitor.Engine, *config.Runtime, error) {
	rt, err := buildRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	engine, err := monitor.New(rt.Engine)
	if err != nil {
		_ = rt.Close()
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}
	return engine, rt, nil
}

// buildRuntime constructs providers without starting an engine.
func buildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*config.Runtime, error) {
	rt, err := config.Build(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build runtime: %w", err)
	}
	return rt, nil
}

// initStorage opens the local cost ledger.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}
