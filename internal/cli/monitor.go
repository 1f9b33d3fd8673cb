package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/internal/server"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/telemetry"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the cost monitoring engine",
}

var monitorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start continuous monitoring with the HTTP control API",
	RunE:  runMonitorStart,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(monitorStartCmd)

	monitorStartCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	monitorStartCmd.Flags().Duration("interval", 0, "Tick interval (default from config)")
}

func runMonitorStart(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Monitor.Interval = interval
	}

	logger := newLogger(cfg)

	engine, rt, err := initEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	exporter := telemetry.NewExporter(nil, engine)
	engine.Subscribe(exporter.Handle)

	apiServer := server.NewServer(engine, exporter.Handler(), logger)
	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := engine.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	defer engine.Stop()

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "listen", cfg.Server.Listen)
		fmt.Fprintf(os.Stderr, "Cloud Cost Monitor listening on %s\n", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
