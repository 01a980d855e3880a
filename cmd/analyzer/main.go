// Command analyzer runs the finpulse analysis pipeline: a nightly sweep that
// turns each active user's transactions into budget totals, a health score,
// recommendations, and personalized challenges.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finpulse/finpulse/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var runOnceUser string
	flag.StringVar(&runOnceUser, "user", "", "run one analysis for this user id and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	if runOnceUser != "" {
		return runOnce(ctx, deps, runOnceUser)
	}

	if cfg.Observability.MetricsEnabled {
		go serveMetrics(cfg.Observability.MetricsPort, logger)
	}

	if !cfg.Scheduler.Enabled {
		logger.Info("scheduler disabled, running one sweep and exiting")
		deps.Scheduler.RunNow()
		<-ctx.Done()
		return nil
	}

	if err := deps.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	stopCtx := deps.Scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("scheduler did not drain in time")
	}
	return nil
}

func runOnce(ctx context.Context, deps *Dependencies, rawUserID string) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawUserID, err)
	}

	report, err := deps.Analyzer.Run(ctx, userID, time.Now())
	if err != nil {
		return err
	}

	deps.Logger.Info("analysis complete",
		slog.String("user_id", userID.String()),
		slog.Int("health_score", report.Health.Current),
		slog.Int("recommendations", len(report.Recommendations)),
		slog.Int("challenges", len(report.Challenges)),
	)
	return nil
}

func serveMetrics(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics server listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", slog.Any("error", err))
	}
}
