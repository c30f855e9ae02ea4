// Command runner executes the scenario suite once against the target
// application and exits non-zero when any scenario fails.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mpdee/fleetprobe/internal/config"
	"github.com/mpdee/fleetprobe/internal/relay"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/runner"
	"github.com/mpdee/fleetprobe/internal/scenario"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("runner config loaded",
		"base_url", cfg.BaseURL,
		"suite_dir", cfg.SuiteDir,
		"result_dir", cfg.ResultDir,
		"headless", cfg.Headless,
		"log_level", cfg.LogLevel,
	)

	catalog, err := scenario.LoadSuiteDir(cfg.SuiteDir)
	if err != nil {
		slog.Error("failed to load scenario suite", "dir", cfg.SuiteDir, "error", err)
		os.Exit(1)
	}

	store, err := report.NewStore(cfg.ResultDir)
	if err != nil {
		slog.Error("failed to open result store", "dir", cfg.ResultDir, "error", err)
		os.Exit(1)
	}

	events := report.NewEventLog(cfg.ResultDir, 1024, 25)
	defer func() {
		if err := events.Close(); err != nil {
			slog.Debug("event log close failed", "error", err)
		}
	}()

	svc := runner.NewService(cfg, catalog, store, events, relay.NewBroker(),
		runner.DefaultSessionFactory(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scenario IDs may be passed as arguments; no arguments runs the suite.
	ids := os.Args[1:]

	sum, err := svc.RunSuite(ctx, ids, "cli")
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	if !sum.Ok() {
		slog.Error("suite failed", "run_id", sum.RunID, "passed", sum.Passed, "failed", sum.Failed)
		os.Exit(1)
	}
	slog.Info("suite passed", "run_id", sum.RunID, "scenarios", sum.Total)
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
