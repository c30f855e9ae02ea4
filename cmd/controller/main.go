// Command controller runs the HTTP API daemon: scenario catalog, run
// control, stored results, live event relay, and the optional cron schedule.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mpdee/fleetprobe/internal/api"
	"github.com/mpdee/fleetprobe/internal/config"
	"github.com/mpdee/fleetprobe/internal/netutil"
	"github.com/mpdee/fleetprobe/internal/relay"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/runner"
	"github.com/mpdee/fleetprobe/internal/scenario"
	"github.com/mpdee/fleetprobe/internal/schedule"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.LoadController()
	if err != nil {
		slog.Error("failed to load controller config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.Runner.LogLevel, cfg.Runner.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("controller config loaded",
		"bind_addr", cfg.BindAddr,
		"base_url", cfg.Runner.BaseURL,
		"suite_dir", cfg.Runner.SuiteDir,
		"result_dir", cfg.Runner.ResultDir,
		"schedule", cfg.Schedule,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.Runner.LogLevel,
		"log_file", cfg.Runner.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	catalog, err := scenario.LoadSuiteDir(cfg.Runner.SuiteDir)
	if err != nil {
		slog.Error("failed to load scenario suite", "dir", cfg.Runner.SuiteDir, "error", err)
		os.Exit(1)
	}
	slog.Info("scenario suite loaded", "scenarios", catalog.Len())

	store, err := report.NewStore(cfg.Runner.ResultDir)
	if err != nil {
		slog.Error("failed to open result store", "dir", cfg.Runner.ResultDir, "error", err)
		os.Exit(1)
	}

	events := report.NewEventLog(cfg.Runner.ResultDir, 1024, 25)
	defer func() {
		if err := events.Close(); err != nil {
			slog.Debug("event log close failed", "error", err)
		}
	}()

	broker := relay.NewBroker()
	svc := runner.NewService(cfg.Runner, catalog, store, events, broker,
		runner.DefaultSessionFactory(cfg.Runner))

	if cfg.Schedule != "" {
		sched, err := schedule.New(cfg.Schedule, svc)
		if err != nil {
			slog.Error("failed to build run scheduler", "schedule", cfg.Schedule, "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	h := api.NewServer(svc, broker)
	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("controller listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("controller server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("controller shutdown failed", "error", err)
	}
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
