// Package session owns browser session lifecycle: one Chromium process per
// suite run, one isolated tab context per scenario.
package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/mpdee/fleetprobe/internal/browser"
	"github.com/mpdee/fleetprobe/internal/config"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/stability"
)

// Manager launches the browser for a run and hands out isolated sessions.
type Manager struct {
	cfg         *config.Config
	launcher    *browser.Launcher
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewManager creates a session manager for one suite run.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Start launches the browser process and connects the chromedp allocator.
func (m *Manager) Start(ctx context.Context) error {
	m.launcher = browser.NewLauncher(browser.Config{
		CDPAddress: m.cfg.CDPAddress,
		CDPPort:    m.cfg.CDPPort,
		Headless:   m.cfg.Headless,
		WindowSize: m.cfg.WindowSize,
	})
	if err := m.launcher.Launch(ctx); err != nil {
		return executor.NewError(executor.CodeSessionUnavailable, "launch browser", err)
	}

	m.allocCtx, m.allocCancel = chromedp.NewRemoteAllocator(context.Background(), m.launcher.CDPURL())

	// Verify the allocator can actually talk to the browser before any
	// scenario tries to.
	probeCtx, probeCancel := chromedp.NewContext(m.allocCtx)
	defer probeCancel()
	if err := chromedp.Run(probeCtx); err != nil {
		m.Stop()
		return executor.NewError(executor.CodeSessionUnavailable, "connect to browser", err)
	}

	slog.Info("session manager started", "cdp_url", m.launcher.CDPURL())
	return nil
}

// Acquire opens a fresh tab context for one scenario.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if m.allocCtx == nil {
		return nil, executor.NewError(executor.CodeSessionUnavailable, "session manager not started", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(m.allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, executor.NewError(executor.CodeSessionUnavailable, "open browser tab", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		ctx:    tabCtx,
		cancel: tabCancel,
		waiter: stability.Default(),
	}

	// Surface page-side errors in the run log; scenarios asserting on the
	// application's error handling are much easier to debug with them.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			slog.Debug("page exception", "session_id", s.id, "detail", e.ExceptionDetails.Text)
		case *runtime.EventConsoleAPICalled:
			if e.Type == runtime.APITypeError {
				slog.Debug("page console error", "session_id", s.id, "args", consolePreview(e.Args))
			}
		}
	})

	slog.Debug("session acquired", "session_id", s.id)
	return s, nil
}

// consolePreview flattens console call arguments into a short loggable string.
func consolePreview(args []*runtime.RemoteObject) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case arg == nil:
			b.WriteString("<nil>")
		case len(arg.Value) > 0:
			b.Write(arg.Value)
		case arg.Description != "":
			b.WriteString(arg.Description)
		default:
			b.WriteString(string(arg.Type))
		}
		if b.Len() > 300 {
			return b.String()[:300] + "..."
		}
	}
	return b.String()
}

// Stop tears down the allocator and the browser process. Safe to call after
// a failed Start.
func (m *Manager) Stop() {
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
		m.allocCtx = nil
	}
	if m.launcher != nil {
		m.launcher.Stop()
		m.launcher = nil
	}
}
