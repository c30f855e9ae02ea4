// Package schedule triggers suite runs on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/robfig/cron/v3"
)

// Runner is the runner surface the scheduler drives.
type Runner interface {
	RunSuite(ctx context.Context, ids []string, trigger string) (report.RunSummary, error)
}

// Scheduler runs the full suite on a cron expression. Overlapping triggers
// are rejected by the runner's single-active-run guard and logged here.
type Scheduler struct {
	cron *cron.Cron
	svc  Runner
	spec string
}

// New validates the cron spec (standard 5-field format) and builds a
// scheduler. It does not start ticking until Start is called.
func New(spec string, svc Runner) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, svc: svc, spec: spec}
	if _, err := c.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("invalid run schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	slog.Info("run scheduler started", "schedule", s.spec)
	s.cron.Start()
}

// Stop halts the cron loop. A run already in flight keeps going.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("run scheduler stopped")
}

func (s *Scheduler) fire() {
	sum, err := s.svc.RunSuite(context.Background(), nil, "schedule")
	if err != nil {
		slog.Warn("scheduled run not started", "error", err)
		return
	}
	slog.Info("scheduled run finished",
		"run_id", sum.RunID, "passed", sum.Passed, "failed", sum.Failed)
}
