// Package runner orchestrates suite runs: session lifecycle per scenario,
// execution, event publishing, and result persistence.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpdee/fleetprobe/internal/config"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/notify"
	"github.com/mpdee/fleetprobe/internal/relay"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/scenario"
	"github.com/mpdee/fleetprobe/internal/session"
)

// Session is the per-scenario browser session as the runner sees it.
type Session interface {
	executor.Driver
	ID() string
	Release()
}

// Sessions owns the browser for one run and hands out sessions.
type Sessions interface {
	Start(ctx context.Context) error
	Acquire(ctx context.Context) (Session, error)
	Stop()
}

// SessionFactory creates a fresh Sessions per run.
type SessionFactory func() Sessions

// DefaultSessionFactory wires the chromedp-backed session manager.
func DefaultSessionFactory(cfg *config.Config) SessionFactory {
	return func() Sessions {
		return managerSessions{m: session.NewManager(cfg)}
	}
}

type managerSessions struct {
	m *session.Manager
}

func (s managerSessions) Start(ctx context.Context) error { return s.m.Start(ctx) }

func (s managerSessions) Acquire(ctx context.Context) (Session, error) {
	sess, err := s.m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s managerSessions) Stop() { s.m.Stop() }

// Service runs scenario suites. One run is active at a time; concurrent run
// requests are rejected so UI writes against the shared application never
// interleave.
type Service struct {
	cfg         *config.Config
	catalog     *scenario.Catalog
	store       *report.Store
	events      *report.EventLog
	broker      *relay.Broker
	newSessions SessionFactory
	timeouts    executor.Timeouts

	mu        sync.Mutex
	activeRun string
}

// NewService creates the runner service.
func NewService(cfg *config.Config, catalog *scenario.Catalog, store *report.Store,
	events *report.EventLog, broker *relay.Broker, factory SessionFactory) *Service {
	return &Service{
		cfg:         cfg,
		catalog:     catalog,
		store:       store,
		events:      events,
		broker:      broker,
		newSessions: factory,
		timeouts:    timeoutsFromConfig(cfg),
	}
}

func timeoutsFromConfig(cfg *config.Config) executor.Timeouts {
	return executor.Timeouts{
		Step:     time.Duration(cfg.StepTimeoutMS) * time.Millisecond,
		Navigate: time.Duration(cfg.NavTimeoutMS) * time.Millisecond,
		LoadWait: time.Duration(cfg.LoadWaitMS) * time.Millisecond,
		Assert:   time.Duration(cfg.AssertTimeoutMS) * time.Millisecond,
		Settle:   time.Duration(cfg.SettleMS) * time.Millisecond,
	}
}

// ListScenarios returns all catalog scenarios in suite order.
func (s *Service) ListScenarios() []scenario.Scenario {
	return s.catalog.All()
}

// GetScenario returns one scenario by ID.
func (s *Service) GetScenario(id string) (scenario.Scenario, error) {
	sc, ok := s.catalog.Get(id)
	if !ok {
		return scenario.Scenario{}, executor.NewError(executor.CodeScenarioNotFound,
			fmt.Sprintf("scenario not found: %s", id), nil)
	}
	return sc, nil
}

// ActiveRun returns the currently executing run ID, if any.
func (s *Service) ActiveRun() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRun, s.activeRun != ""
}

// RunSuite executes the given scenario IDs (all scenarios when empty)
// synchronously and returns the summary. Used by the CLI and the scheduler.
func (s *Service) RunSuite(ctx context.Context, ids []string, trigger string) (report.RunSummary, error) {
	scenarios, err := s.resolve(ids)
	if err != nil {
		return report.RunSummary{}, err
	}

	runID := uuid.NewString()
	if err := s.begin(runID); err != nil {
		return report.RunSummary{}, err
	}
	defer s.end()

	return s.execute(ctx, runID, scenarios, trigger)
}

// StartRun begins an asynchronous run and returns immediately with the run
// ID. The summary becomes retrievable once the run finishes.
func (s *Service) StartRun(ctx context.Context, ids []string) (report.RunSummary, error) {
	scenarios, err := s.resolve(ids)
	if err != nil {
		return report.RunSummary{}, err
	}

	runID := uuid.NewString()
	if err := s.begin(runID); err != nil {
		return report.RunSummary{}, err
	}

	go func() {
		defer s.end()
		if _, err := s.execute(context.Background(), runID, scenarios, "api"); err != nil {
			slog.Error("run failed", "run_id", runID, "error", err)
		}
	}()

	return report.RunSummary{
		RunID:     runID,
		Trigger:   "api",
		StartedAt: time.Now().UTC(),
		Total:     len(scenarios),
	}, nil
}

// ListRuns returns stored run summaries, newest first.
func (s *Service) ListRuns() ([]report.RunSummary, error) {
	return s.store.List()
}

// GetRun returns one stored run summary.
func (s *Service) GetRun(id string) (report.RunSummary, error) {
	sum, err := s.store.Get(id)
	if err != nil {
		return report.RunSummary{}, executor.NewError(executor.CodeRunNotFound, err.Error(), nil)
	}
	return sum, nil
}

// DeleteRun removes one stored run summary.
func (s *Service) DeleteRun(id string) error {
	if err := s.store.Delete(id); err != nil {
		return executor.NewError(executor.CodeRunNotFound, err.Error(), nil)
	}
	return nil
}

func (s *Service) resolve(ids []string) ([]scenario.Scenario, error) {
	if len(ids) == 0 {
		return s.catalog.All(), nil
	}
	out := make([]scenario.Scenario, 0, len(ids))
	for _, id := range ids {
		sc, ok := s.catalog.Get(id)
		if !ok {
			return nil, executor.NewError(executor.CodeScenarioNotFound,
				fmt.Sprintf("scenario not found: %s", id), nil)
		}
		out = append(out, sc)
	}
	return out, nil
}

func (s *Service) begin(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeRun != "" {
		return executor.NewError(executor.CodeRunActive,
			fmt.Sprintf("run %s is still active", s.activeRun), nil)
	}
	s.activeRun = runID
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.activeRun = ""
	s.mu.Unlock()
}

// runEvent is published on the run feed at run start and finish.
type runEvent struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
	Passed int    `json:"passed,omitempty"`
	Failed int    `json:"failed,omitempty"`
}

func (s *Service) execute(ctx context.Context, runID string, scenarios []scenario.Scenario, trigger string) (report.RunSummary, error) {
	sum := report.RunSummary{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
		Total:     len(scenarios),
	}
	slog.Info("run started", "run_id", runID, "trigger", trigger, "scenarios", len(scenarios))
	s.publish(relay.FeedRun, runEvent{RunID: runID, Status: "started", Total: sum.Total})

	sessions := s.newSessions()
	if err := sessions.Start(ctx); err != nil {
		s.publish(relay.FeedRun, runEvent{RunID: runID, Status: "aborted", Total: sum.Total})
		return sum, fmt.Errorf("start sessions for run %s: %w", runID, err)
	}
	defer sessions.Stop()

	vars := s.cfg.Placeholders()
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		res := s.runScenario(ctx, runID, sessions, sc.Expand(vars))
		sum.Results = append(sum.Results, res)
		if res.Verdict == scenario.VerdictPass {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}
	sum.FinishedAt = time.Now().UTC()

	if err := s.store.Save(sum); err != nil {
		slog.Error("failed to save run summary", "run_id", runID, "error", err)
	}
	s.publish(relay.FeedRun, runEvent{
		RunID: runID, Status: "finished", Total: sum.Total,
		Passed: sum.Passed, Failed: sum.Failed,
	})
	slog.Info("run finished", "run_id", runID,
		"passed", sum.Passed, "failed", sum.Failed, "duration_ms", sum.FinishedAt.Sub(sum.StartedAt).Milliseconds())

	s.sendNotification(ctx, sum)
	return sum, nil
}

func (s *Service) runScenario(ctx context.Context, runID string, sessions Sessions, sc scenario.Scenario) scenario.Result {
	started := time.Now().UTC()

	sess, err := sessions.Acquire(ctx)
	if err != nil {
		slog.Error("session acquire failed", "run_id", runID, "scenario", sc.ID, "error", err)
		res := scenario.Result{
			ScenarioID: sc.ID,
			Name:       sc.Name,
			Verdict:    scenario.VerdictFail,
			Diagnostic: fmt.Sprintf("session unavailable: %v", err),
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		}
		s.recordVerdict(runID, res)
		return res
	}
	defer sess.Release()

	exec := executor.New(
		executor.WithTimeouts(s.timeouts),
		executor.WithStepHook(func(evt executor.StepEvent) {
			s.publish(relay.FeedStep, evt)
			s.logEvent(struct {
				RunID string `json:"run_id"`
				executor.StepEvent
			}{runID, evt})
		}),
	)

	slog.Info("scenario started", "run_id", runID, "scenario", sc.ID, "session_id", sess.ID())
	res := exec.Run(ctx, sess, sc)
	slog.Info("scenario finished", "run_id", runID, "scenario", sc.ID,
		"verdict", res.Verdict, "duration_ms", res.DurationMS())

	s.recordVerdict(runID, res)
	return res
}

// verdictEvent is published on the verdict feed once per scenario.
type verdictEvent struct {
	RunID      string           `json:"run_id"`
	ScenarioID string           `json:"scenario_id"`
	Verdict    scenario.Verdict `json:"verdict"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	DurationMS int64            `json:"duration_ms"`
}

func (s *Service) recordVerdict(runID string, res scenario.Result) {
	evt := verdictEvent{
		RunID:      runID,
		ScenarioID: res.ScenarioID,
		Verdict:    res.Verdict,
		Diagnostic: res.Diagnostic,
		DurationMS: res.DurationMS(),
	}
	s.publish(relay.FeedVerdict, evt)
	s.logEvent(evt)
}

func (s *Service) publish(feed string, payload any) {
	if s.broker != nil {
		s.broker.PublishJSON(feed, payload)
	}
}

func (s *Service) logEvent(record any) {
	if s.events == nil {
		return
	}
	if err := s.events.Write(record); err != nil {
		slog.Debug("event log write failed", "error", err)
	}
}

func (s *Service) sendNotification(ctx context.Context, sum report.RunSummary) {
	if s.cfg.NotifyEndpoint == "" {
		return
	}
	if err := notify.Send(ctx, nil, s.cfg.NotifyEndpoint, notify.RunMessage(sum)); err != nil {
		slog.Warn("run notification failed", "endpoint", s.cfg.NotifyEndpoint, "error", err)
	}
}
