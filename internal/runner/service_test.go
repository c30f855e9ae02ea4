package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mpdee/fleetprobe/internal/config"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/relay"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

type fakeSession struct {
	id        string
	assertErr error
	released  int
}

func (s *fakeSession) ID() string { return s.id }
func (s *fakeSession) Release()   { s.released++ }

func (s *fakeSession) Navigate(context.Context, string, time.Duration) error { return nil }
func (s *fakeSession) WaitFramesLoaded(context.Context, time.Duration) error { return nil }
func (s *fakeSession) Fill(context.Context, scenario.Locator, string, time.Duration) error {
	return nil
}
func (s *fakeSession) Click(context.Context, scenario.Locator, time.Duration) error { return nil }
func (s *fakeSession) AssertVisible(context.Context, scenario.Locator, time.Duration) error {
	return s.assertErr
}
func (s *fakeSession) Settle(context.Context, time.Duration) error { return nil }

type fakeSessions struct {
	startErr  error
	assertErr map[int]error // acquire index -> assertion error
	acquired  []*fakeSession
	stopped   bool
}

func (f *fakeSessions) Start(context.Context) error { return f.startErr }

func (f *fakeSessions) Acquire(context.Context) (Session, error) {
	sess := &fakeSession{
		id:        "sess-" + string(rune('a'+len(f.acquired))),
		assertErr: f.assertErr[len(f.acquired)],
	}
	f.acquired = append(f.acquired, sess)
	return sess, nil
}

func (f *fakeSessions) Stop() { f.stopped = true }

func testScenario(id string) scenario.Scenario {
	return scenario.Scenario{
		ID:       id,
		Name:     id,
		EntryURL: "${base_url}",
		Steps: []scenario.Step{
			{Kind: scenario.StepNavigate, Text: "${base_url}"},
			{Kind: scenario.StepAssertVisible, Locator: scenario.Locator{Kind: scenario.ByText, Value: "Dashboard"}},
		},
		Diagnostic: "Expected dashboard content did not appear.",
	}
}

func newTestService(t *testing.T, sessions *fakeSessions) *Service {
	t.Helper()

	catalog, err := scenario.NewCatalog([]scenario.Scenario{
		testScenario("first"),
		testScenario("second"),
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	store, err := report.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	cfg := &config.Config{BaseURL: "http://localhost:3000/fleet", StepTimeoutMS: 100}
	return NewService(cfg, catalog, store, nil, relay.NewBroker(), func() Sessions { return sessions })
}

func TestRunSuiteAggregatesVerdicts(t *testing.T) {
	sessions := &fakeSessions{
		assertErr: map[int]error{
			1: executor.NewError(executor.CodeAssertionFailed, "element not visible", nil),
		},
	}
	svc := newTestService(t, sessions)

	sum, err := svc.RunSuite(context.Background(), nil, "test")
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}

	if sum.Total != 2 || sum.Passed != 1 || sum.Failed != 1 {
		t.Fatalf("summary = %d/%d/%d; want total=2 passed=1 failed=1",
			sum.Total, sum.Passed, sum.Failed)
	}
	if sum.Results[0].Verdict != scenario.VerdictPass {
		t.Fatalf("first verdict = %s; want pass", sum.Results[0].Verdict)
	}
	if sum.Results[1].Verdict != scenario.VerdictFail {
		t.Fatalf("second verdict = %s; want fail", sum.Results[1].Verdict)
	}
	if got, want := sum.Results[1].Diagnostic, "Expected dashboard content did not appear."; got != want {
		t.Fatalf("diagnostic = %q; want %q", got, want)
	}
	if !sessions.stopped {
		t.Fatal("sessions were not stopped after the run")
	}
}

func TestRunSuiteReleasesEachSessionOnce(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newTestService(t, sessions)

	if _, err := svc.RunSuite(context.Background(), nil, "test"); err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}

	if len(sessions.acquired) != 2 {
		t.Fatalf("acquired %d sessions; want 2", len(sessions.acquired))
	}
	for i, sess := range sessions.acquired {
		if sess.released != 1 {
			t.Fatalf("session %d released %d times; want 1", i, sess.released)
		}
	}
}

func TestRunSuitePersistsSummary(t *testing.T) {
	svc := newTestService(t, &fakeSessions{})

	sum, err := svc.RunSuite(context.Background(), []string{"first"}, "test")
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}

	stored, err := svc.GetRun(sum.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if stored.RunID != sum.RunID || stored.Total != 1 {
		t.Fatalf("stored run = %+v; want run %s with total 1", stored, sum.RunID)
	}
}

func TestRunSuiteRejectsUnknownScenario(t *testing.T) {
	svc := newTestService(t, &fakeSessions{})

	_, err := svc.RunSuite(context.Background(), []string{"missing"}, "test")
	var coded *executor.CodedError
	if !errors.As(err, &coded) || coded.Code != executor.CodeScenarioNotFound {
		t.Fatalf("error = %v; want code %s", err, executor.CodeScenarioNotFound)
	}
}

func TestRunSuiteRejectsConcurrentRun(t *testing.T) {
	svc := newTestService(t, &fakeSessions{})

	if err := svc.begin("busy-run"); err != nil {
		t.Fatalf("begin() error = %v", err)
	}
	defer svc.end()

	_, err := svc.RunSuite(context.Background(), nil, "test")
	var coded *executor.CodedError
	if !errors.As(err, &coded) || coded.Code != executor.CodeRunActive {
		t.Fatalf("error = %v; want code %s", err, executor.CodeRunActive)
	}
}

func TestRunSuiteSessionStartFailure(t *testing.T) {
	sessions := &fakeSessions{startErr: errors.New("browser not found")}
	svc := newTestService(t, sessions)

	if _, err := svc.RunSuite(context.Background(), nil, "test"); err == nil {
		t.Fatal("expected error when sessions cannot start")
	}

	// the active-run slot must be released so the next run can proceed
	if _, active := svc.ActiveRun(); active {
		t.Fatal("run still marked active after failed start")
	}
}
