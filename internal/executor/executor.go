package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpdee/fleetprobe/internal/scenario"
)

// Driver abstracts the browser session the executor drives. Implemented by
// session.Session; tests substitute fakes.
type Driver interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitFramesLoaded(ctx context.Context, timeout time.Duration) error
	Fill(ctx context.Context, loc scenario.Locator, text string, timeout time.Duration) error
	Click(ctx context.Context, loc scenario.Locator, timeout time.Duration) error
	AssertVisible(ctx context.Context, loc scenario.Locator, timeout time.Duration) error
	Settle(ctx context.Context, d time.Duration) error
}

// Timeouts carries the per-kind default timeouts applied when a step does not
// set its own.
type Timeouts struct {
	Step     time.Duration
	Navigate time.Duration
	LoadWait time.Duration
	Assert   time.Duration
	Settle   time.Duration
}

// DefaultTimeouts mirror the timing contract of the original harness scripts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Step:     5 * time.Second,
		Navigate: 10 * time.Second,
		LoadWait: 3 * time.Second,
		Assert:   30 * time.Second,
		Settle:   0,
	}
}

// StepEvent is emitted once per executed step.
type StepEvent struct {
	ScenarioID string              `json:"scenario_id"`
	Index      int                 `json:"index"`
	Kind       scenario.StepKind   `json:"kind"`
	Note       string              `json:"note,omitempty"`
	Status     scenario.StepStatus `json:"status"`
	Error      string              `json:"error,omitempty"`
}

// Executor runs one scenario's steps strictly in order against a driver.
//
// Policy: best-effort steps that fail with a recoverable load-wait timeout
// are logged and skipped; an assertion failure ends the scenario immediately
// with a Fail verdict carrying the scenario's fixed diagnostic; any other
// step failure ends the scenario with a Fail verdict describing the step.
// There are no retries.
type Executor struct {
	timeouts Timeouts
	onStep   func(StepEvent)
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeouts overrides the default timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(e *Executor) { e.timeouts = t }
}

// WithStepHook registers a callback invoked after every executed step.
func WithStepHook(fn func(StepEvent)) Option {
	return func(e *Executor) { e.onStep = fn }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{timeouts: DefaultTimeouts()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the scenario against drv and returns its result. The returned
// result always has a verdict; errors never escape to the caller.
func (e *Executor) Run(ctx context.Context, drv Driver, sc scenario.Scenario) scenario.Result {
	res := scenario.Result{
		ScenarioID: sc.ID,
		Name:       sc.Name,
		Verdict:    scenario.VerdictPass,
		StartedAt:  time.Now().UTC(),
	}

	for i, st := range sc.Steps {
		stepStart := time.Now()
		err := e.runStep(ctx, drv, st)

		sr := scenario.StepResult{
			Index:      i,
			Kind:       st.Kind,
			Note:       st.Note,
			Status:     scenario.StepOK,
			DurationMS: time.Since(stepStart).Milliseconds(),
		}

		if err != nil {
			if recoverable(st, err) {
				sr.Status = scenario.StepSkipped
				sr.Error = err.Error()
				slog.Warn("best-effort step timed out, continuing",
					"scenario", sc.ID, "step", i, "kind", st.Kind, "error", err)
			} else {
				sr.Status = scenario.StepFailed
				sr.Error = err.Error()
				res.Verdict = scenario.VerdictFail
				res.Diagnostic = diagnostic(sc, i, st, err)
				slog.Info("scenario step failed",
					"scenario", sc.ID, "step", i, "kind", st.Kind, "error", err)
			}
		}

		res.Steps = append(res.Steps, sr)
		e.emit(StepEvent{
			ScenarioID: sc.ID,
			Index:      i,
			Kind:       st.Kind,
			Note:       st.Note,
			Status:     sr.Status,
			Error:      sr.Error,
		})

		if sr.Status == scenario.StepFailed {
			break
		}
	}

	res.FinishedAt = time.Now().UTC()
	return res
}

func (e *Executor) runStep(ctx context.Context, drv Driver, st scenario.Step) error {
	switch st.Kind {
	case scenario.StepNavigate:
		return drv.Navigate(ctx, st.Text, st.Timeout(e.timeouts.Navigate))
	case scenario.StepWaitForLoad:
		return drv.WaitFramesLoaded(ctx, st.Timeout(e.timeouts.LoadWait))
	case scenario.StepFill:
		if err := drv.Settle(ctx, e.timeouts.Settle); err != nil {
			return err
		}
		return drv.Fill(ctx, st.Locator, st.Text, st.Timeout(e.timeouts.Step))
	case scenario.StepClick:
		if err := drv.Settle(ctx, e.timeouts.Settle); err != nil {
			return err
		}
		return drv.Click(ctx, st.Locator, st.Timeout(e.timeouts.Step))
	case scenario.StepAssertVisible:
		return drv.AssertVisible(ctx, st.Locator, st.Timeout(e.timeouts.Assert))
	case scenario.StepSettle:
		return drv.Settle(ctx, st.Timeout(e.timeouts.Settle))
	default:
		return NewError(CodeValidation, fmt.Sprintf("unknown step kind %q", st.Kind), nil)
	}
}

func (e *Executor) emit(evt StepEvent) {
	if e.onStep != nil {
		e.onStep(evt)
	}
}

// recoverable reports whether a failed step may be skipped instead of
// failing the scenario. Only best-effort steps with a load-wait timeout
// qualify; assertions never do.
func recoverable(st scenario.Step, err error) bool {
	if !st.BestEffort || st.Kind == scenario.StepAssertVisible {
		return false
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code == CodeLoadWaitTimeout || coded.Code == CodeNavigationTimeout
	}
	return false
}

// diagnostic picks the failure message surfaced to the harness: the
// scenario's fixed diagnostic for assertion failures, a step description
// otherwise.
func diagnostic(sc scenario.Scenario, idx int, st scenario.Step, err error) string {
	var coded *CodedError
	if errors.As(err, &coded) && coded.Code == CodeAssertionFailed && sc.Diagnostic != "" {
		return sc.Diagnostic
	}
	note := st.Note
	if note == "" {
		note = string(st.Kind)
	}
	return fmt.Sprintf("step %d (%s) failed: %v", idx, note, err)
}
