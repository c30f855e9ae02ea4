package scenario

import (
	"fmt"
	"strings"
	"time"
)

// StepKind identifies one of the supported step variants.
type StepKind string

const (
	StepNavigate      StepKind = "navigate"
	StepWaitForLoad   StepKind = "wait_for_load"
	StepFill          StepKind = "fill"
	StepClick         StepKind = "click"
	StepAssertVisible StepKind = "assert_visible"
	StepSettle        StepKind = "settle"
)

// LocatorKind selects the locator strategy for a step target.
type LocatorKind string

const (
	ByCSS   LocatorKind = "css"
	ByXPath LocatorKind = "xpath"
	ByText  LocatorKind = "text"
)

// Locator identifies a page element.
type Locator struct {
	Kind  LocatorKind `yaml:"kind" json:"kind"`
	Value string      `yaml:"value" json:"value"`
}

// IsZero reports whether no locator was provided.
func (l Locator) IsZero() bool {
	return l.Value == ""
}

func (l Locator) String() string {
	return string(l.Kind) + "=" + l.Value
}

// Step is one atomic UI action or wait within a scenario. Immutable once
// defined; the executor never mutates step fields.
type Step struct {
	Kind       StepKind `yaml:"kind" json:"kind"`
	Locator    Locator  `yaml:"locator,omitempty" json:"locator,omitempty"`
	Text       string   `yaml:"text,omitempty" json:"text,omitempty"`
	TimeoutMS  int      `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
	BestEffort bool     `yaml:"best_effort,omitempty" json:"best_effort,omitempty"`
	Note       string   `yaml:"note,omitempty" json:"note,omitempty"`
}

// Timeout returns the step timeout, falling back to def when unset.
func (s Step) Timeout(def time.Duration) time.Duration {
	if s.TimeoutMS > 0 {
		return time.Duration(s.TimeoutMS) * time.Millisecond
	}
	return def
}

// Scenario is one independent end-to-end UI test case: an ordered list of
// steps against an entry URL, with a fixed diagnostic used when an assertion
// fails.
type Scenario struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	EntryURL    string `yaml:"entry_url" json:"entry_url"`
	Steps       []Step `yaml:"steps" json:"steps"`
	Diagnostic  string `yaml:"diagnostic,omitempty" json:"diagnostic,omitempty"`
}

// Validate checks structural requirements before a scenario is accepted into
// a catalog.
func (sc Scenario) Validate() error {
	if strings.TrimSpace(sc.ID) == "" {
		return fmt.Errorf("scenario: missing id")
	}
	if strings.TrimSpace(sc.EntryURL) == "" {
		return fmt.Errorf("scenario %s: missing entry_url", sc.ID)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %s: no steps", sc.ID)
	}
	for i, st := range sc.Steps {
		switch st.Kind {
		case StepNavigate:
			if st.Text == "" {
				return fmt.Errorf("scenario %s step %d: navigate requires a url in text", sc.ID, i)
			}
		case StepFill:
			if st.Locator.IsZero() {
				return fmt.Errorf("scenario %s step %d: fill requires a locator", sc.ID, i)
			}
		case StepClick, StepAssertVisible:
			if st.Locator.IsZero() {
				return fmt.Errorf("scenario %s step %d: %s requires a locator", sc.ID, i, st.Kind)
			}
		case StepWaitForLoad, StepSettle:
			// No target required.
		default:
			return fmt.Errorf("scenario %s step %d: unknown kind %q", sc.ID, i, st.Kind)
		}
	}
	return nil
}

// Expand returns a copy of the scenario with ${name} placeholders replaced in
// the entry URL and in every step's text and locator value. Unknown
// placeholders are left untouched.
func (sc Scenario) Expand(vars map[string]string) Scenario {
	out := sc
	out.EntryURL = expand(sc.EntryURL, vars)
	out.Steps = make([]Step, len(sc.Steps))
	for i, st := range sc.Steps {
		st.Text = expand(st.Text, vars)
		st.Locator.Value = expand(st.Locator.Value, vars)
		out.Steps[i] = st
	}
	return out
}

func expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	for k, v := range vars {
		s = strings.ReplaceAll(s, "${"+k+"}", v)
	}
	return s
}

// Verdict is the final pass/fail outcome of a scenario.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// StepStatus records how a single step ended.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	Index      int        `json:"index"`
	Kind       StepKind   `json:"kind"`
	Note       string     `json:"note,omitempty"`
	Status     StepStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// Result is the full outcome of one scenario execution.
type Result struct {
	ScenarioID string       `json:"scenario_id"`
	Name       string       `json:"name,omitempty"`
	Verdict    Verdict      `json:"verdict"`
	Diagnostic string       `json:"diagnostic,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
}

// DurationMS returns the wall-clock duration of the scenario run.
func (r Result) DurationMS() int64 {
	return r.FinishedAt.Sub(r.StartedAt).Milliseconds()
}
