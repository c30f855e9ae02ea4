package scenario

import (
	"testing"
	"time"
)

func validScenario() Scenario {
	return Scenario{
		ID:       "sample",
		Name:     "Sample",
		EntryURL: "http://localhost:3000/fleet",
		Steps: []Step{
			{Kind: StepNavigate, Text: "http://localhost:3000/fleet"},
			{Kind: StepWaitForLoad, BestEffort: true},
			{Kind: StepAssertVisible, Locator: Locator{Kind: ByText, Value: "Dashboard"}},
		},
		Diagnostic: "Dashboard did not appear.",
	}
}

func TestValidateAcceptsWellFormedScenario(t *testing.T) {
	if err := validScenario().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsMissingID(t *testing.T) {
	sc := validScenario()
	sc.ID = "  "
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestValidateRejectsEmptySteps(t *testing.T) {
	sc := validScenario()
	sc.Steps = nil
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for empty steps")
	}
}

func TestValidateRejectsFillWithoutLocator(t *testing.T) {
	sc := validScenario()
	sc.Steps = append(sc.Steps, Step{Kind: StepFill, Text: "value"})
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for fill without locator")
	}
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	sc := validScenario()
	sc.Steps = append(sc.Steps, Step{Kind: StepKind("hover")})
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for unknown step kind")
	}
}

func TestExpandReplacesPlaceholders(t *testing.T) {
	sc := Scenario{
		ID:       "login",
		EntryURL: "${base_url}",
		Steps: []Step{
			{Kind: StepNavigate, Text: "${base_url}"},
			{Kind: StepFill, Locator: Locator{Kind: ByCSS, Value: "input[name=email]"}, Text: "${manager.email}"},
		},
	}

	out := sc.Expand(map[string]string{
		"base_url":      "http://localhost:3000/fleet",
		"manager.email": "admin@mpdee.co.uk",
	})

	if out.EntryURL != "http://localhost:3000/fleet" {
		t.Fatalf("entry_url = %q", out.EntryURL)
	}
	if out.Steps[0].Text != "http://localhost:3000/fleet" {
		t.Fatalf("step 0 text = %q", out.Steps[0].Text)
	}
	if out.Steps[1].Text != "admin@mpdee.co.uk" {
		t.Fatalf("step 1 text = %q", out.Steps[1].Text)
	}

	// the original scenario is untouched
	if sc.Steps[0].Text != "${base_url}" {
		t.Fatalf("original mutated: %q", sc.Steps[0].Text)
	}
}

func TestExpandLeavesUnknownPlaceholders(t *testing.T) {
	sc := Scenario{ID: "x", EntryURL: "${mystery}", Steps: []Step{{Kind: StepWaitForLoad}}}
	out := sc.Expand(map[string]string{"base_url": "http://localhost"})
	if out.EntryURL != "${mystery}" {
		t.Fatalf("entry_url = %q; want placeholder untouched", out.EntryURL)
	}
}

func TestStepTimeoutFallsBack(t *testing.T) {
	st := Step{Kind: StepClick}
	if got := st.Timeout(5 * time.Second); got != 5*time.Second {
		t.Fatalf("Timeout() = %v; want default", got)
	}

	st.TimeoutMS = 1500
	if got := st.Timeout(5 * time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Timeout() = %v; want 1.5s", got)
	}
}

func TestResultDurationMS(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r := Result{StartedAt: start, FinishedAt: start.Add(2300 * time.Millisecond)}
	if got := r.DurationMS(); got != 2300 {
		t.Fatalf("DurationMS() = %d; want 2300", got)
	}
}
