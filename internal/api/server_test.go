package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

type stubService struct {
	active   string
	startErr error
}

func (s *stubService) ListScenarios() []scenario.Scenario {
	return []scenario.Scenario{{ID: "auth-employee-login", Name: "Employee login"}}
}

func (s *stubService) GetScenario(id string) (scenario.Scenario, error) {
	if id != "auth-employee-login" {
		return scenario.Scenario{}, executor.NewError(executor.CodeScenarioNotFound, "scenario not found: "+id, nil)
	}
	return scenario.Scenario{ID: id, Name: "Employee login"}, nil
}

func (s *stubService) StartRun(ctx context.Context, ids []string) (report.RunSummary, error) {
	if s.startErr != nil {
		return report.RunSummary{}, s.startErr
	}
	return report.RunSummary{RunID: "8e0ad1de-9c1f-43a1-b800-1f2b3c4d5e6f", Total: 1}, nil
}

func (s *stubService) ListRuns() ([]report.RunSummary, error) {
	return []report.RunSummary{}, nil
}

func (s *stubService) GetRun(id string) (report.RunSummary, error) {
	return report.RunSummary{}, executor.NewError(executor.CodeRunNotFound, "run not found: "+id, nil)
}

func (s *stubService) DeleteRun(id string) error {
	return executor.NewError(executor.CodeRunNotFound, "run not found: "+id, nil)
}

func (s *stubService) ActiveRun() (string, bool) {
	return s.active, s.active != ""
}

func TestDocsDarkMode(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}
}

func TestHealthReportsActiveRun(t *testing.T) {
	h := NewServer(&stubService{active: "8e0ad1de-9c1f-43a1-b800-1f2b3c4d5e6f"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Status    string `json:"status"`
		ActiveRun string `json:"active_run"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Status)
	}
	if body.ActiveRun != "8e0ad1de-9c1f-43a1-b800-1f2b3c4d5e6f" {
		t.Fatalf("active_run = %q", body.ActiveRun)
	}
}

func TestListScenarios(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "auth-employee-login") {
		t.Fatalf("body = %s; want scenario id", w.Body.String())
	}
}

func TestGetScenarioNotFound(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios/missing", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestStartRunAccepted(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{"scenarios":["auth-employee-login"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusAccepted, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "8e0ad1de-9c1f-43a1-b800-1f2b3c4d5e6f") {
		t.Fatalf("body = %s; want run id", w.Body.String())
	}
}

func TestStartRunConflict(t *testing.T) {
	svc := &stubService{startErr: executor.NewError(executor.CodeRunActive, "run busy is still active", nil)}
	h := NewServer(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusConflict, w.Body.String())
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/8e0ad1de-9c1f-43a1-b800-1f2b3c4d5e6f", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
