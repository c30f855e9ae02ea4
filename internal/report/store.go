// Package report persists run summaries and the per-step event log.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/mpdee/fleetprobe/internal/scenario"
)

var runIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// RunSummary aggregates the results of one suite run.
type RunSummary struct {
	RunID      string            `json:"run_id"`
	Trigger    string            `json:"trigger,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Total      int               `json:"total"`
	Passed     int               `json:"passed"`
	Failed     int               `json:"failed"`
	Results    []scenario.Result `json:"results"`
}

// Ok reports whether every scenario in the run passed.
func (r RunSummary) Ok() bool {
	return r.Failed == 0 && r.Total > 0
}

// Store manages run summary files on disk, one JSON file per run.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) validateID(id string) error {
	if !runIDRe.MatchString(id) {
		return fmt.Errorf("invalid run id: %q", id)
	}
	return nil
}

// Save writes a run summary.
func (s *Store) Save(sum RunSummary) error {
	if err := s.validateID(sum.RunID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("report store: marshal run: %w", err)
	}
	path := filepath.Join(s.dir, sum.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report store: write run: %w", err)
	}
	return nil
}

// Get reads one run summary by ID.
func (s *Store) Get(id string) (RunSummary, error) {
	if err := s.validateID(id); err != nil {
		return RunSummary{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return RunSummary{}, fmt.Errorf("run not found: %s", id)
		}
		return RunSummary{}, fmt.Errorf("report store: read run: %w", err)
	}

	var sum RunSummary
	if err := json.Unmarshal(data, &sum); err != nil {
		return RunSummary{}, fmt.Errorf("report store: decode run %s: %w", id, err)
	}
	return sum, nil
}

// List returns all stored run summaries, newest first.
func (s *Store) List() ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("report store: read dir: %w", err)
	}

	var out []RunSummary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		if !runIDRe.MatchString(id) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var sum RunSummary
		if err := json.Unmarshal(data, &sum); err != nil {
			continue
		}
		out = append(out, sum)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// Delete removes one run summary.
func (s *Store) Delete(id string) error {
	if err := s.validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("run not found: %s", id)
		}
		return fmt.Errorf("report store: delete run: %w", err)
	}
	return nil
}
