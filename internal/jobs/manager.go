// Package jobs tracks the lifecycle of search runs.
package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// State represents the current state of a run
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Done reports whether s is a terminal state.
func (s State) Done() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Run is one search invocation.
type Run struct {
	ID         string     `json:"id"`
	Strategy   string     `json:"strategy"`
	Target     int64      `json:"target"`
	State      State      `json:"state"`
	Generation int        `json:"generation"`
	Evaluated  int64      `json:"evaluated"`
	Found      bool       `json:"found"`
	Value      uint32     `json:"value,omitempty"`
	Formula    int        `json:"formula,omitempty"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Elapsed returns the run time so far, or the total once finished.
func (r Run) Elapsed() time.Duration {
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// Manager is a concurrency-safe run registry.
type Manager struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewManager creates an empty Manager
func NewManager() *Manager {
	return &Manager{runs: make(map[string]*Run)}
}

// Create registers a pending run and returns a copy of it.
func (m *Manager) Create(strategy string, target int64) Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	run := &Run{
		ID:        uuid.New().String(),
		Strategy:  strategy,
		Target:    target,
		State:     StatePending,
		StartTime: time.Now(),
	}
	m.runs[run.ID] = run
	return *run
}

// Get returns a snapshot of the run with the given ID.
func (m *Manager) Get(id string) (Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return Run{}, false
	}
	return *run, true
}

// Update atomically applies fn to the run. Finished runs are not modified.
func (m *Manager) Update(id string, fn func(*Run)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if run.State.Done() {
		return fmt.Errorf("run %s already %s", id, run.State)
	}

	fn(run)
	return nil
}

// MarkRunning moves a pending run to running.
func (m *Manager) MarkRunning(id string) error {
	return m.Update(id, func(r *Run) {
		r.State = StateRunning
	})
}

// MarkCompleted records the outcome and ends the run.
func (m *Manager) MarkCompleted(id string, found bool, value uint32, formula int) error {
	endTime := time.Now()
	err := m.Update(id, func(r *Run) {
		r.State = StateCompleted
		r.Found = found
		r.Value = value
		r.Formula = formula
		r.EndTime = &endTime
	})
	if err == nil {
		slog.Info("Run completed", "run_id", id, "found", found)
	}
	return err
}

// MarkFailed ends the run with err.
func (m *Manager) MarkFailed(id string, err error) error {
	endTime := time.Now()
	updateErr := m.Update(id, func(r *Run) {
		r.State = StateFailed
		r.Error = err.Error()
		r.EndTime = &endTime
	})
	if updateErr == nil {
		slog.Error("Run failed", "run_id", id, "error", err)
	}
	return updateErr
}

// MarkCancelled ends the run as cancelled.
func (m *Manager) MarkCancelled(id string) error {
	endTime := time.Now()
	err := m.Update(id, func(r *Run) {
		r.State = StateCancelled
		r.EndTime = &endTime
	})
	if err == nil {
		slog.Info("Run cancelled", "run_id", id)
	}
	return err
}
