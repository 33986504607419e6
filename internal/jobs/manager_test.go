package jobs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManager_Create(t *testing.T) {
	m := NewManager()

	run := m.Create("random", 265407939)

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("Run ID should be a UUID, got %q", run.ID)
	}
	if run.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", run.State)
	}
	if run.Target != 265407939 || run.Strategy != "random" {
		t.Errorf("Run fields not set correctly: %+v", run)
	}
}

func TestManager_Get(t *testing.T) {
	m := NewManager()
	run := m.Create("random", 1)

	retrieved, exists := m.Get(run.ID)
	if !exists {
		t.Fatal("Run should exist")
	}
	if retrieved.ID != run.ID {
		t.Error("Retrieved wrong run")
	}

	if _, exists := m.Get("nonexistent"); exists {
		t.Error("Should not find nonexistent run")
	}
}

func TestManager_GetReturnsSnapshot(t *testing.T) {
	m := NewManager()
	run := m.Create("random", 1)

	snap, _ := m.Get(run.ID)
	snap.Generation = 99

	again, _ := m.Get(run.ID)
	if again.Generation != 0 {
		t.Errorf("Snapshot mutation leaked into manager: generation %d", again.Generation)
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager()
	run := m.Create("random", 1)

	err := m.Update(run.ID, func(r *Run) {
		r.Generation = 10
		r.Evaluated = 11000
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := m.Get(run.ID)
	if updated.Generation != 10 || updated.Evaluated != 11000 {
		t.Errorf("Update not applied: %+v", updated)
	}

	err = m.Update("nonexistent", func(r *Run) {})
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()
	run := m.Create("random", 1)

	if err := m.MarkRunning(run.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	running, _ := m.Get(run.ID)
	if running.State != StateRunning {
		t.Errorf("Expected running state, got %s", running.State)
	}

	if err := m.MarkCompleted(run.ID, true, 42, 0); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	done, _ := m.Get(run.ID)
	if done.State != StateCompleted || !done.Found || done.Value != 42 {
		t.Errorf("Unexpected completed run: %+v", done)
	}
	if done.EndTime == nil {
		t.Error("EndTime should be set")
	}

	// Terminal states are final.
	if err := m.MarkCancelled(run.ID); err == nil {
		t.Error("Cancelling a completed run should fail")
	}
}

func TestManager_FailedAndCancelled(t *testing.T) {
	m := NewManager()

	failed := m.Create("random", 1)
	if err := m.MarkFailed(failed.ID, errors.New("chunk 2: boom")); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Get(failed.ID)
	if got.State != StateFailed || got.Error != "chunk 2: boom" {
		t.Errorf("Unexpected failed run: %+v", got)
	}

	cancelled := m.Create("random", 1)
	if err := m.MarkCancelled(cancelled.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = m.Get(cancelled.ID)
	if got.State != StateCancelled || !got.State.Done() {
		t.Errorf("Unexpected cancelled run: %+v", got)
	}
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	m := NewManager()
	run := m.Create("random", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update(run.ID, func(r *Run) { r.Generation++ })
		}()
	}
	wg.Wait()

	got, _ := m.Get(run.ID)
	if got.Generation != 50 {
		t.Errorf("Expected generation 50, got %d", got.Generation)
	}
}

func TestRun_Elapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	finished := Run{StartTime: start, EndTime: &end}
	if got := finished.Elapsed(); got != 90*time.Second {
		t.Errorf("Expected 1m30s, got %s", got)
	}

	running := Run{StartTime: time.Now().Add(-time.Minute)}
	if got := running.Elapsed(); got < time.Minute {
		t.Errorf("Expected at least 1m for a running run, got %s", got)
	}
}
