package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/cwbudde/dlogsolve/internal/jobs"
)

// FSStore keeps one directory per run: <baseDir>/runs/<runID>/.
// Writes use temp file + rename, so no locking is needed.
type FSStore struct {
	baseDir string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem store rooted at baseDir, creating it if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func runDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "runs", runID)
}

func (fs *FSStore) summaryPath(runID string) string {
	return filepath.Join(runDir(fs.baseDir, runID), "run.json")
}

func (fs *FSStore) SaveRun(run jobs.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	if err := os.MkdirAll(runDir(fs.baseDir, run.ID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	// Write to temporary file first (atomic pattern)
	finalPath := fs.summaryPath(run.ID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename run file: %w", err)
	}

	slog.Debug("Run summary saved", "run_id", run.ID, "path", finalPath)
	return nil
}

func (fs *FSStore) LoadRun(runID string) (jobs.Run, error) {
	if runID == "" {
		return jobs.Run{}, fmt.Errorf("run ID cannot be empty")
	}

	data, err := os.ReadFile(fs.summaryPath(runID))
	if os.IsNotExist(err) {
		return jobs.Run{}, &NotFoundError{RunID: runID}
	} else if err != nil {
		return jobs.Run{}, fmt.Errorf("failed to read run file: %w", err)
	}

	var run jobs.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return jobs.Run{}, fmt.Errorf("failed to deserialize run: %w", err)
	}
	return run, nil
}

func (fs *FSStore) ListRuns() ([]jobs.Run, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []jobs.Run{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	runs := make([]jobs.Run, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		run, err := fs.LoadRun(entry.Name())
		if err != nil {
			// Runs still in progress have a trace but no summary yet.
			slog.Debug("Skipping run without summary", "run_id", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs, nil
}

func (fs *FSStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	dir := runDir(fs.baseDir, runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete run directory: %w", err)
	}

	slog.Debug("Run deleted", "run_id", runID)
	return nil
}
