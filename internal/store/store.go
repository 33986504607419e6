// Package store persists observations of search runs: a per-generation
// trace and a final run summary. Nothing here is used to resume a search.
package store

import "github.com/cwbudde/dlogsolve/internal/jobs"

// Store defines the persistence operations for run summaries.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveRun atomically writes the summary of run, replacing any previous one.
	SaveRun(run jobs.Run) error

	// LoadRun returns the stored summary, or ErrNotFound.
	LoadRun(runID string) (jobs.Run, error)

	// ListRuns returns every stored summary, oldest first.
	ListRuns() ([]jobs.Run, error)

	// DeleteRun removes the run directory including its trace.
	// Returns ErrNotFound if the run does not exist.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
