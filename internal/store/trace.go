package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceEntry is one generation of a search run, stored as a line of
// trace.jsonl.
type TraceEntry struct {
	Generation    int       `json:"generation"`
	Evaluated     int       `json:"evaluated"`
	NonConvergent int       `json:"nonConvergent"`
	Matched       bool      `json:"matched"`
	Timestamp     time.Time `json:"timestamp"`
}

// TracePath returns the trace location for runID under baseDir.
func TracePath(baseDir, runID string) string {
	return filepath.Join(runDir(baseDir, runID), "trace.jsonl")
}

// TraceWriter records the generations of one run. Safe for concurrent use.
type TraceWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewTraceWriter starts a fresh trace for runID, replacing any earlier one.
func NewTraceWriter(baseDir, runID string) (*TraceWriter, error) {
	path := TracePath(baseDir, runID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	buf := bufio.NewWriter(file)
	return &TraceWriter{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write buffers entry; buffered entries reach the file on Close.
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	return nil
}

func (tw *TraceWriter) Path() string {
	return tw.file.Name()
}

// Close flushes the buffer and closes the file. The file is closed even if
// the flush fails.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return errors.Join(tw.buf.Flush(), tw.file.Close())
}

// ReadTrace loads every entry of runID's trace. A missing trace is ErrNotFound.
func ReadTrace(baseDir, runID string) ([]TraceEntry, error) {
	file, err := os.Open(TracePath(baseDir, runID))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()

	var entries []TraceEntry
	dec := json.NewDecoder(file)
	for {
		var entry TraceEntry
		err := dec.Decode(&entry)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("trace entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
}
