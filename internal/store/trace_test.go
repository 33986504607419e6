package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "test-run-123"

	writer, err := NewTraceWriter(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Generation: 0, Evaluated: 1000, Timestamp: time.Now()},
		{Generation: 1, Evaluated: 1000, NonConvergent: 3, Timestamp: time.Now()},
		{Generation: 2, Evaluated: 1000, Matched: true, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	tracePath := filepath.Join(tmpDir, "runs", runID, "trace.jsonl")
	if writer.Path() != tracePath {
		t.Errorf("Expected path %s, got %s", tracePath, writer.Path())
	}

	got, err := ReadTrace(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(got))
	}
	for i, entry := range got {
		if entry.Generation != entries[i].Generation ||
			entry.NonConvergent != entries[i].NonConvergent ||
			entry.Matched != entries[i].Matched {
			t.Errorf("Entry %d: expected %+v, got %+v", i, entries[i], entry)
		}
	}
}

func TestTraceWriter_BufferedUntilClose(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "test-run-buffered"

	writer, err := NewTraceWriter(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	writer.Write(TraceEntry{Generation: 0, Timestamp: time.Now()})

	data, err := os.ReadFile(TracePath(tmpDir, runID))
	if err != nil {
		t.Fatalf("Failed to read trace file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Entry reached the file before Close: %q", data)
	}

	writer.Close()
	entries, err := ReadTrace(tmpDir, runID)
	if err != nil || len(entries) != 1 {
		t.Errorf("Expected 1 entry after Close, got %d (%v)", len(entries), err)
	}
}

func TestTraceWriter_Replaces(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "test-run-replace"

	for gen := 0; gen < 2; gen++ {
		writer, err := NewTraceWriter(tmpDir, runID)
		if err != nil {
			t.Fatalf("Failed to create trace writer: %v", err)
		}
		writer.Write(TraceEntry{Generation: gen, Timestamp: time.Now()})
		writer.Close()
	}

	entries, err := ReadTrace(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(entries) != 1 || entries[0].Generation != 1 {
		t.Errorf("Expected only the second trace, got %+v", entries)
	}
}

func TestReadTrace_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	writer, _ := NewTraceWriter(tmpDir, "empty")
	writer.Close()

	entries, err := ReadTrace(tmpDir, "empty")
	if err != nil {
		t.Fatalf("Failed to read empty trace: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestReadTrace_NotFound(t *testing.T) {
	_, err := ReadTrace(t.TempDir(), "nonexistent-run")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}

	var nf *NotFoundError
	if errors.As(err, &nf) && nf.RunID != "nonexistent-run" {
		t.Errorf("Expected run ID in error, got %q", nf.RunID)
	}
}

func TestReadTrace_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	path := TracePath(tmpDir, "bad")
	os.MkdirAll(filepath.Dir(path), 0755)
	data := `{"generation":0}` + "\n{not json}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadTrace(tmpDir, "bad"); err == nil {
		t.Error("Expected error for malformed line")
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "test-run-concurrent"

	writer, err := NewTraceWriter(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(gen int) {
			defer wg.Done()
			if err := writer.Write(TraceEntry{Generation: gen, Timestamp: time.Now()}); err != nil {
				t.Errorf("Concurrent write failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
	writer.Close()

	entries, err := ReadTrace(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("Expected 10 entries, got %d", len(entries))
	}
}
