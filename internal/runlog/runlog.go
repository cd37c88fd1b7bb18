// Package runlog writes the per-candidate CSV outcome log. One file per run,
// named for the mode, created in the root directory. Writing is best-effort:
// a failed row must never abort processing.
package runlog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Outcome labels recorded in the CSV. These are the terminal states of the
// per-file state machine.
const (
	OutcomePlanned  = "planned"   // Preview mode: action computed, nothing executed.
	OutcomeSuccess  = "success"   // Converted, verified, original removed/replaced.
	OutcomePartial  = "partial"   // Verified replacement exists but cleanup failed.
	OutcomeFailure  = "failure"   // Conversion or verification failed.
	OutcomeNotFound = "not-found" // Candidate unresolvable under root.
	OutcomeSkipped  = "skipped"   // Valid already, or unsupported extension.
)

var header = []string{"source", "action", "destination", "outcome", "error"}

// Record is one CSV row.
type Record struct {
	Source      string
	Action      string
	Destination string
	Outcome     string
	Err         string
}

// Writer appends records to the run's CSV file.
type Writer struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// Create opens (truncating) the CSV log at path and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log %q: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write log header: %w", err)
	}
	return &Writer{path: path, f: f, w: w}, nil
}

// Path returns the log file location.
func (l *Writer) Path() string { return l.path }

// Append writes one record and flushes so an interrupted run keeps every
// completed row. The returned error is informational; callers surface it as
// a warning and continue.
func (l *Writer) Append(rec Record) error {
	row := []string{rec.Source, rec.Action, rec.Destination, rec.Outcome, rec.Err}
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("append log row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("flush log row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Writer) Close() error {
	l.w.Flush()
	flushErr := l.w.Error()
	if err := l.f.Close(); err != nil {
		return err
	}
	return flushErr
}
