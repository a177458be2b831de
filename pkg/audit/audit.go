// Package audit writes append-only records of mutating operations.
// Records are one JSON object per line and are never read back by the
// server; retention and rotation belong to the operator.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Decision values recorded for each audited operation.
const (
	DecisionAllow                = "allow"
	DecisionDeny                 = "deny"
	DecisionConfirmationRequired = "confirmation_required"
)

// Record captures one operation against the control plane.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	Tool        string    `json:"tool"`
	Context     string    `json:"context,omitempty"`
	Namespace   string    `json:"namespace,omitempty"`
	Resource    string    `json:"resource,omitempty"`
	Mutating    bool      `json:"mutating"`
	Decision    string    `json:"decision"`
	Reason      string    `json:"reason,omitempty"`
	ExitCode    int       `json:"exit_code"`
	StdoutBytes int       `json:"stdout_bytes"`
	Truncated   bool      `json:"truncated,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
}

// Writer serializes records onto an append-only sink. Safe for
// concurrent use.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Writer over the given sink.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// OpenFile creates a Writer appending to the given path, or to stderr
// when the path is empty.
func OpenFile(path string) (*Writer, error) {
	if path == "" {
		return NewWriter(os.Stderr), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	return NewWriter(f), nil
}

// Write appends one record. The timestamp is stamped here if the caller
// left it zero.
func (w *Writer) Write(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.out.Write(append(data, '\n'))
	return err
}
