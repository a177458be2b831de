package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWriteRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	rec := Record{
		Tool:        "k8s_scale",
		Context:     "staging",
		Namespace:   "team-a",
		Resource:    "deployment/web",
		Mutating:    true,
		Decision:    DecisionAllow,
		ExitCode:    0,
		StdoutBytes: 42,
		DurationMs:  120,
	}

	if err := w.Write(rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("Expected record to end with a newline")
	}

	var decoded Record
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("Record is not valid JSON: %v", err)
	}

	if decoded.Tool != "k8s_scale" {
		t.Errorf("Expected tool 'k8s_scale', got '%s'", decoded.Tool)
	}
	if decoded.Decision != DecisionAllow {
		t.Errorf("Expected decision '%s', got '%s'", DecisionAllow, decoded.Decision)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("Expected timestamp to be stamped on write")
	}
}

func TestWritePreservesTimestamp(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := w.Write(Record{Tool: "k8s_delete_pod", Timestamp: ts}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Record is not valid JSON: %v", err)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, decoded.Timestamp)
	}
}

func TestConcurrentWritesProduceWholeLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Write(Record{Tool: "k8s_apply_manifest", Decision: DecisionDeny, Reason: "read-only mode active"})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("Expected 50 lines, got %d", len(lines))
	}
	for _, line := range lines {
		var decoded Record
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("Interleaved write produced invalid JSON: %v", err)
		}
	}
}
