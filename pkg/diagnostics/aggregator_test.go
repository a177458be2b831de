package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRunPreservesRegistrationOrder(t *testing.T) {
	// The first check is the slowest; its result must still come first.
	checks := []Check{
		{Name: "slow", Run: func(ctx context.Context) ([]Finding, error) {
			time.Sleep(100 * time.Millisecond)
			return []Finding{{Severity: SeverityInfo, Message: "slow done"}}, nil
		}},
		{Name: "fast", Run: func(ctx context.Context) ([]Finding, error) {
			return []Finding{{Severity: SeverityInfo, Message: "fast done"}}, nil
		}},
	}

	report := Run(context.Background(), checks)
	if len(report.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].Name != "slow" || report.Results[1].Name != "fast" {
		t.Errorf("Results out of registration order: %s, %s", report.Results[0].Name, report.Results[1].Name)
	}
}

func TestRunIsolatesFailingCheck(t *testing.T) {
	boom := errors.New("kubectl exited with code 1")
	checks := make([]Check, 5)
	for i := range checks {
		i := i
		name := fmt.Sprintf("check-%d", i)
		if i == 2 {
			checks[i] = Check{Name: name, Run: func(ctx context.Context) ([]Finding, error) {
				return nil, boom
			}}
			continue
		}
		checks[i] = Check{Name: name, Run: func(ctx context.Context) ([]Finding, error) {
			return []Finding{{Severity: SeverityWarning, Object: name, Message: "found"}}, nil
		}}
	}

	report := Run(context.Background(), checks)
	if len(report.Results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(report.Results))
	}
	for i, res := range report.Results {
		if res.Name != fmt.Sprintf("check-%d", i) {
			t.Errorf("Result %d has name %s", i, res.Name)
		}
		if i == 2 {
			if !errors.Is(res.Err, boom) {
				t.Errorf("Result 2 expected the check error, got %v", res.Err)
			}
			if len(res.Findings) != 0 {
				t.Errorf("Failed check should carry no findings, got %d", len(res.Findings))
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("Result %d unexpectedly failed: %v", i, res.Err)
		}
		if len(res.Findings) != 1 {
			t.Errorf("Result %d expected one finding, got %d", i, len(res.Findings))
		}
	}
}

func TestRunRecoversPanickingCheck(t *testing.T) {
	checks := []Check{
		{Name: "panics", Run: func(ctx context.Context) ([]Finding, error) {
			var pods []Finding
			_ = pods[3] // index out of range
			return pods, nil
		}},
		{Name: "healthy", Run: func(ctx context.Context) ([]Finding, error) {
			return nil, nil
		}},
	}

	report := Run(context.Background(), checks)
	if report.Results[0].Err == nil {
		t.Error("Panicking check should surface an error")
	}
	if report.Results[1].Err != nil {
		t.Errorf("Sibling check affected by panic: %v", report.Results[1].Err)
	}
}

func TestRunEmptyChecks(t *testing.T) {
	report := Run(context.Background(), nil)
	if len(report.Results) != 0 {
		t.Errorf("Expected empty report, got %d results", len(report.Results))
	}
}

func TestReportCounts(t *testing.T) {
	report := &Report{Results: []Result{
		{Name: "a", Findings: []Finding{
			{Severity: SeverityCritical}, {Severity: SeverityWarning}, {Severity: SeverityInfo},
		}},
		{Name: "b", Findings: []Finding{{Severity: SeverityCritical}}},
		{Name: "c", Err: errors.New("scan failed")},
	}}

	critical, warning, failed := report.Counts()
	if critical != 2 || warning != 1 || failed != 1 {
		t.Errorf("Counts() = (%d, %d, %d), want (2, 1, 1)", critical, warning, failed)
	}
}
