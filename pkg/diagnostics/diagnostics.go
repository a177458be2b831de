// Package diagnostics runs read-only health checks against a cluster
// and aggregates their findings into a single report. Checks execute
// concurrently but a failing check never hides the results of its
// siblings.
package diagnostics

import "context"

// Severity classifies a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Finding is one observed problem (or, for events, one observation).
type Finding struct {
	Severity Severity
	// Object is the subject in namespace/name form ("" for
	// cluster-scoped subjects, which use their bare name).
	Object     string
	Message    string
	Suggestion string
}

// Check is a named unit of diagnostic work. Run must be safe to call
// concurrently with other checks and should honor ctx cancellation.
type Check struct {
	Name string
	Run  func(ctx context.Context) ([]Finding, error)
}

// Result pairs a check's name with its outcome. Exactly one of
// Findings (possibly empty) or Err is meaningful.
type Result struct {
	Name     string
	Findings []Finding
	Err      error
}

// Report holds one Result per check, in registration order.
type Report struct {
	Results []Result
}

// Counts returns the number of critical and warning findings plus the
// number of failed checks.
func (r *Report) Counts() (critical, warning, failed int) {
	for _, res := range r.Results {
		if res.Err != nil {
			failed++
			continue
		}
		for _, f := range res.Findings {
			switch f.Severity {
			case SeverityCritical:
				critical++
			case SeverityWarning:
				warning++
			}
		}
	}
	return critical, warning, failed
}
