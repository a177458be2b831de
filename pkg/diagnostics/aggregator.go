package diagnostics

import (
	"context"
	"fmt"
	"sync"

	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// Run executes every check concurrently and collects one Result per
// check. Results keep registration order regardless of which check
// finishes first. A check that returns an error, or panics, fills in
// its own Result.Err and nothing else; the remaining checks are
// unaffected.
func Run(ctx context.Context, checks []Check) *Report {
	results := make([]Result, len(checks))

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(slot int, c Check) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logging.Error("diagnostic check %s panicked: %v", c.Name, r)
					results[slot] = Result{Name: c.Name, Err: fmt.Errorf("check panicked: %v", r)}
				}
			}()

			findings, err := c.Run(ctx)
			if err != nil {
				results[slot] = Result{Name: c.Name, Err: err}
				return
			}
			results[slot] = Result{Name: c.Name, Findings: findings}
		}(i, check)
	}
	wg.Wait()

	return &Report{Results: results}
}
