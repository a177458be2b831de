package kubectl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kubemcp/kubectl-mcp-server/pkg/audit"
	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// processRunner abstracts the Invoker for tests.
type processRunner interface {
	Invoke(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (*Outcome, error)
}

// Executor is the single choke point between the tool layer and the
// kubectl binary. It consults the policy guard, validates mutating
// payloads, selects the effective timeout, invokes the process, and
// writes the audit record. No other code path may spawn kubectl, which
// is what makes the policy gate unbypassable.
type Executor struct {
	cfg     *config.PolicyConfig
	invoker processRunner
	audit   *audit.Writer
}

// NewExecutor wires an Executor over the given immutable configuration
// and audit sink.
func NewExecutor(cfg *config.PolicyConfig, auditWriter *audit.Writer) *Executor {
	return &Executor{
		cfg:     cfg,
		invoker: NewInvoker(cfg.KubectlPath, cfg.MaxConcurrentProcesses, cfg.MaxOutputBytes),
		audit:   auditWriter,
	}
}

// Config returns the executor's immutable configuration.
func (e *Executor) Config() *config.PolicyConfig {
	return e.cfg
}

// Execute runs one operation end to end. Denied and
// confirmation-required mutating attempts are audited but never reach
// the process invoker; read-only operations are not audited at all.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	decision := Evaluate(req, e.cfg)
	switch decision.Verdict {
	case VerdictDeny:
		e.auditDecision(req, audit.DecisionDeny, decision.Reason)
		return nil, &PolicyDeniedError{Reason: decision.Reason}
	case VerdictRequireConfirmation:
		e.auditDecision(req, audit.DecisionConfirmationRequired, decision.Reason)
		return nil, &ConfirmationRequiredError{Reason: decision.Reason}
	}

	if req.Mutating && req.Stdin != nil {
		if _, err := e.validateManifest(req.Stdin); err != nil {
			e.auditDecision(req, audit.DecisionDeny, err.Error())
			return nil, err
		}
	}

	outcome, err := e.invoker.Invoke(ctx, req.argv(), req.Stdin, e.effectiveTimeout(req))
	if req.Mutating {
		e.auditOutcome(req, outcome, err)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("kubectl %s exited %d in %s", strings.Join(req.Args, " "), outcome.ExitCode, outcome.Duration)
	return outcome, nil
}

// Run executes the request and folds the outcome into the usual
// string-or-error shape the tool handlers want: non-zero exit becomes
// an error carrying enriched stderr, success returns trimmed stdout
// (with stderr appended, since kubectl apply reports progress there).
func (e *Executor) Run(ctx context.Context, req *Request) (string, error) {
	outcome, err := e.Execute(ctx, req)
	if err != nil {
		return "", err
	}

	if outcome.ExitCode != 0 {
		stderr := strings.TrimSpace(outcome.Stderr)
		if stderr == "" {
			return "", fmt.Errorf("kubectl exited with code %d", outcome.ExitCode)
		}
		return "", fmt.Errorf("%s", EnrichStderr(stderr))
	}

	out := strings.TrimSpace(outcome.Stdout)
	if stderr := strings.TrimSpace(outcome.Stderr); stderr != "" {
		out = strings.TrimSpace(out + "\n" + stderr)
	}
	if outcome.Truncated {
		out += fmt.Sprintf("\n[... output truncated at %d bytes ...]", e.cfg.MaxOutputBytes)
	}
	return out, nil
}

// RunJSON executes the request with -o json appended and decodes the
// result into v.
func (e *Executor) RunJSON(ctx context.Context, req *Request, v interface{}) error {
	jsonReq := *req
	jsonReq.Args = append(append([]string{}, req.Args...), "-o", "json")

	outcome, err := e.Execute(ctx, &jsonReq)
	if err != nil {
		return err
	}
	if outcome.ExitCode != 0 {
		stderr := strings.TrimSpace(outcome.Stderr)
		if stderr == "" {
			return fmt.Errorf("kubectl exited with code %d", outcome.ExitCode)
		}
		return fmt.Errorf("%s", EnrichStderr(stderr))
	}

	if err := json.Unmarshal([]byte(outcome.Stdout), v); err != nil {
		if outcome.Truncated {
			return fmt.Errorf("response too large to parse as JSON (truncated at %d bytes); narrow the query with a namespace or label selector", e.cfg.MaxOutputBytes)
		}
		return fmt.Errorf("failed to decode kubectl JSON output: %w", err)
	}
	return nil
}

// effectiveTimeout picks the per-call timeout: explicit override first,
// else the class default.
func (e *Executor) effectiveTimeout(req *Request) time.Duration {
	if req.TimeoutOverride > 0 {
		return req.TimeoutOverride
	}
	switch req.Class {
	case TimeoutConnectivity:
		return e.cfg.ConnectivityTimeout()
	case TimeoutDrain:
		return e.cfg.DrainTimeout()
	case TimeoutRollout:
		return e.cfg.RolloutTimeout()
	default:
		return e.cfg.DefaultTimeout()
	}
}

// auditDecision records a mutating attempt that was stopped at the gate.
func (e *Executor) auditDecision(req *Request, decision, reason string) {
	if !req.Mutating || e.audit == nil {
		return
	}
	e.writeAudit(audit.Record{
		Tool:      req.Tool,
		Context:   req.Context,
		Namespace: req.Namespace,
		Resource:  req.Kind.String(),
		Mutating:  true,
		Decision:  decision,
		Reason:    reason,
	})
}

// auditOutcome records a completed (or failed) mutating operation.
func (e *Executor) auditOutcome(req *Request, outcome *Outcome, err error) {
	if e.audit == nil {
		return
	}
	rec := audit.Record{
		Tool:      req.Tool,
		Context:   req.Context,
		Namespace: req.Namespace,
		Resource:  req.Kind.String(),
		Mutating:  true,
		Decision:  audit.DecisionAllow,
	}
	if err != nil {
		rec.Reason = err.Error()
		rec.ExitCode = -1
	} else {
		rec.ExitCode = outcome.ExitCode
		rec.StdoutBytes = len(outcome.Stdout)
		rec.Truncated = outcome.Truncated
		rec.DurationMs = outcome.Duration.Milliseconds()
	}
	e.writeAudit(rec)
}

func (e *Executor) writeAudit(rec audit.Record) {
	if err := e.audit.Write(rec); err != nil {
		logging.Error("failed to write audit record for %s: %v", rec.Tool, err)
	}
}
