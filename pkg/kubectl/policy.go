package kubectl

import (
	"fmt"

	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
)

// Verdict is the outcome class of a policy evaluation.
type Verdict int

const (
	// VerdictAllow lets the operation proceed to the process invoker.
	VerdictAllow Verdict = iota
	// VerdictDeny blocks the operation; the reason is surfaced verbatim.
	VerdictDeny
	// VerdictRequireConfirmation asks the caller to resubmit with an
	// explicit confirmation flag.
	VerdictRequireConfirmation
)

// Decision is the result of evaluating a request against the policy.
type Decision struct {
	Verdict Verdict
	Reason  string
}

func allow() Decision {
	return Decision{Verdict: VerdictAllow}
}

func deny(format string, v ...interface{}) Decision {
	return Decision{Verdict: VerdictDeny, Reason: fmt.Sprintf(format, v...)}
}

func requireConfirmation(reason string) Decision {
	return Decision{Verdict: VerdictRequireConfirmation, Reason: reason}
}

// Evaluate applies the layered safety policy to a request. It is a pure
// function: no I/O, no side effects, total over all inputs. Rules are
// applied in order, first match wins.
func Evaluate(req *Request, cfg *config.PolicyConfig) Decision {
	// 1. Context allowlist applies to every operation, read or write.
	if req.Context != "" && len(cfg.AllowedContexts) > 0 && !contains(cfg.AllowedContexts, req.Context) {
		return deny("context %q is not in the allowed list %v", req.Context, cfg.AllowedContexts)
	}

	// 2. Read-only mode blocks all mutations regardless of target.
	if cfg.ReadOnly && req.Mutating {
		return deny("read-only mode active")
	}

	// 3. Namespace allow/blocklist for mutations. Allowlist membership
	// is checked first when one is configured; the blocklist is always
	// checked afterwards, so a namespace on both lists is denied.
	if req.Mutating && req.Namespace != "" {
		if len(cfg.NamespaceAllowlist) > 0 && !contains(cfg.NamespaceAllowlist, req.Namespace) {
			return deny("namespace %q is not in the write allowlist %v", req.Namespace, cfg.NamespaceAllowlist)
		}
		if contains(cfg.NamespaceBlocklist, req.Namespace) {
			return deny("namespace %q is blocklisted for write operations", req.Namespace)
		}
	}

	// 4. Protected cluster-scoped kinds (cluster roles, webhooks, CRDs,
	// persistent volumes) are write-blocked unless explicitly allowed.
	if req.Mutating && req.Kind.Protected() && !cfg.AllowClusterScopedApply {
		return deny("cluster-scoped resource kind %q is blocked; set ALLOW_CLUSTER_RESOURCES=true to override", req.Kind)
	}

	// 5. Scaling to zero stops every pod of the workload; require an
	// explicit acknowledgment.
	if req.ScaleToZero && !req.Confirmed {
		return requireConfirmation("scaling to 0 replicas stops all pods for this workload; resubmit with confirm_scale_to_zero=true")
	}

	return allow()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
