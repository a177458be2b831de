package kubectl

import "time"

// TimeoutClass selects the default timeout bucket for an operation when
// no explicit override is given.
type TimeoutClass int

const (
	// TimeoutDefault is the medium budget for ordinary operations.
	TimeoutDefault TimeoutClass = iota
	// TimeoutConnectivity is the short budget for reachability probes.
	TimeoutConnectivity
	// TimeoutDrain is the long budget for node drains.
	TimeoutDrain
	// TimeoutRollout is the budget for rollout status waits.
	TimeoutRollout
)

// Request describes one kubectl invocation. Constructed fresh per call
// and never mutated after construction; the facade owns it for the
// duration of the call.
type Request struct {
	// Tool is the calling tool's name, recorded in the audit log.
	Tool string

	// Context selects the kubeconfig context; empty means the current one.
	Context string

	// Namespace scopes the operation; mutually exclusive with AllNamespaces.
	Namespace string

	// AllNamespaces appends --all-namespaces.
	AllNamespaces bool

	// Kind is the resource kind the operation touches. Required for
	// mutations so the policy guard can apply the protected-kind rule.
	Kind ResourceKind

	// Mutating marks requests that change cluster state.
	Mutating bool

	// ScaleToZero marks a scale request targeting zero replicas, which
	// needs explicit confirmation.
	ScaleToZero bool

	// Confirmed carries the caller's explicit confirmation flag.
	Confirmed bool

	// Args is the kubectl argument vector, without context/namespace
	// flags; those are derived from the fields above.
	Args []string

	// Stdin is piped to the process when non-nil (apply/diff manifests).
	Stdin []byte

	// TimeoutOverride wins over the Class-derived default when positive.
	TimeoutOverride time.Duration

	// Class selects the default timeout bucket.
	Class TimeoutClass
}

// argv assembles the full kubectl argument vector. Layout matches the
// wrapper contract: context and namespace flags prefix the operation
// args, --all-namespaces follows them.
func (r *Request) argv() []string {
	prefix := make([]string, 0, 4)
	if r.Context != "" {
		prefix = append(prefix, "--context", r.Context)
	}
	if !r.AllNamespaces && r.Namespace != "" {
		prefix = append(prefix, "--namespace", r.Namespace)
	}

	full := make([]string, 0, len(prefix)+len(r.Args)+1)
	full = append(full, prefix...)
	full = append(full, r.Args...)
	if r.AllNamespaces {
		full = append(full, "--all-namespaces")
	}
	return full
}

// Outcome is the result of one kubectl invocation. A non-zero exit code
// is data, not an error: kubectl diff uses exit 1 to signal drift.
type Outcome struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool
	Duration  time.Duration
}
