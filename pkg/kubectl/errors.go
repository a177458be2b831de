package kubectl

import (
	"fmt"
	"strings"
	"time"
)

// PolicyDeniedError is returned when a policy rule blocked the request
// before any process was spawned. Never retried.
type PolicyDeniedError struct {
	Reason string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("operation denied by policy: %s", e.Reason)
}

// ConfirmationRequiredError is a gate, not a failure: the caller must
// resubmit the request with the confirmation flag set.
type ConfirmationRequiredError struct {
	Reason string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Reason)
}

// ManifestValidationError is returned when a mutating payload failed
// structural validation before any process was spawned.
type ManifestValidationError struct {
	Reason string
}

func (e *ManifestValidationError) Error() string {
	return fmt.Sprintf("invalid manifest: %s", e.Reason)
}

// ProcessLaunchError is returned when the kubectl binary could not be
// started at all (missing, not executable).
type ProcessLaunchError struct {
	Binary string
	Err    error
}

func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v. Ensure kubectl is installed and on your PATH", e.Binary, e.Err)
}

func (e *ProcessLaunchError) Unwrap() error {
	return e.Err
}

// ProcessTimeoutError is returned when the external command exceeded its
// budget. The child process group is killed before this is returned;
// partial output captured before the timeout is attached.
type ProcessTimeoutError struct {
	Timeout   time.Duration
	Argv      []string
	Stdout    string
	Truncated bool
}

func (e *ProcessTimeoutError) Error() string {
	return fmt.Sprintf("kubectl timed out after %s: kubectl %s", e.Timeout, strings.Join(e.Argv, " "))
}

// errorHints maps fragments of common kubectl stderr output onto
// actionable guidance, surfaced ahead of the raw stderr.
var errorHints = []struct {
	pattern string
	hint    string
}{
	{
		pattern: "Unable to connect to the server",
		hint:    "Cannot reach the Kubernetes API server. Check that your cluster is running and kubeconfig is correct.",
	},
	{
		pattern: "error: You must be logged in",
		hint:    "Authentication failed. Your kubeconfig credentials may have expired.",
	},
	{
		pattern: "the server has asked for the client to provide credentials",
		hint:    "Cluster rejected credentials. Token may be expired.",
	},
	{
		pattern: "exec plugin: invalid apiVersion",
		hint:    "Exec-based auth plugin version mismatch. Check your kubeconfig's exec provider.",
	},
	{
		pattern: "was refused",
		hint:    "Connection refused by the API server. The cluster may be down or the endpoint is wrong.",
	},
}

// EnrichStderr prepends an actionable hint to common kubectl errors.
func EnrichStderr(stderr string) string {
	for _, h := range errorHints {
		if strings.Contains(stderr, h.pattern) {
			return h.hint + "\n\nkubectl stderr: " + stderr
		}
	}
	return stderr
}
