package remediation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

// mutatingRequest builds a write request carrying the shared
// context/namespace parameters.
func mutatingRequest(tool string, params map[string]interface{}, kind kubectl.ResourceKind, args ...string) *kubectl.Request {
	return &kubectl.Request{
		Tool:      tool,
		Context:   paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace: paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		Kind:      kind,
		Mutating:  true,
		Args:      args,
	}
}

func restartDeploymentHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamDeploymentName)
	if err != nil {
		return "", err
	}

	out, err := exec.Run(ctx, mutatingRequest("k8s_restart_deployment", params, kubectl.KindDeployment,
		"rollout", "restart", "deployment/"+name))
	if err != nil {
		return "", err
	}

	// Follow up with a short status check so the agent sees whether
	// the restart is progressing.
	statusReq := &kubectl.Request{
		Tool:      "k8s_restart_deployment",
		Context:   paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace: paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		Args:      []string{"rollout", "status", "deployment/" + name, "--timeout=10s"},
	}
	status, statusErr := exec.Run(ctx, statusReq)
	if statusErr != nil {
		return fmt.Sprintf("%s\n(rollout status unavailable: %v)", out, statusErr), nil
	}
	return out + "\n" + status, nil
}

func scaleHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kind, resourceType, err := paramutil.ResolveKind(params)
	if err != nil {
		return "", err
	}
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceName)
	if err != nil {
		return "", err
	}
	replicas, err := paramutil.ExtractRequiredInt64(params, paramutil.ParamReplicas)
	if err != nil {
		return "", err
	}
	if replicas < 0 {
		return "", fmt.Errorf("%w: replicas must be >= 0", paramutil.ErrInvalidParameter)
	}

	target := strings.ToLower(resourceType) + "/" + name
	req := mutatingRequest("k8s_scale", params, kind,
		"scale", target, fmt.Sprintf("--replicas=%d", replicas))
	req.ScaleToZero = replicas == 0
	req.Confirmed = paramutil.ExtractBool(params, paramutil.ParamConfirmScaleToZero, false)

	out, err := exec.Run(ctx, req)

	var confirm *kubectl.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		// Tell the agent what it is about to take down before asking
		// it to confirm.
		current := "unknown"
		var resource struct {
			Spec struct {
				Replicas *int64 `json:"replicas"`
			} `json:"spec"`
		}
		readReq := &kubectl.Request{
			Tool:      "k8s_scale",
			Context:   req.Context,
			Namespace: req.Namespace,
			Args:      []string{"get", target},
		}
		if jsonErr := exec.RunJSON(ctx, readReq, &resource); jsonErr == nil && resource.Spec.Replicas != nil {
			current = fmt.Sprintf("%d", *resource.Spec.Replicas)
		}
		return fmt.Sprintf(
			"WARNING: You are about to scale %s to 0 replicas (currently %s). This will stop ALL pods for this workload.\n\n"+
				"To confirm, re-call k8s_scale with confirm_scale_to_zero=true.",
			target, current), nil
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

func deletePodHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	pod, err := paramutil.ExtractRequiredString(params, paramutil.ParamPodName)
	if err != nil {
		return "", err
	}

	args := []string{"delete", "pod", pod}
	if paramutil.ExtractBool(params, paramutil.ParamForce, false) {
		args = append(args, "--grace-period=0", "--force")
	}
	return exec.Run(ctx, mutatingRequest("k8s_delete_pod", params, kubectl.KindPod, args...))
}

func rollbackDeploymentHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamDeploymentName)
	if err != nil {
		return "", err
	}

	args := []string{"rollout", "undo", "deployment/" + name}
	if revision := paramutil.ExtractOptionalInt64(params, paramutil.ParamRevision); revision != nil {
		args = append(args, fmt.Sprintf("--to-revision=%d", *revision))
	}
	return exec.Run(ctx, mutatingRequest("k8s_rollback_deployment", params, kubectl.KindDeployment, args...))
}

func applyManifestHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	manifest, err := paramutil.ExtractRequiredString(params, paramutil.ParamManifest)
	if err != nil {
		return "", err
	}

	args := []string{"apply", "-f", "-"}
	if paramutil.ExtractBool(params, paramutil.ParamDryRun, false) {
		args = append(args, "--dry-run=server")
	}

	req := mutatingRequest("k8s_apply_manifest", params, kubectl.KindUnknown, args...)
	req.Stdin = []byte(manifest)
	return exec.Run(ctx, req)
}

func patchResourceHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kind, resourceType, err := paramutil.ResolveKind(params)
	if err != nil {
		return "", err
	}
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceName)
	if err != nil {
		return "", err
	}
	patch, err := paramutil.ExtractRequiredString(params, paramutil.ParamPatch)
	if err != nil {
		return "", err
	}
	patchType, err := paramutil.ResolvePatchType(params)
	if err != nil {
		return "", err
	}

	return exec.Run(ctx, mutatingRequest("k8s_patch_resource", params, kind,
		"patch", strings.ToLower(resourceType), name, "--type="+patchType, "-p", patch))
}

func nodeOperationHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	op, err := paramutil.ResolveNodeOperation(params)
	if err != nil {
		return "", err
	}
	node, err := paramutil.ExtractRequiredString(params, paramutil.ParamNodeName)
	if err != nil {
		return "", err
	}

	args := []string{op, node}
	if op == "drain" {
		if paramutil.ExtractBool(params, paramutil.ParamIgnoreDaemonsets, false) {
			args = append(args, "--ignore-daemonsets")
		}
		if paramutil.ExtractBool(params, "delete_emptydir_data", false) {
			args = append(args, "--delete-emptydir-data")
		}
	}

	req := &kubectl.Request{
		Tool:     "k8s_node_operation",
		Context:  paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Kind:     kubectl.KindNode,
		Mutating: true,
		Args:     args,
	}
	if op == "drain" {
		req.Class = kubectl.TimeoutDrain
	}
	return exec.Run(ctx, req)
}

func deleteResourceHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kind, resourceType, err := paramutil.ResolveKind(params)
	if err != nil {
		return "", err
	}
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceName)
	if err != nil {
		return "", err
	}

	return exec.Run(ctx, mutatingRequest("k8s_delete_resource", params, kind,
		"delete", strings.ToLower(resourceType), name))
}

// diffHandler runs kubectl diff, which is read-only but overloads the
// exit code: 0 means no differences, 1 means differences exist, and
// anything above 1 is a real failure.
func diffHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	manifest, err := paramutil.ExtractRequiredString(params, paramutil.ParamManifest)
	if err != nil {
		return "", err
	}

	req := &kubectl.Request{
		Tool:      "k8s_diff",
		Context:   paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace: paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		Args:      []string{"diff", "-f", "-"},
		Stdin:     []byte(manifest),
	}
	outcome, err := exec.Execute(ctx, req)
	if err != nil {
		return "", err
	}

	switch {
	case outcome.ExitCode == 0:
		return "No differences found. Live state matches the manifest.", nil
	case outcome.ExitCode == 1:
		if strings.TrimSpace(outcome.Stdout) == "" {
			return "Diff detected but output was empty.", nil
		}
		return outcome.Stdout, nil
	default:
		stderr := strings.TrimSpace(outcome.Stderr)
		if stderr == "" {
			return "", fmt.Errorf("kubectl diff exited with code %d", outcome.ExitCode)
		}
		return "", fmt.Errorf("%s", kubectl.EnrichStderr(stderr))
	}
}
