package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// registerPrompts registers the troubleshooting workflow prompts. Each
// prompt walks the client through a diagnosis using the exact tool
// names this server exposes.
func (s *Server) registerPrompts() {
	prompts := []struct {
		prompt  mcp.Prompt
		handler func(args map[string]string) *mcp.GetPromptResult
	}{
		{
			prompt: mcp.Prompt{
				Name:        "diagnose-pod",
				Description: "Step-by-step diagnosis of a specific pod - describes it, checks events, pulls logs, inspects node conditions and resource limits.",
				Arguments: []mcp.PromptArgument{
					{Name: "pod_name", Description: "Name of the pod to diagnose", Required: true},
					{Name: "namespace", Description: "Namespace the pod is in", Required: true},
				},
			},
			handler: diagnosePodPrompt,
		},
		{
			prompt: mcp.Prompt{
				Name:        "cluster-health-report",
				Description: "Comprehensive cluster health report - runs a health scan, drills into critical issues, and produces a summary.",
				Arguments: []mcp.PromptArgument{
					{Name: "namespace", Description: "Optional namespace to scope the report to", Required: false},
				},
			},
			handler: clusterHealthReportPrompt,
		},
		{
			prompt: mcp.Prompt{
				Name:        "incident-response",
				Description: "Incident triage workflow - scans for issues in a namespace, checks warning events, pulls logs from failing pods, and recommends remediation.",
				Arguments: []mcp.PromptArgument{
					{Name: "namespace", Description: "Namespace to triage", Required: true},
				},
			},
			handler: incidentResponsePrompt,
		},
		{
			prompt: mcp.Prompt{
				Name:        "debug-crashloop",
				Description: "Targeted CrashLoopBackOff debugging - inspects pod state, pulls previous container logs, checks for OOM kills, and reviews resource limits and probes.",
				Arguments: []mcp.PromptArgument{
					{Name: "pod_name", Description: "Name of the crashing pod", Required: true},
					{Name: "namespace", Description: "Namespace the pod is in", Required: true},
				},
			},
			handler: debugCrashloopPrompt,
		},
		{
			prompt: mcp.Prompt{
				Name:        "pre-deploy-checklist",
				Description: "Pre-deployment verification - reviews current deployments, pod health, recent events, and resource quotas in a namespace.",
				Arguments: []mcp.PromptArgument{
					{Name: "namespace", Description: "Namespace to verify before deploying", Required: true},
				},
			},
			handler: preDeployChecklistPrompt,
		},
	}

	for _, p := range prompts {
		p := p
		s.server.AddPrompt(p.prompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			for _, arg := range p.prompt.Arguments {
				if arg.Required && request.Params.Arguments[arg.Name] == "" {
					return nil, fmt.Errorf("missing required argument: %s", arg.Name)
				}
			}
			return p.handler(request.Params.Arguments), nil
		})
		logging.Info("Registered prompt: %s", p.prompt.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}

func diagnosePodPrompt(args map[string]string) *mcp.GetPromptResult {
	podName := args["pod_name"]
	namespace := args["namespace"]
	return userPrompt(
		fmt.Sprintf("Diagnose pod %s in namespace %s", podName, namespace),
		fmt.Sprintf(`Diagnose the pod %[1]q in namespace %[2]q by following these steps in order:

1. **Describe the pod** - Use k8s_describe with resource_type="pod", resource_name=%[1]q, namespace=%[2]q. Note the pod status, conditions, container states, and any restart counts.

2. **Check events** - Use k8s_list_events with namespace=%[2]q and look for events related to this pod (scheduling failures, image pull errors, liveness/readiness probe failures, OOM kills).

3. **Pull current container logs** - Use k8s_logs with pod_name=%[1]q, namespace=%[2]q, tail_lines=200. Look for application errors, stack traces, or connection failures.

4. **Pull previous container logs if restarting** - If the pod has restarts or is in CrashLoopBackOff, use k8s_logs with pod_name=%[1]q, namespace=%[2]q, previous=true, tail_lines=200 to get logs from the last terminated container.

5. **Check the node** - From the describe output, identify which node the pod is running on. Use k8s_describe with resource_type="node" and that node name. Check for memory pressure, disk pressure, PID pressure, or NotReady conditions.

6. **Review resource limits** - From the pod describe output, check the resource requests and limits for each container. Flag if no limits are set (risk of OOM) or if requests are very close to limits (risk of throttling).

Produce a diagnosis summary with:
- Root cause (or most likely cause)
- Evidence supporting the diagnosis
- Recommended fix`, podName, namespace),
	)
}

func clusterHealthReportPrompt(args map[string]string) *mcp.GetPromptResult {
	namespace := args["namespace"]
	scope := "the entire cluster"
	nsArg := ""
	if namespace != "" {
		scope = fmt.Sprintf("namespace %q", namespace)
		nsArg = fmt.Sprintf(", namespace=%q", namespace)
	}
	return userPrompt(
		fmt.Sprintf("Health report for %s", scope),
		fmt.Sprintf(`Generate a comprehensive health report for %[1]s by following these steps:

1. **Run the health scan** - Use k8s_find_issues%[2]s to get an overview of all detected problems (non-running pods, high-restart pods, unhealthy nodes, unavailable deployments, warning events).

2. **Drill into critical issues** - For each critical issue found:
   - For failing pods: use k8s_describe (resource_type="pod") and k8s_logs to understand the failure.
   - For unhealthy nodes: use k8s_describe (resource_type="node") to check conditions and allocatable resources.
   - For unavailable deployments: use k8s_describe (resource_type="deployment") to check rollout status.

3. **Check resource consumption** - Use k8s_top_pods%[2]s and k8s_top_nodes to identify any resource pressure.

4. **Review recent warning events** - Use k8s_list_events with warnings_only=true%[2]s to catch issues not surfaced by the health scan.

Produce a structured report with these sections:
- **Overall Status**: HEALTHY / DEGRADED / CRITICAL
- **Summary**: One-paragraph overview
- **Issues Found**: Table of issues with severity, affected resource, and description
- **Resource Utilization**: CPU and memory highlights
- **Recommendations**: Prioritized list of actions to take`, scope, nsArg),
	)
}

func incidentResponsePrompt(args map[string]string) *mcp.GetPromptResult {
	namespace := args["namespace"]
	return userPrompt(
		fmt.Sprintf("Incident response triage for namespace %s", namespace),
		fmt.Sprintf(`Perform an incident response triage for namespace %[1]q by following this workflow:

1. **Initial scan** - Use k8s_find_issues with namespace=%[1]q to get a rapid overview of all problems. Note the count and severity of issues.

2. **Check warning events** - Use k8s_list_events with namespace=%[1]q, warnings_only=true. Look for recurring patterns: image pull failures, scheduling problems, probe failures, OOM kills, volume mount errors.

3. **Identify failing pods** - Use k8s_list_pods with namespace=%[1]q. For each pod that is not Running/Succeeded:
   - Use k8s_describe with resource_type="pod" and the pod name to understand the failure state.
   - Use k8s_logs with the pod name, namespace=%[1]q, tail_lines=150 to capture recent logs.
   - If the pod is in CrashLoopBackOff, also use k8s_logs with previous=true to get the last crash output.

4. **Check node health** - Use k8s_list_nodes to check for nodes with pressure conditions or NotReady status. For any unhealthy node, use k8s_describe with resource_type="node" to get details.

5. **Check resource pressure** - Use k8s_top_pods with namespace=%[1]q to check for pods near their resource limits. Use k8s_top_nodes to check cluster-level resource pressure.

6. **Assess blast radius** - Use k8s_list_deployments with namespace=%[1]q to check how many deployments are affected and whether any have zero available replicas.

Produce an incident report with:
- **Severity**: P1 (service down) / P2 (degraded) / P3 (warning, no user impact)
- **Affected Services**: List of impacted deployments and pods
- **Timeline**: Sequence of events based on event timestamps
- **Root Cause Analysis**: Most likely cause with supporting evidence
- **Recommended Remediation Steps**: Ordered list of actions, referencing specific tools:
  - k8s_restart_deployment for rolling restarts
  - k8s_rollback_deployment to revert bad releases
  - k8s_scale to adjust replica counts
  - k8s_delete_pod to force-restart stuck pods
  - k8s_apply_manifest or k8s_patch_resource for configuration fixes`, namespace),
	)
}

func debugCrashloopPrompt(args map[string]string) *mcp.GetPromptResult {
	podName := args["pod_name"]
	namespace := args["namespace"]
	return userPrompt(
		fmt.Sprintf("Debug CrashLoopBackOff for pod %s in namespace %s", podName, namespace),
		fmt.Sprintf(`Debug the CrashLoopBackOff for pod %[1]q in namespace %[2]q by following these steps:

1. **Get pod details** - Use k8s_describe with resource_type="pod", resource_name=%[1]q, namespace=%[2]q. From the output, note:
   - Container state and last termination reason (OOMKilled, Error, etc.)
   - Exit code (137 = OOM/SIGKILL, 1 = application error, 143 = SIGTERM)
   - Restart count and time between restarts (exponential backoff pattern)
   - Container image and tag (verify correct image)

2. **Pull previous container logs** - Use k8s_logs with pod_name=%[1]q, namespace=%[2]q, previous=true, tail_lines=300. This captures output from the last crashed instance. Look for:
   - Stack traces or panic messages
   - "connection refused" or DNS resolution failures
   - Missing environment variables or config files
   - Permission denied errors

3. **Pull current container logs** - Use k8s_logs with pod_name=%[1]q, namespace=%[2]q, tail_lines=100. The container may produce output before crashing again.

4. **Check for OOM events** - Use k8s_list_events with namespace=%[2]q. Look for events with reason "OOMKilling" or "OOMKilled" targeting this pod. If OOM is confirmed:
   - Note the current memory limit from the describe output
   - Check k8s_top_pods with namespace=%[2]q to see current memory usage of similar pods

5. **Inspect resource limits and probes** - From the describe output, check:
   - **Memory limits**: If the container is OOMKilled, the memory limit is too low or there is a memory leak
   - **CPU limits**: Very low CPU limits can cause extreme throttling, making liveness probes fail
   - **Liveness probe**: Check the probe configuration (path, port, initialDelaySeconds, periodSeconds, failureThreshold). A probe that is too aggressive or checks the wrong endpoint can kill healthy containers
   - **Readiness probe**: A failing readiness probe does not cause CrashLoopBackOff but may indicate the same underlying issue
   - **Startup probe**: If missing, the liveness probe may fire before the app is ready (common with slow-starting JVM apps)

6. **Get the full YAML** - Use k8s_get_yaml with resource_type="pod", resource_name=%[1]q, namespace=%[2]q to inspect the complete pod spec for any misconfigurations (wrong command, missing volume mounts, incorrect environment variables).

Produce a diagnosis with:
- **Crash Reason**: OOMKilled / Application Error / Probe Failure / Configuration Error
- **Evidence**: Specific log lines, events, or configuration values
- **Fix**: Concrete steps to resolve the issue (e.g., increase memory limit to X, fix liveness probe initialDelaySeconds, correct the image tag)`, podName, namespace),
	)
}

func preDeployChecklistPrompt(args map[string]string) *mcp.GetPromptResult {
	namespace := args["namespace"]
	return userPrompt(
		fmt.Sprintf("Pre-deployment checklist for namespace %s", namespace),
		fmt.Sprintf(`Run a pre-deployment checklist for namespace %[1]q to verify the environment is healthy before deploying:

1. **Current deployment status** - Use k8s_list_deployments with namespace=%[1]q. Verify that all deployments have their desired replica count available. Flag any deployment where ready < desired.

2. **Pod health check** - Use k8s_list_pods with namespace=%[1]q. Check that:
   - All pods are in Running or Succeeded state
   - No pods have high restart counts (> 3)
   - No pods are stuck in Pending, ImagePullBackOff, or CrashLoopBackOff

3. **Recent warning events** - Use k8s_list_events with namespace=%[1]q, warnings_only=true. Check for:
   - Any events in the last 15 minutes that indicate instability
   - Recurring patterns that suggest an ongoing issue
   - Resource quota or limit range violations

4. **Resource utilization** - Use k8s_top_pods with namespace=%[1]q to check current resource usage. Flag any pod using > 80%% of its memory limit (risk of OOM during deployment surge). Use k8s_top_nodes to verify nodes have headroom for additional pods during rolling updates.

5. **Service health** - Use k8s_list_services with namespace=%[1]q to verify services exist and have the expected configuration.

6. **Node readiness** - Use k8s_list_nodes to confirm all nodes are Ready and not cordoned. A deployment during node pressure may fail scheduling.

Produce a checklist report:
- **Status**: READY TO DEPLOY / CAUTION / DO NOT DEPLOY
- **Pre-existing Issues**: Any problems found that should be resolved first
- **Resource Headroom**: Available capacity for rolling update (nodes, CPU, memory)
- **Risks**: Potential issues that could affect the deployment
- **Recommendations**: Any actions to take before or during deployment`, namespace),
	)
}
