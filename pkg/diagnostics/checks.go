package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
)

// Runner is the slice of the executor the checks need.
type Runner interface {
	Run(ctx context.Context, req *kubectl.Request) (string, error)
	RunJSON(ctx context.Context, req *kubectl.Request, v interface{}) error
}

// Scope narrows a battery to one context and namespace. An empty
// Namespace scans all namespaces.
type Scope struct {
	Context          string
	Namespace        string
	RestartThreshold int
}

// DefaultRestartThreshold flags containers restarting repeatedly even
// when they are between crashes at scan time.
const DefaultRestartThreshold = 5

// criticalWaitReasons are container states that indicate the workload
// is broken right now rather than merely degraded.
var criticalWaitReasons = map[string]bool{
	"CrashLoopBackOff":     true,
	"Error":                true,
	"OOMKilled":            true,
	"ImagePullBackOff":     true,
	"ErrImagePull":         true,
	"CreateContainerError": true,
}

// Battery assembles the cluster health checks in their fixed report
// order: pods, nodes, deployments, statefulsets, daemonsets, jobs,
// pvcs, warning events.
func Battery(runner Runner, scope Scope) []Check {
	if scope.RestartThreshold <= 0 {
		scope.RestartThreshold = DefaultRestartThreshold
	}
	return []Check{
		{Name: "pods", Run: func(ctx context.Context) ([]Finding, error) { return checkPods(ctx, runner, scope) }},
		{Name: "nodes", Run: func(ctx context.Context) ([]Finding, error) { return checkNodes(ctx, runner, scope) }},
		{Name: "deployments", Run: func(ctx context.Context) ([]Finding, error) { return checkDeployments(ctx, runner, scope) }},
		{Name: "statefulsets", Run: func(ctx context.Context) ([]Finding, error) { return checkStatefulSets(ctx, runner, scope) }},
		{Name: "daemonsets", Run: func(ctx context.Context) ([]Finding, error) { return checkDaemonSets(ctx, runner, scope) }},
		{Name: "jobs", Run: func(ctx context.Context) ([]Finding, error) { return checkJobs(ctx, runner, scope) }},
		{Name: "pvcs", Run: func(ctx context.Context) ([]Finding, error) { return checkPVCs(ctx, runner, scope) }},
		{Name: "events", Run: func(ctx context.Context) ([]Finding, error) { return checkEvents(ctx, runner, scope) }},
	}
}

func (s Scope) listRequest(tool string, args ...string) *kubectl.Request {
	return &kubectl.Request{
		Tool:          tool,
		Context:       s.Context,
		Namespace:     s.Namespace,
		AllNamespaces: s.Namespace == "",
		Args:          args,
	}
}

func checkPods(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var pods corev1.PodList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "pods"), &pods); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range pods.Items {
		pod := &pods.Items[i]
		object := pod.Namespace + "/" + pod.Name

		containerCritical := false
		for _, cs := range pod.Status.ContainerStatuses {
			reason := ""
			detail := ""
			if cs.State.Waiting != nil {
				reason = cs.State.Waiting.Reason
				detail = cs.State.Waiting.Message
			} else if cs.State.Terminated != nil {
				reason = cs.State.Terminated.Reason
			}

			switch {
			case criticalWaitReasons[reason]:
				containerCritical = true
				f := Finding{Severity: SeverityCritical, Object: object}
				switch reason {
				case "CrashLoopBackOff", "Error", "OOMKilled":
					f.Message = fmt.Sprintf("%s: container %q restarted %d times", reason, cs.Name, cs.RestartCount)
					f.Suggestion = fmt.Sprintf("k8s_logs pod_name=%q namespace=%q previous=true", pod.Name, pod.Namespace)
				case "ImagePullBackOff", "ErrImagePull":
					f.Message = fmt.Sprintf("%s: image %q not found", reason, cs.Image)
					f.Suggestion = fmt.Sprintf("k8s_describe resource_type=\"pod\" resource_name=%q namespace=%q", pod.Name, pod.Namespace)
				default:
					f.Message = reason
					if detail != "" {
						f.Message += ": " + detail
					}
					f.Suggestion = fmt.Sprintf("k8s_describe resource_type=\"pod\" resource_name=%q namespace=%q", pod.Name, pod.Namespace)
				}
				findings = append(findings, f)

			case int(cs.RestartCount) >= scope.RestartThreshold:
				containerCritical = true
				msg := fmt.Sprintf("container %q restarted %d times", cs.Name, cs.RestartCount)
				if reason != "" {
					msg += fmt.Sprintf(" (%s)", reason)
				}
				findings = append(findings, Finding{
					Severity:   SeverityCritical,
					Object:     object,
					Message:    msg,
					Suggestion: fmt.Sprintf("k8s_logs pod_name=%q namespace=%q previous=true", pod.Name, pod.Namespace),
				})
			}
		}

		phase := pod.Status.Phase
		if phase != corev1.PodRunning && phase != corev1.PodSucceeded && !containerCritical {
			msg := fmt.Sprintf("phase=%s", phase)
			if pod.Status.Reason != "" {
				msg += fmt.Sprintf(" (%s)", pod.Status.Reason)
			}
			findings = append(findings, Finding{Severity: SeverityWarning, Object: object, Message: msg})
		}
	}
	return findings, nil
}

func checkNodes(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var nodes corev1.NodeList
	req := &kubectl.Request{Tool: "k8s_find_issues", Context: scope.Context, Args: []string{"get", "nodes"}}
	if err := runner.RunJSON(ctx, req, &nodes); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range nodes.Items {
		node := &nodes.Items[i]
		for _, cond := range node.Status.Conditions {
			// Ready should be True; every other condition type
			// signals a problem when True.
			if cond.Type == corev1.NodeReady {
				if cond.Status != corev1.ConditionTrue {
					findings = append(findings, Finding{
						Severity: SeverityCritical,
						Object:   node.Name,
						Message:  fmt.Sprintf("NotReady (%s): %s", cond.Reason, cond.Message),
					})
				}
			} else if cond.Status == corev1.ConditionTrue {
				findings = append(findings, Finding{
					Severity: SeverityCritical,
					Object:   node.Name,
					Message:  fmt.Sprintf("%s (%s): %s", cond.Type, cond.Reason, cond.Message),
				})
			}
		}
	}
	return findings, nil
}

func checkDeployments(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var deployments appsv1.DeploymentList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "deployments"), &deployments); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range deployments.Items {
		dep := &deployments.Items[i]
		object := dep.Namespace + "/" + dep.Name
		desired := int32(0)
		if dep.Spec.Replicas != nil {
			desired = *dep.Spec.Replicas
		}

		if dep.Status.UnavailableReplicas > 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   object,
				Message:  fmt.Sprintf("%d/%d replicas unavailable", dep.Status.UnavailableReplicas, desired),
			})
		} else if desired > 0 && dep.Status.ReadyReplicas == 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   object,
				Message:  fmt.Sprintf("%d/%d replicas unavailable (all replicas down)", desired, desired),
			})
		}
	}
	return findings, nil
}

func checkStatefulSets(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var sets appsv1.StatefulSetList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "statefulsets"), &sets); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range sets.Items {
		sts := &sets.Items[i]
		desired := int32(0)
		if sts.Spec.Replicas != nil {
			desired = *sts.Spec.Replicas
		}
		if desired > 0 && sts.Status.ReadyReplicas < desired {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   sts.Namespace + "/" + sts.Name,
				Message:  fmt.Sprintf("statefulset %d/%d replicas unavailable", desired-sts.Status.ReadyReplicas, desired),
			})
		}
	}
	return findings, nil
}

func checkDaemonSets(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var sets appsv1.DaemonSetList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "daemonsets"), &sets); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range sets.Items {
		ds := &sets.Items[i]
		desired := ds.Status.DesiredNumberScheduled
		if desired > 0 && ds.Status.NumberReady < desired {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   ds.Namespace + "/" + ds.Name,
				Message:  fmt.Sprintf("DaemonSet %d/%d pods not ready", desired-ds.Status.NumberReady, desired),
			})
		}
	}
	return findings, nil
}

func checkJobs(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var jobs batchv1.JobList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "jobs"), &jobs); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range jobs.Items {
		job := &jobs.Items[i]
		object := job.Namespace + "/" + job.Name

		var failedCond *batchv1.JobCondition
		for c := range job.Status.Conditions {
			cond := &job.Status.Conditions[c]
			if cond.Type == batchv1.JobFailed && cond.Status == corev1.ConditionTrue {
				failedCond = cond
				break
			}
		}

		switch {
		case failedCond != nil:
			reason := failedCond.Reason
			if reason == "" {
				reason = "unknown"
			}
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   object,
				Message:  fmt.Sprintf("Job failed (%s)", reason),
			})
		case job.Status.Failed > 0 && job.Status.Succeeded == 0:
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   object,
				Message:  fmt.Sprintf("Job has %d failure(s), no successes", job.Status.Failed),
			})
		case job.Status.Active == 0 && job.Status.Succeeded == 0 && job.Status.Failed == 0 && job.Status.CompletionTime == nil:
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Object:   object,
				Message:  "Job appears stuck (no active/succeeded/failed pods)",
			})
		}
	}
	return findings, nil
}

func checkPVCs(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var claims corev1.PersistentVolumeClaimList
	if err := runner.RunJSON(ctx, scope.listRequest("k8s_find_issues", "get", "pvc"), &claims); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range claims.Items {
		pvc := &claims.Items[i]
		if pvc.Status.Phase == corev1.ClaimBound {
			continue
		}
		msg := fmt.Sprintf("PVC phase=%s", pvc.Status.Phase)
		if pvc.Spec.StorageClassName != nil && *pvc.Spec.StorageClassName != "" {
			msg += fmt.Sprintf(" (storageclass %q)", *pvc.Spec.StorageClassName)
		}
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Object:   pvc.Namespace + "/" + pvc.Name,
			Message:  msg,
		})
	}
	return findings, nil
}

// eventWindow caps the event section at the most recent entries.
const eventWindow = 20

func checkEvents(ctx context.Context, runner Runner, scope Scope) ([]Finding, error) {
	var events corev1.EventList
	req := scope.listRequest("k8s_find_issues", "get", "events", "--field-selector=type=Warning", "--sort-by=.lastTimestamp")
	if err := runner.RunJSON(ctx, req, &events); err != nil {
		return nil, err
	}

	var findings []Finding
	for i := range events.Items {
		ev := &events.Items[i]
		ts := ev.LastTimestamp.Time
		if ts.IsZero() {
			ts = ev.CreationTimestamp.Time
		}

		msg := fmt.Sprintf("%s %s: %s", ev.InvolvedObject.Kind, ev.Reason, ev.Message)
		if ev.Count > 1 {
			msg += fmt.Sprintf(" (x%d)", ev.Count)
		}
		msg += fmt.Sprintf(" (%s ago)", formatAge(ts))

		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Object:   ev.Namespace + "/" + ev.InvolvedObject.Name,
			Message:  msg,
		})
	}

	if len(findings) > eventWindow {
		findings = findings[len(findings)-eventWindow:]
	}
	return findings, nil
}

// formatAge renders a timestamp as a compact relative age.
func formatAge(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	d := time.Since(ts)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// objectName extracts the bare name from a namespace/name object key.
func objectName(object string) string {
	if i := strings.LastIndex(object, "/"); i >= 0 {
		return object[i+1:]
	}
	return object
}
