package diagnostic

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kubemcp/kubectl-mcp-server/pkg/diagnostics"
	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/output"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/diagnostic/capacity"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/handler"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

func scopedRequest(tool string, params map[string]interface{}, args ...string) *kubectl.Request {
	return &kubectl.Request{
		Tool:          tool,
		Context:       paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace:     paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		AllNamespaces: paramutil.ExtractBool(params, paramutil.ParamAllNamespaces, false),
		Args:          args,
	}
}

func describeHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	_, resourceType, err := paramutil.ResolveKind(params)
	if err != nil {
		return "", err
	}
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceName)
	if err != nil {
		return "", err
	}
	req := scopedRequest("k8s_describe", params, "describe", strings.ToLower(resourceType), name)
	req.AllNamespaces = false
	return exec.Run(ctx, req)
}

func logsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	pod, err := paramutil.ExtractRequiredString(params, paramutil.ParamPodName)
	if err != nil {
		return "", err
	}

	tail := paramutil.ExtractInt64(params, paramutil.ParamTailLines, 100)
	args := []string{"logs", pod, fmt.Sprintf("--tail=%d", tail)}
	if container := paramutil.ExtractOptionalString(params, paramutil.ParamContainer); container != "" {
		args = append(args, "-c", container)
	}
	if paramutil.ExtractBool(params, paramutil.ParamPrevious, false) {
		args = append(args, "--previous")
	}
	if since := paramutil.ExtractOptionalString(params, "since"); since != "" {
		args = append(args, "--since="+since)
	}

	req := scopedRequest("k8s_logs", params, args...)
	req.AllNamespaces = false
	out, err := exec.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "(no log output)", nil
	}
	if paramutil.ExtractOptionalString(params, "filter") == "errors" {
		out = filterErrorLines(out)
	}
	return out, nil
}

func logsSelectorHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	selector, err := paramutil.ExtractRequiredString(params, paramutil.ParamLabelSelector)
	if err != nil {
		return "", err
	}

	tail := paramutil.ExtractInt64(params, paramutil.ParamTailLines, 50)
	args := []string{"logs", "-l", selector, fmt.Sprintf("--tail=%d", tail), "--prefix=true"}
	if container := paramutil.ExtractOptionalString(params, paramutil.ParamContainer); container != "" {
		args = append(args, "-c", container)
	}
	if since := paramutil.ExtractOptionalString(params, "since"); since != "" {
		args = append(args, "--since="+since)
	}

	req := scopedRequest("k8s_logs_selector", params, args...)
	req.AllNamespaces = false
	out, err := exec.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "(no log output)", nil
	}
	return out, nil
}

func topPodsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	args := []string{"top", "pods"}
	if selector := paramutil.ExtractOptionalString(params, paramutil.ParamLabelSelector); selector != "" {
		args = append(args, "-l", selector)
	}
	if sortBy := paramutil.ExtractOptionalString(params, paramutil.ParamSortBy); sortBy != "" {
		args = append(args, "--sort-by="+sortBy)
	}
	return exec.Run(ctx, scopedRequest("k8s_top_pods", params, args...))
}

func topNodesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	req := &kubectl.Request{
		Tool:    "k8s_top_nodes",
		Context: paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Args:    []string{"top", "nodes"},
	}
	return exec.Run(ctx, req)
}

func rolloutStatusHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamDeploymentName)
	if err != nil {
		return "", err
	}
	req := scopedRequest("k8s_rollout_status", params, "rollout", "status", "deployment/"+name, "--timeout=30s")
	req.AllNamespaces = false
	req.Class = kubectl.TimeoutRollout
	return exec.Run(ctx, req)
}

func rolloutHistoryHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamDeploymentName)
	if err != nil {
		return "", err
	}
	req := scopedRequest("k8s_rollout_history", params, "rollout", "history", "deployment/"+name)
	req.AllNamespaces = false
	return exec.Run(ctx, req)
}

// getYamlHandler fetches a resource and renders it as YAML with the
// server bookkeeping fields stripped and Secret data masked, unless
// raw output was asked for.
func getYamlHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kind, resourceType, err := paramutil.ResolveKind(params)
	if err != nil {
		return "", err
	}
	name, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceName)
	if err != nil {
		return "", err
	}

	if paramutil.ExtractBool(params, paramutil.ParamRaw, false) {
		req := scopedRequest("k8s_get_yaml", params, "get", strings.ToLower(resourceType), name, "-o", "yaml")
		req.AllNamespaces = false
		req.Kind = kind
		return exec.Run(ctx, req)
	}

	var raw map[string]interface{}
	req := scopedRequest("k8s_get_yaml", params, "get", strings.ToLower(resourceType), name)
	req.AllNamespaces = false
	req.Kind = kind
	if err := exec.RunJSON(ctx, req, &raw); err != nil {
		return "", err
	}

	obj := &unstructured.Unstructured{Object: raw}
	handler.StripNoise(obj)
	obj = handler.NewRedactorFromParams(params).Redact(obj)

	rendered, err := yaml.Marshal(obj.Object)
	if err != nil {
		return "", fmt.Errorf("failed to render YAML: %w", err)
	}
	return string(rendered), nil
}

func execHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	pod, err := paramutil.ExtractRequiredString(params, paramutil.ParamPodName)
	if err != nil {
		return "", err
	}
	command, err := paramutil.ExtractRequiredString(params, paramutil.ParamCommand)
	if err != nil {
		return "", err
	}

	args := []string{"exec", pod}
	if container := paramutil.ExtractOptionalString(params, paramutil.ParamContainer); container != "" {
		args = append(args, "-c", container)
	}
	args = append(args, "--", "sh", "-c", command)

	req := scopedRequest("k8s_exec", params, args...)
	req.AllNamespaces = false
	out, err := exec.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "(no output)", nil
	}
	return out, nil
}

func findIssuesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	scope := diagnostics.Scope{
		Context:          paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace:        paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		RestartThreshold: int(paramutil.ExtractInt64(params, paramutil.ParamRestartThreshold, diagnostics.DefaultRestartThreshold)),
	}
	report := diagnostics.Run(ctx, diagnostics.Battery(exec, scope))
	return diagnostics.RenderHealthScan(report), nil
}

func capacityHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	format := paramutil.ExtractFormat(params)
	if err := paramutil.ValidateFormat(format); err != nil {
		return "", err
	}

	analyzer := capacity.NewAnalyzer(exec)
	result, err := analyzer.Analyze(ctx, capacity.Params{
		Context:       paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace:     paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		LabelSelector: paramutil.ExtractOptionalString(params, paramutil.ParamLabelSelector),
		SortBy:        paramutil.ExtractOptionalString(params, paramutil.ParamSortBy),
		ShowPods:      paramutil.ExtractBool(params, "show_pods", false),
		ShowUtil:      paramutil.ExtractBool(params, "show_util", false),
	})
	if err != nil {
		return "", err
	}

	if format != paramutil.FormatTable {
		return output.NewFormatter().Format(result, format)
	}
	return capacity.FormatAsTable(result), nil
}

func (t *Toolset) selfTestHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kubeContext := paramutil.ExtractOptionalString(params, paramutil.ParamContext)
	count := 0
	if t.ToolCount != nil {
		count = t.ToolCount()
	}
	return diagnostics.SelfTest(ctx, exec, kubeContext, count), nil
}
