package awareness

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/output"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

// scopedRequest builds a read-only request carrying the shared
// context/namespace/all_namespaces parameters.
func scopedRequest(tool string, params map[string]interface{}, args ...string) *kubectl.Request {
	return &kubectl.Request{
		Tool:          tool,
		Context:       paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Namespace:     paramutil.ExtractOptionalString(params, paramutil.ParamNamespace),
		AllNamespaces: paramutil.ExtractBool(params, paramutil.ParamAllNamespaces, false),
		Args:          args,
	}
}

func clusterInfoHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	kubeContext := paramutil.ExtractOptionalString(params, paramutil.ParamContext)

	probes := []*kubectl.Request{
		{Tool: "k8s_cluster_info", Context: kubeContext, Args: []string{"config", "current-context"}},
		{Tool: "k8s_cluster_info", Context: kubeContext, Args: []string{"version"}},
		{Tool: "k8s_cluster_info", Context: kubeContext, Class: kubectl.TimeoutConnectivity, Args: []string{"cluster-info"}},
	}
	outputs := make([]string, len(probes))
	errs := make([]error, len(probes))

	var wg sync.WaitGroup
	for i, req := range probes {
		wg.Add(1)
		go func(slot int, r *kubectl.Request) {
			defer wg.Done()
			outputs[slot], errs[slot] = exec.Run(ctx, r)
		}(i, req)
	}
	wg.Wait()

	// Partial answers beat no answer: a probe that fails reports its
	// own error inline instead of failing the whole tool.
	parts := make([]string, 0, 3)
	if errs[0] != nil {
		parts = append(parts, fmt.Sprintf("Current context: (unavailable: %v)", errs[0]))
	} else {
		parts = append(parts, "Current context: "+outputs[0])
	}
	if errs[1] != nil {
		parts = append(parts, fmt.Sprintf("Version info: (unavailable: %v)", errs[1]))
	} else {
		parts = append(parts, outputs[1])
	}
	if errs[2] != nil {
		parts = append(parts, fmt.Sprintf("Cluster info: (unavailable: %v)", errs[2]))
	} else {
		parts = append(parts, outputs[2])
	}
	return strings.Join(parts, "\n\n"), nil
}

// getContextsHandler reads the local kubeconfig directly rather than
// shelling out, which also lets it mark which contexts the server is
// allowed to target.
func getContextsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	cfg, err := rules.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if len(cfg.Contexts) == 0 {
		return "No contexts found in kubeconfig.", nil
	}

	allowed := exec.Config().AllowedContexts
	isAllowed := func(name string) bool {
		if len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == name {
				return true
			}
		}
		return false
	}

	names := make([]string, 0, len(cfg.Contexts))
	for name := range cfg.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]map[string]string, 0, len(names))
	for _, name := range names {
		kctx := cfg.Contexts[name]
		current := ""
		if name == cfg.CurrentContext {
			current = "*"
		}
		allowedMark := "yes"
		if !isAllowed(name) {
			allowedMark = "no"
		}
		rows = append(rows, map[string]string{
			"CURRENT":   current,
			"NAME":      name,
			"CLUSTER":   kctx.Cluster,
			"AUTHINFO":  kctx.AuthInfo,
			"NAMESPACE": kctx.Namespace,
			"ALLOWED":   allowedMark,
		})
	}

	formatter := output.NewFormatter()
	return formatter.FormatTableWithHeaders(rows, []string{"CURRENT", "NAME", "CLUSTER", "AUTHINFO", "NAMESPACE", "ALLOWED"}), nil
}

func listNamespacesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	req := scopedRequest("k8s_list_namespaces", params, "get", "namespaces")
	req.Namespace = ""
	req.AllNamespaces = false
	return exec.Run(ctx, req)
}

func listNodesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	req := &kubectl.Request{
		Tool:    "k8s_list_nodes",
		Context: paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Args:    []string{"get", "nodes", "-o", "wide"},
	}
	out, err := exec.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return summarizeNodes(out), nil
}

func listPodsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	args := []string{"get", "pods", "-o", "wide"}
	if selector := paramutil.ExtractOptionalString(params, paramutil.ParamLabelSelector); selector != "" {
		args = append(args, "-l", selector)
	}
	out, err := exec.Run(ctx, scopedRequest("k8s_list_pods", params, args...))
	if err != nil {
		return "", err
	}
	return summarizePods(out), nil
}

func listDeploymentsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	out, err := exec.Run(ctx, scopedRequest("k8s_list_deployments", params, "get", "deployments"))
	if err != nil {
		return "", err
	}
	return summarizeDeployments(out), nil
}

func listServicesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	out, err := exec.Run(ctx, scopedRequest("k8s_list_services", params, "get", "services"))
	if err != nil {
		return "", err
	}
	return summarizeServices(out), nil
}

func listEventsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	warningsOnly := paramutil.ExtractBool(params, "warnings_only", false)
	args := []string{"get", "events", "--sort-by=.lastTimestamp"}
	if warningsOnly {
		args = append(args, "--field-selector=type=Warning")
	}

	req := scopedRequest("k8s_list_events", params, args...)
	// Events default to cluster-wide unless a namespace was asked for.
	if req.Namespace == "" {
		req.AllNamespaces = true
	}

	out, err := exec.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return summarizeEvents(out, warningsOnly), nil
}

func listImagesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	columns := "custom-columns=" +
		"NAMESPACE:.metadata.namespace," +
		"POD:.metadata.name," +
		"CONTAINER:.spec.containers[*].name," +
		"IMAGE:.spec.containers[*].image"
	return exec.Run(ctx, scopedRequest("k8s_list_images", params, "get", "pods", "-o", columns))
}

// listSecretsHandler lists secrets through the plain kubectl table,
// which shows name, type, key count, and age but never the data.
func listSecretsHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	return exec.Run(ctx, scopedRequest("k8s_list_secrets", params, "get", "secrets"))
}

// configMapValueLimit caps how much of a single ConfigMap value is
// rendered before truncation.
const configMapValueLimit = 2000

func getConfigMapDataHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	name, err := paramutil.ExtractRequiredString(params, "configmap_name")
	if err != nil {
		return "", err
	}

	var cm corev1.ConfigMap
	req := scopedRequest("k8s_get_configmap_data", params, "get", "configmap", name)
	req.AllNamespaces = false
	if err := exec.RunJSON(ctx, req, &cm); err != nil {
		return "", err
	}

	return renderConfigMapData(&cm, name, paramutil.ExtractOptionalString(params, "key"))
}

// renderConfigMapData formats a ConfigMap's contents: a single key's
// value when key is set, otherwise every key in sorted order. Binary
// keys show their byte size only.
func renderConfigMapData(cm *corev1.ConfigMap, name, key string) (string, error) {
	if key != "" {
		if value, ok := cm.Data[key]; ok {
			return fmt.Sprintf("%s:\n%s", key, value), nil
		}
		if value, ok := cm.BinaryData[key]; ok {
			return fmt.Sprintf("%s: (binary data, %d bytes)", key, len(value)), nil
		}
		available := make([]string, 0, len(cm.Data)+len(cm.BinaryData))
		for k := range cm.Data {
			available = append(available, k)
		}
		for k := range cm.BinaryData {
			available = append(available, k)
		}
		sort.Strings(available)
		return "", fmt.Errorf("key %q not found in ConfigMap %q (available keys: %s)", key, name, strings.Join(available, ", "))
	}

	dataKeys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		dataKeys = append(dataKeys, k)
	}
	sort.Strings(dataKeys)
	binaryKeys := make([]string, 0, len(cm.BinaryData))
	for k := range cm.BinaryData {
		binaryKeys = append(binaryKeys, k)
	}
	sort.Strings(binaryKeys)

	var b strings.Builder
	fmt.Fprintf(&b, "ConfigMap: %s\nKeys: %d\n\n", name, len(dataKeys)+len(binaryKeys))
	for _, k := range dataKeys {
		value := cm.Data[k]
		if len(value) > configMapValueLimit {
			value = fmt.Sprintf("%s\n... (%d bytes total, truncated)", value[:configMapValueLimit], len(cm.Data[k]))
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", k, value)
	}
	for _, k := range binaryKeys {
		fmt.Fprintf(&b, "--- %s (binary, %d bytes) ---\n\n", k, len(cm.BinaryData[k]))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func getHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	resourceType, err := paramutil.ExtractRequiredString(params, paramutil.ParamResourceType)
	if err != nil {
		return "", err
	}

	args := []string{"get", resourceType}
	if name := paramutil.ExtractOptionalString(params, paramutil.ParamName); name != "" {
		args = append(args, name)
	}
	switch format := paramutil.ExtractOptionalStringWithDefault(params, "output", "wide"); format {
	case "wide", "yaml", "json", "name":
		args = append(args, "-o", format)
	default:
		return "", fmt.Errorf("%w: output %q (supported: wide, yaml, json, name)", paramutil.ErrInvalidParameter, format)
	}
	if selector := paramutil.ExtractOptionalString(params, paramutil.ParamLabelSelector); selector != "" {
		args = append(args, "-l", selector)
	}
	if selector := paramutil.ExtractOptionalString(params, paramutil.ParamFieldSelector); selector != "" {
		args = append(args, "--field-selector", selector)
	}

	return exec.Run(ctx, scopedRequest("k8s_get", params, args...))
}

func apiResourcesHandler(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error) {
	req := &kubectl.Request{
		Tool:    "k8s_api_resources",
		Context: paramutil.ExtractOptionalString(params, paramutil.ParamContext),
		Args:    []string{"api-resources"},
	}
	return exec.Run(ctx, req)
}
