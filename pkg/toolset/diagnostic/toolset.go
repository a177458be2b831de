// Package diagnostic provides the investigation toolset: describe,
// logs, resource usage, rollouts, the cluster health scan, and the
// server self-test.
package diagnostic

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

// Toolset implements the diagnostic toolset.
type Toolset struct {
	// ToolCount reports the number of registered tools for the
	// self-test summary. Set by the server after registration.
	ToolCount func() int
}

var _ toolset.Toolset = (*Toolset)(nil)

var (
	contextProperty = map[string]any{
		"type":        "string",
		"description": "Kubernetes context to use. Defaults to the current context.",
	}
	namespaceProperty = map[string]any{
		"type":        "string",
		"description": "Kubernetes namespace. Defaults to the current context's namespace.",
	}
	containerProperty = map[string]any{
		"type":        "string",
		"description": "Container name, for multi-container pods.",
	}
	sinceProperty = map[string]any{
		"type":        "string",
		"description": "Only logs newer than this, e.g. '10m', '2h'.",
	}
)

// GetName returns the name of the toolset
func (t *Toolset) GetName() string {
	return "diagnostic"
}

// GetDescription returns the description of the toolset
func (t *Toolset) GetDescription() string {
	return "Investigation tools: describe, logs, resource usage, rollout state, cluster health scan, and self-test"
}

// GetTools returns the tools provided by this toolset
func (t *Toolset) GetTools(exec *kubectl.Executor) []toolset.ServerTool {
	readOnly := toolset.ToolAnnotations{ReadOnlyHint: paramutil.BoolPtr(true)}

	return []toolset.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "k8s_describe",
				Description: "Describe any resource: full details, conditions, and related events.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type", "resource_name"},
					Properties: map[string]any{
						"resource_type": map[string]any{
							"type":        "string",
							"description": "Resource type, e.g. 'pod', 'deployment', 'node'.",
						},
						"resource_name": map[string]any{
							"type":        "string",
							"description": "Resource name.",
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     describeHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_logs",
				Description: "Fetch logs from a pod. Use previous=true for the crashed container's last run, filter='errors' to reduce to error lines with context.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"pod_name"},
					Properties: map[string]any{
						"pod_name": map[string]any{
							"type":        "string",
							"description": "Pod name.",
						},
						"container": containerProperty,
						"tail_lines": map[string]any{
							"type":        "integer",
							"description": "Number of trailing lines to fetch.",
							"default":     100,
						},
						"previous": map[string]any{
							"type":        "boolean",
							"description": "Fetch logs from the previous container instance (after a crash).",
							"default":     false,
						},
						"since": sinceProperty,
						"filter": map[string]any{
							"type":        "string",
							"enum":        []string{"errors"},
							"description": "Set to 'errors' to keep only error-matching lines with 2 lines of context.",
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     logsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_logs_selector",
				Description: "Fetch logs from all pods matching a label selector, each line prefixed with its pod name.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"label_selector"},
					Properties: map[string]any{
						"label_selector": map[string]any{
							"type":        "string",
							"description": "Label selector, e.g. 'app=nginx'.",
						},
						"container": containerProperty,
						"tail_lines": map[string]any{
							"type":        "integer",
							"description": "Number of trailing lines per pod.",
							"default":     50,
						},
						"since":     sinceProperty,
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     logsSelectorHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_top_pods",
				Description: "Show CPU and memory usage per pod (requires metrics-server).",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"label_selector": map[string]any{
							"type":        "string",
							"description": "Label selector filter.",
						},
						"sort_by": map[string]any{
							"type":        "string",
							"enum":        []string{"cpu", "memory"},
							"description": "Sort by cpu or memory.",
						},
						"namespace":      namespaceProperty,
						"all_namespaces": map[string]any{"type": "boolean", "default": false},
						"context":        contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     topPodsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_top_nodes",
				Description: "Show CPU and memory usage per node (requires metrics-server).",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"context": contextProperty},
				},
			},
			Annotations: readOnly,
			Handler:     topNodesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_rollout_status",
				Description: "Check the rollout status of a deployment.",
				InputSchema: deploymentSchema(),
			},
			Annotations: readOnly,
			Handler:     rolloutStatusHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_rollout_history",
				Description: "Show the revision history of a deployment.",
				InputSchema: deploymentSchema(),
			},
			Annotations: readOnly,
			Handler:     rolloutHistoryHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_get_yaml",
				Description: "Fetch a resource as YAML with managed fields stripped and Secret data masked. Set raw=true for the unmodified server object.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type", "resource_name"},
					Properties: map[string]any{
						"resource_type": map[string]any{
							"type":        "string",
							"description": "Resource type, e.g. 'deployment'.",
						},
						"resource_name": map[string]any{
							"type":        "string",
							"description": "Resource name.",
						},
						"raw": map[string]any{
							"type":        "boolean",
							"description": "Return the unmodified object, including managed fields.",
							"default":     false,
						},
						"show_sensitive_data": map[string]any{
							"type":        "boolean",
							"description": "Show Secret data values instead of masking them with '***'.",
							"default":     false,
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     getYamlHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_exec",
				Description: "Run a shell command inside a pod and return its output. Intended for read-only inspection commands.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"pod_name", "command"},
					Properties: map[string]any{
						"pod_name": map[string]any{
							"type":        "string",
							"description": "Pod name.",
						},
						"command": map[string]any{
							"type":        "string",
							"description": "Shell command to run, e.g. 'cat /etc/resolv.conf'.",
						},
						"container": containerProperty,
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     execHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_find_issues",
				Description: "Scan the cluster for problems: crashing pods, unhealthy nodes, degraded workloads, unbound PVCs, and recent warning events, in one pass.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"namespace": map[string]any{
							"type":        "string",
							"description": "Limit the scan to one namespace. Defaults to the whole cluster.",
						},
						"restart_threshold": map[string]any{
							"type":        "integer",
							"description": "Flag containers with at least this many restarts.",
							"default":     5,
						},
						"context": contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     findIssuesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_capacity",
				Description: "Per-node resource capacity: CPU and memory requests and limits against allocatable, pod counts, and optional live utilization.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"namespace": map[string]any{
							"type":        "string",
							"description": "Only count pods in this namespace. Defaults to all namespaces.",
						},
						"label_selector": map[string]any{
							"type":        "string",
							"description": "Only count pods matching this label selector.",
						},
						"show_pods": map[string]any{
							"type":        "boolean",
							"description": "Include a per-pod breakdown under each node.",
						},
						"show_util": map[string]any{
							"type":        "boolean",
							"description": "Include live utilization from the metrics server.",
						},
						"sort_by": map[string]any{
							"type":        "string",
							"description": "Sort nodes by: name, cpu.request, cpu.limit, cpu.util, mem.request, mem.limit, mem.util, pod.count.",
						},
						"format":  map[string]any{"type": "string", "enum": []string{"table", "yaml", "json"}},
						"context": contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     capacityHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_self_test",
				Description: "Check the server's own prerequisites: kubectl binary, cluster connectivity, RBAC access, and metrics availability.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"context": contextProperty},
				},
			},
			Annotations: readOnly,
			Handler:     t.selfTestHandler,
		},
	}
}

func deploymentSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:     "object",
		Required: []string{"deployment_name"},
		Properties: map[string]any{
			"deployment_name": map[string]any{
				"type":        "string",
				"description": "Deployment name.",
			},
			"namespace": namespaceProperty,
			"context":   contextProperty,
		},
	}
}
