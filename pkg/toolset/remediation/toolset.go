// Package remediation provides the write-path toolset. Every tool here
// is mutating (except k8s_diff) and flows through the policy gate and
// audit log.
package remediation

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

// Toolset implements the remediation toolset.
type Toolset struct{}

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
	resourceTypeProperty = map[string]any{
		"type":        "string",
		"description": "Resource type, e.g. 'deployment', 'statefulset'.",
	}
	resourceNameProperty = map[string]any{
		"type":        "string",
		"description": "Resource name.",
	}
	manifestProperty = map[string]any{
		"type":        "string",
		"description": "YAML manifest content (multi-document supported).",
	}
)

// GetName returns the name of the toolset
func (t *Toolset) GetName() string {
	return "remediation"
}

// GetDescription returns the description of the toolset
func (t *Toolset) GetDescription() string {
	return "Write operations: restarts, scaling, deletions, manifests, patches, and node maintenance"
}

// GetTools returns the tools provided by this toolset
func (t *Toolset) GetTools(exec *kubectl.Executor) []toolset.ServerTool {
	mutating := toolset.ToolAnnotations{
		ReadOnlyHint:    paramutil.BoolPtr(false),
		DestructiveHint: paramutil.BoolPtr(true),
	}
	readOnly := toolset.ToolAnnotations{ReadOnlyHint: paramutil.BoolPtr(true)}

	return []toolset.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "k8s_restart_deployment",
				Description: "Rolling restart of a deployment, followed by a short status check.",
				InputSchema: mcp.ToolInputSchema{
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
				},
			},
			Annotations: mutating,
			Handler:     restartDeploymentHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_scale",
				Description: "Scale a workload to a replica count. Scaling to 0 requires confirm_scale_to_zero=true.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type", "resource_name", "replicas"},
					Properties: map[string]any{
						"resource_type": resourceTypeProperty,
						"resource_name": resourceNameProperty,
						"replicas": map[string]any{
							"type":        "integer",
							"description": "Target replica count.",
						},
						"confirm_scale_to_zero": map[string]any{
							"type":        "boolean",
							"description": "Must be true to scale a workload to 0 replicas.",
							"default":     false,
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     scaleHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_delete_pod",
				Description: "Delete a pod (its controller will replace it). Set force=true only for pods stuck terminating.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"pod_name"},
					Properties: map[string]any{
						"pod_name": map[string]any{
							"type":        "string",
							"description": "Pod name.",
						},
						"force": map[string]any{
							"type":        "boolean",
							"description": "Delete immediately with no grace period.",
							"default":     false,
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     deletePodHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_rollback_deployment",
				Description: "Roll a deployment back to the previous revision, or a specific one.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"deployment_name"},
					Properties: map[string]any{
						"deployment_name": map[string]any{
							"type":        "string",
							"description": "Deployment name.",
						},
						"revision": map[string]any{
							"type":        "integer",
							"description": "Revision to roll back to. Omit for the previous one.",
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     rollbackDeploymentHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_apply_manifest",
				Description: "Apply a YAML manifest. The payload is validated before kubectl sees it; cluster-scoped RBAC/CRD kinds are blocked by default. Use dry_run=true for a server-side dry run.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"manifest"},
					Properties: map[string]any{
						"manifest": manifestProperty,
						"dry_run": map[string]any{
							"type":        "boolean",
							"description": "Server-side dry run; nothing is persisted.",
							"default":     false,
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     applyManifestHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_patch_resource",
				Description: "Patch a resource in place with a strategic, merge, or JSON patch.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type", "resource_name", "patch"},
					Properties: map[string]any{
						"resource_type": resourceTypeProperty,
						"resource_name": resourceNameProperty,
						"patch": map[string]any{
							"type":        "string",
							"description": "Patch content (JSON or YAML).",
						},
						"patch_type": map[string]any{
							"type":        "string",
							"enum":        []string{"strategic", "merge", "json"},
							"default":     "strategic",
							"description": "Patch strategy.",
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     patchResourceHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_node_operation",
				Description: "Cordon, uncordon, or drain a node. Drain runs with an extended timeout and usually needs ignore_daemonsets=true.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"operation", "node_name"},
					Properties: map[string]any{
						"operation": map[string]any{
							"type":        "string",
							"enum":        []string{"cordon", "uncordon", "drain"},
							"description": "Node maintenance operation.",
						},
						"node_name": map[string]any{
							"type":        "string",
							"description": "Node name.",
						},
						"ignore_daemonsets": map[string]any{
							"type":        "boolean",
							"description": "Proceed with drain even though daemonset pods cannot be evicted.",
							"default":     false,
						},
						"delete_emptydir_data": map[string]any{
							"type":        "boolean",
							"description": "Allow drain to delete pods using emptyDir volumes, losing their data.",
							"default":     false,
						},
						"context": contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     nodeOperationHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_delete_resource",
				Description: "Delete a resource by type and name.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type", "resource_name"},
					Properties: map[string]any{
						"resource_type": resourceTypeProperty,
						"resource_name": resourceNameProperty,
						"namespace":     namespaceProperty,
						"context":       contextProperty,
					},
				},
			},
			Annotations: mutating,
			Handler:     deleteResourceHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_diff",
				Description: "Show what applying a manifest would change, without applying it. Read-only.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"manifest"},
					Properties: map[string]any{
						"manifest":  manifestProperty,
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     diffHandler,
		},
	}
}
