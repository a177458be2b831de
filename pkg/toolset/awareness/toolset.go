// Package awareness provides the read-only cluster awareness toolset.
package awareness

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

// Toolset implements the awareness toolset.
type Toolset struct{}

var _ toolset.Toolset = (*Toolset)(nil)

// Shared schema fragments for the parameters most tools accept.
var (
	contextProperty = map[string]any{
		"type":        "string",
		"description": "Kubernetes context to use. Defaults to the current context.",
	}
	namespaceProperty = map[string]any{
		"type":        "string",
		"description": "Kubernetes namespace. Defaults to the current context's namespace.",
	}
	allNamespacesProperty = map[string]any{
		"type":        "boolean",
		"description": "Search across all namespaces. Default: false.",
		"default":     false,
	}
	labelSelectorProperty = map[string]any{
		"type":        "string",
		"description": "Label selector filter, e.g. 'app=nginx,env=prod'.",
	}
)

func namespacedSchema(extra map[string]any) mcp.ToolInputSchema {
	props := map[string]any{
		"namespace":      namespaceProperty,
		"all_namespaces": allNamespacesProperty,
		"context":        contextProperty,
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{Type: "object", Properties: props}
}

func clusterScopedSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]any{"context": contextProperty},
	}
}

// GetName returns the name of the toolset
func (t *Toolset) GetName() string {
	return "awareness"
}

// GetDescription returns the description of the toolset
func (t *Toolset) GetDescription() string {
	return "Read-only cluster awareness: contexts, namespaces, workloads, events, and arbitrary resource listing"
}

// GetTools returns the tools provided by this toolset
func (t *Toolset) GetTools(exec *kubectl.Executor) []toolset.ServerTool {
	readOnly := toolset.ToolAnnotations{ReadOnlyHint: paramutil.BoolPtr(true)}

	return []toolset.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "k8s_cluster_info",
				Description: "Show the cluster endpoint, server version, and current context. Good first call to orient in an unfamiliar cluster.",
				InputSchema: clusterScopedSchema(),
			},
			Annotations: readOnly,
			Handler:     clusterInfoHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_get_contexts",
				Description: "List kubeconfig contexts, marking the current one and whether this server is allowed to target each.",
				InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
			},
			Annotations: readOnly,
			Handler:     getContextsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_namespaces",
				Description: "List namespaces with their status.",
				InputSchema: clusterScopedSchema(),
			},
			Annotations: readOnly,
			Handler:     listNamespacesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_nodes",
				Description: "List nodes with roles, status, and ages, prefixed with a Ready/NotReady summary.",
				InputSchema: clusterScopedSchema(),
			},
			Annotations: readOnly,
			Handler:     listNodesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_pods",
				Description: "List pods with a status breakdown summary. Unhealthy pods come with suggested next steps.",
				InputSchema: namespacedSchema(map[string]any{
					"label_selector": labelSelectorProperty,
				}),
			},
			Annotations: readOnly,
			Handler:     listPodsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_deployments",
				Description: "List deployments, flagging any whose ready count differs from desired.",
				InputSchema: namespacedSchema(nil),
			},
			Annotations: readOnly,
			Handler:     listDeploymentsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_services",
				Description: "List services with a per-type count summary.",
				InputSchema: namespacedSchema(nil),
			},
			Annotations: readOnly,
			Handler:     listServicesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_events",
				Description: "List events sorted by last timestamp. Defaults to all namespaces unless one is given.",
				InputSchema: namespacedSchema(map[string]any{
					"warnings_only": map[string]any{
						"type":        "boolean",
						"description": "Only show Warning events.",
						"default":     false,
					},
				}),
			},
			Annotations: readOnly,
			Handler:     listEventsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_images",
				Description: "List the container images running across pods, one row per pod with its containers and images.",
				InputSchema: namespacedSchema(nil),
			},
			Annotations: readOnly,
			Handler:     listImagesHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_list_secrets",
				Description: "List Secrets with their name, type, and age. Shows metadata only and never exposes secret data.",
				InputSchema: namespacedSchema(nil),
			},
			Annotations: readOnly,
			Handler:     listSecretsHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_get_configmap_data",
				Description: "Read the data contents of a ConfigMap: all key-value pairs, or a single key. Binary keys show their name and byte size only.",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"configmap_name"},
					Properties: map[string]any{
						"configmap_name": map[string]any{
							"type":        "string",
							"description": "Name of the ConfigMap to read.",
						},
						"key": map[string]any{
							"type":        "string",
							"description": "Return only this key's value. Omit to return all keys.",
						},
						"namespace": namespaceProperty,
						"context":   contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     getConfigMapDataHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_get",
				Description: "Get or list any resource type kubectl knows, including CRDs (e.g. 'replicasets', 'certificates.cert-manager.io').",
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"resource_type"},
					Properties: map[string]any{
						"resource_type": map[string]any{
							"type":        "string",
							"description": "Resource type, e.g. 'endpoints', 'virtualservices.networking.istio.io'.",
						},
						"name": map[string]any{
							"type":        "string",
							"description": "Get a single resource by name. Omit to list all.",
						},
						"output": map[string]any{
							"type":        "string",
							"enum":        []string{"wide", "yaml", "json", "name"},
							"default":     "wide",
							"description": "Output format. 'wide' for tabular, 'yaml'/'json' for the full definition, 'name' for names only.",
						},
						"label_selector": labelSelectorProperty,
						"field_selector": map[string]any{
							"type":        "string",
							"description": "Field selector filter, e.g. 'status.phase=Running'.",
						},
						"namespace":      namespaceProperty,
						"all_namespaces": allNamespacesProperty,
						"context":        contextProperty,
					},
				},
			},
			Annotations: readOnly,
			Handler:     getHandler,
		},
		{
			Tool: mcp.Tool{
				Name:        "k8s_api_resources",
				Description: "List the API resource types available in the cluster, including CRDs.",
				InputSchema: clusterScopedSchema(),
			},
			Annotations: readOnly,
			Handler:     apiResourcesHandler,
		},
	}
}
