package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// registerResources registers static cluster resources. Each is backed
// by the same executor the tools use, so policy and timeouts apply.
func (s *Server) registerResources() {
	resources := []struct {
		resource mcp.Resource
		handler  func(ctx context.Context) (string, error)
	}{
		{
			resource: mcp.Resource{
				URI:         "k8s://contexts",
				Name:        "Kubernetes contexts",
				Description: "Contexts available in the local kubeconfig, one per line, current context marked with *.",
				MIMEType:    "text/plain",
			},
			handler: s.readContexts,
		},
		{
			resource: mcp.Resource{
				URI:         "k8s://cluster-info",
				Name:        "Cluster info",
				Description: "Control plane endpoints for the current context.",
				MIMEType:    "text/plain",
			},
			handler: s.readClusterInfo,
		},
		{
			resource: mcp.Resource{
				URI:         "k8s://namespaces",
				Name:        "Namespaces",
				Description: "Namespaces in the current cluster.",
				MIMEType:    "text/plain",
			},
			handler: s.readNamespaces,
		},
	}

	for _, r := range resources {
		r := r
		s.server.AddResource(r.resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			text, err := r.handler(ctx)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      r.resource.URI,
					MIMEType: r.resource.MIMEType,
					Text:     text,
				},
			}, nil
		})
		logging.Info("Registered resource: %s", r.resource.URI)
	}
}

func (s *Server) readContexts(ctx context.Context) (string, error) {
	kubeconfig, err := clientcmd.NewDefaultClientConfigLoadingRules().Load()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	names := make([]string, 0, len(kubeconfig.Contexts))
	for name := range kubeconfig.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if name == kubeconfig.CurrentContext {
			b.WriteString("* ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(name + "\n")
	}
	if b.Len() == 0 {
		return "No contexts found in kubeconfig.\n", nil
	}
	return b.String(), nil
}

func (s *Server) readClusterInfo(ctx context.Context) (string, error) {
	return s.executor.Run(ctx, &kubectl.Request{
		Tool:  "resource:cluster-info",
		Args:  []string{"cluster-info"},
		Class: kubectl.TimeoutConnectivity,
	})
}

func (s *Server) readNamespaces(ctx context.Context) (string, error) {
	return s.executor.Run(ctx, &kubectl.Request{
		Tool: "resource:namespaces",
		Args: []string{"get", "namespaces"},
	})
}
