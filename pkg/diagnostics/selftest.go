package diagnostics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// SelfTest probes the server's own prerequisites: the kubectl binary,
// cluster connectivity, RBAC authorization, and the metrics server.
// Probes run concurrently and a failing probe reports FAILED in its
// own line without aborting the others.
func SelfTest(ctx context.Context, runner Runner, kubeContext string, toolCount int) string {
	probes := []*kubectl.Request{
		{Tool: "k8s_self_test", Args: []string{"version", "--client"}},
		{Tool: "k8s_self_test", Context: kubeContext, Class: kubectl.TimeoutConnectivity, Args: []string{"cluster-info"}},
		{Tool: "k8s_self_test", Context: kubeContext, Args: []string{"auth", "can-i", "get", "pods", "--all-namespaces"}},
		{Tool: "k8s_self_test", Context: kubeContext, Args: []string{"top", "nodes"}},
	}

	outputs := make([]string, len(probes))
	errs := make([]error, len(probes))

	var wg sync.WaitGroup
	for i, req := range probes {
		wg.Add(1)
		go func(slot int, r *kubectl.Request) {
			defer wg.Done()
			outputs[slot], errs[slot] = runner.Run(ctx, r)
		}(i, req)
	}
	wg.Wait()

	lines := []string{"Server Self-Test Results"}

	if errs[0] != nil {
		lines = append(lines, fmt.Sprintf("  kubectl binary:     FAILED (%v)", errs[0]))
	} else {
		ver := firstLine(outputs[0])
		if ver == "" {
			ver = "unknown"
		}
		lines = append(lines, fmt.Sprintf("  kubectl binary:     OK (%s)", ver))
	}

	if errs[1] != nil {
		lines = append(lines, fmt.Sprintf("  Cluster connection: FAILED (%v)", errs[1]))
	} else {
		endpoint := urlPattern.FindString(firstLine(outputs[1]))
		if endpoint == "" {
			endpoint = "connected"
		}
		lines = append(lines, fmt.Sprintf("  Cluster connection: OK (%s)", endpoint))
	}

	if errs[2] != nil {
		lines = append(lines, fmt.Sprintf("  Authentication:     FAILED (%v)", errs[2]))
	} else if strings.EqualFold(strings.TrimSpace(outputs[2]), "yes") {
		lines = append(lines, "  Authentication:     OK (can list pods)")
	} else {
		lines = append(lines, fmt.Sprintf("  Authentication:     LIMITED (%s)", strings.TrimSpace(outputs[2])))
	}

	if errs[3] != nil {
		lines = append(lines, "  Metrics server:     NOT AVAILABLE")
	} else {
		lines = append(lines, "  Metrics server:     OK")
	}

	lines = append(lines, fmt.Sprintf("  Tools registered:   %d", toolCount))

	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
