package capacity

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/kubemcp/kubectl-mcp-server/pkg/diagnostics"
	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// Analyzer computes per-node resource aggregates from kubectl output.
type Analyzer struct {
	runner diagnostics.Runner
}

// NewAnalyzer creates an Analyzer over the given runner.
func NewAnalyzer(runner diagnostics.Runner) *Analyzer {
	return &Analyzer{runner: runner}
}

// Analyze lists nodes and pods and aggregates requests and limits per
// node. Utilization is read from the metrics server when requested and
// silently skipped when it is not installed.
func (a *Analyzer) Analyze(ctx context.Context, p Params) (*Result, error) {
	nodeInfoMap, order, err := a.buildNodeInfoMap(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := a.processPods(ctx, nodeInfoMap, p); err != nil {
		return nil, err
	}

	if p.ShowUtil {
		a.collectUtilization(ctx, p, nodeInfoMap)
	}

	result := &Result{
		Nodes:    make([]NodeInfo, 0, len(order)),
		Cluster:  NodeInfo{Name: "*"},
		ShowPods: p.ShowPods,
		ShowUtil: p.ShowUtil,
	}
	for _, name := range order {
		info := nodeInfoMap[name]
		result.Nodes = append(result.Nodes, *info)
		aggregateNodeToCluster(&result.Cluster, info)
	}

	SortNodes(result.Nodes, p.SortBy)
	return result, nil
}

func (a *Analyzer) buildNodeInfoMap(ctx context.Context, p Params) (map[string]*NodeInfo, []string, error) {
	var nodes corev1.NodeList
	req := &kubectl.Request{
		Tool:    "k8s_capacity",
		Context: p.Context,
		Args:    []string{"get", "nodes"},
	}
	if err := a.runner.RunJSON(ctx, req, &nodes); err != nil {
		return nil, nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodeInfoMap := make(map[string]*NodeInfo, len(nodes.Items))
	order := make([]string, 0, len(nodes.Items))
	for i := range nodes.Items {
		node := &nodes.Items[i]
		info := &NodeInfo{Name: node.Name}

		info.CPU.Capacity = node.Status.Capacity.Cpu().MilliValue()
		info.Memory.Capacity = node.Status.Capacity.Memory().Value()
		info.CPU.Allocatable = node.Status.Allocatable.Cpu().MilliValue()
		info.Memory.Allocatable = node.Status.Allocatable.Memory().Value()
		if pods, ok := node.Status.Allocatable[corev1.ResourcePods]; ok {
			info.PodCount.Allocatable = pods.Value()
		}

		nodeInfoMap[node.Name] = info
		order = append(order, node.Name)
	}
	return nodeInfoMap, order, nil
}

func (a *Analyzer) processPods(ctx context.Context, nodeInfoMap map[string]*NodeInfo, p Params) error {
	args := []string{"get", "pods"}
	if p.LabelSelector != "" {
		args = append(args, "-l", p.LabelSelector)
	}
	req := &kubectl.Request{
		Tool:          "k8s_capacity",
		Context:       p.Context,
		Namespace:     p.Namespace,
		AllNamespaces: p.Namespace == "",
		Args:          args,
	}

	var pods corev1.PodList
	if err := a.runner.RunJSON(ctx, req, &pods); err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	for i := range pods.Items {
		pod := &pods.Items[i]

		// Completed pods hold no resources; unscheduled pods have no node.
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		info, ok := nodeInfoMap[pod.Spec.NodeName]
		if !ok {
			continue
		}

		podInfo := PodInfo{Namespace: pod.Namespace, Name: pod.Name}
		for _, c := range pod.Spec.Containers {
			addContainerResources(&podInfo, c.Resources)
		}
		for _, c := range pod.Spec.InitContainers {
			addContainerResources(&podInfo, c.Resources)
		}

		info.PodCount.Requested++
		info.CPU.Requested += podInfo.CPU.Requested
		info.CPU.Limited += podInfo.CPU.Limited
		info.Memory.Requested += podInfo.Memory.Requested
		info.Memory.Limited += podInfo.Memory.Limited

		if p.ShowPods {
			info.Pods = append(info.Pods, podInfo)
		}
	}
	return nil
}

func addContainerResources(podInfo *PodInfo, resources corev1.ResourceRequirements) {
	if cpu, ok := resources.Requests[corev1.ResourceCPU]; ok {
		podInfo.CPU.Requested += cpu.MilliValue()
	}
	if mem, ok := resources.Requests[corev1.ResourceMemory]; ok {
		podInfo.Memory.Requested += mem.Value()
	}
	if cpu, ok := resources.Limits[corev1.ResourceCPU]; ok {
		podInfo.CPU.Limited += cpu.MilliValue()
	}
	if mem, ok := resources.Limits[corev1.ResourceMemory]; ok {
		podInfo.Memory.Limited += mem.Value()
	}
}

// collectUtilization parses `kubectl top nodes` output. A missing
// metrics server is not an error.
func (a *Analyzer) collectUtilization(ctx context.Context, p Params, nodeInfoMap map[string]*NodeInfo) {
	req := &kubectl.Request{
		Tool:    "k8s_capacity",
		Context: p.Context,
		Args:    []string{"top", "nodes", "--no-headers"},
	}
	out, err := a.runner.Run(ctx, req)
	if err != nil {
		logging.Debug("Failed to get node metrics (metrics-server may not be installed): %v", err)
		return
	}

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		info, ok := nodeInfoMap[fields[0]]
		if !ok {
			continue
		}
		if cpu, err := resource.ParseQuantity(fields[1]); err == nil {
			info.CPU.Utilized = cpu.MilliValue()
		}
		if mem, err := resource.ParseQuantity(fields[3]); err == nil {
			info.Memory.Utilized = mem.Value()
		}
	}
}

func aggregateNodeToCluster(cluster, node *NodeInfo) {
	cluster.CPU.Capacity += node.CPU.Capacity
	cluster.CPU.Allocatable += node.CPU.Allocatable
	cluster.CPU.Requested += node.CPU.Requested
	cluster.CPU.Limited += node.CPU.Limited
	cluster.CPU.Utilized += node.CPU.Utilized

	cluster.Memory.Capacity += node.Memory.Capacity
	cluster.Memory.Allocatable += node.Memory.Allocatable
	cluster.Memory.Requested += node.Memory.Requested
	cluster.Memory.Limited += node.Memory.Limited
	cluster.Memory.Utilized += node.Memory.Utilized

	cluster.PodCount.Allocatable += node.PodCount.Allocatable
	cluster.PodCount.Requested += node.PodCount.Requested
}
