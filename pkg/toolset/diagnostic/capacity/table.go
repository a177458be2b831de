package capacity

import (
	"fmt"
	"strings"
)

const (
	milliCPUBase = 1000
	bytesPerKi   = 1024
	bytesPerMi   = 1024 * 1024
	bytesPerGi   = 1024 * 1024 * 1024
)

// FormatAsTable renders the analysis the way kube-capacity does: one
// row per node with requests and limits as value and percent of
// allocatable, a cluster total row, then optional per-pod detail.
func FormatAsTable(result *Result) string {
	var b strings.Builder

	header := fmt.Sprintf("%-25s %-16s %-16s %-16s %-16s %-9s", "NODE", "CPU REQUESTS", "CPU LIMITS", "MEM REQUESTS", "MEM LIMITS", "PODS")
	if result.ShowUtil {
		header += fmt.Sprintf(" %-12s %-12s", "CPU UTIL", "MEM UTIL")
	}
	b.WriteString(header + "\n")

	rows := make([]NodeInfo, 0, len(result.Nodes)+1)
	rows = append(rows, result.Nodes...)
	rows = append(rows, result.Cluster)
	for _, node := range rows {
		line := fmt.Sprintf("%-25s %-16s %-16s %-16s %-16s %-9s",
			truncate(node.Name, 25),
			withPercent(formatCPU(node.CPU.Requested), node.CPU.Requested, node.CPU.Allocatable),
			withPercent(formatCPU(node.CPU.Limited), node.CPU.Limited, node.CPU.Allocatable),
			withPercent(formatMemory(node.Memory.Requested), node.Memory.Requested, node.Memory.Allocatable),
			withPercent(formatMemory(node.Memory.Limited), node.Memory.Limited, node.Memory.Allocatable),
			fmt.Sprintf("%d/%d", node.PodCount.Requested, node.PodCount.Allocatable),
		)
		if result.ShowUtil {
			line += fmt.Sprintf(" %-12s %-12s",
				withPercent(formatCPU(node.CPU.Utilized), node.CPU.Utilized, node.CPU.Allocatable),
				withPercent(formatMemory(node.Memory.Utilized), node.Memory.Utilized, node.Memory.Allocatable),
			)
		}
		b.WriteString(line + "\n")
	}

	if result.ShowPods {
		writePodsSection(&b, result)
	}

	return b.String()
}

func writePodsSection(b *strings.Builder, result *Result) {
	for _, node := range result.Nodes {
		if len(node.Pods) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s (%d pods)\n", node.Name, len(node.Pods))
		fmt.Fprintf(b, "  %-40s %-15s %-12s %-12s %-12s %-12s\n", "POD", "NAMESPACE", "CPU REQ", "CPU LIM", "MEM REQ", "MEM LIM")
		for _, pod := range node.Pods {
			fmt.Fprintf(b, "  %-40s %-15s %-12s %-12s %-12s %-12s\n",
				truncate(pod.Name, 40),
				truncate(pod.Namespace, 15),
				formatCPU(pod.CPU.Requested),
				formatCPU(pod.CPU.Limited),
				formatMemory(pod.Memory.Requested),
				formatMemory(pod.Memory.Limited),
			)
		}
	}
}

func withPercent(formatted string, value, allocatable int64) string {
	if allocatable <= 0 {
		return formatted
	}
	return fmt.Sprintf("%s (%d%%)", formatted, value*100/allocatable)
}

// formatCPU renders millicores, switching to cores above one.
func formatCPU(val int64) string {
	if val < milliCPUBase {
		return fmt.Sprintf("%dm", val)
	}
	return fmt.Sprintf("%.1f", float64(val)/milliCPUBase)
}

// formatMemory renders bytes with a binary suffix.
func formatMemory(val int64) string {
	switch {
	case val >= bytesPerGi:
		return fmt.Sprintf("%.1fGi", float64(val)/bytesPerGi)
	case val >= bytesPerMi:
		return fmt.Sprintf("%dMi", val/bytesPerMi)
	case val >= bytesPerKi:
		return fmt.Sprintf("%dKi", val/bytesPerKi)
	default:
		return fmt.Sprintf("%d", val)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
