package awareness

import (
	"fmt"
	"sort"
	"strings"
)

// parseTableRows splits kubectl tabular output into headers and rows.
func parseTableRows(output string) ([]string, [][]string) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}
	headers := strings.Fields(lines[0])
	var rows [][]string
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	return headers, rows
}

// findColIndex finds a column by name, case-insensitive.
func findColIndex(headers []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range headers {
			if strings.EqualFold(h, candidate) {
				return i
			}
		}
	}
	return -1
}

func colValues(headers []string, rows [][]string, colNames ...string) []string {
	idx := findColIndex(headers, colNames...)
	if idx < 0 {
		return nil
	}
	var values []string
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values
}

// countParts renders "12 Running, 2 Pending" style fragments, most
// frequent first with ties broken alphabetically for stable output.
func countParts(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d %s", counts[k], k)
	}
	return strings.Join(parts, ", ")
}

var unhealthyStatuses = map[string]bool{
	"CrashLoopBackOff":      true,
	"Error":                 true,
	"ImagePullBackOff":      true,
	"ErrImagePull":          true,
	"Pending":               true,
	"CreateContainerError":  true,
	"OOMKilled":             true,
	"Init:Error":            true,
	"Init:CrashLoopBackOff": true,
}

// summarizePods prepends a status breakdown and, when unhealthy pods
// show up, next-step suggestions for the first one.
func summarizePods(output string) string {
	headers, rows := parseTableRows(output)
	if len(rows) == 0 {
		return output
	}
	statuses := colValues(headers, rows, "STATUS")
	if len(statuses) == 0 {
		return output
	}

	summary := fmt.Sprintf("%d pods (%s)", len(statuses), countParts(statuses))

	var suggestions []string
	hasUnhealthy := false
	for _, s := range statuses {
		if unhealthyStatuses[s] {
			hasUnhealthy = true
			break
		}
	}
	if hasUnhealthy {
		nameIdx := findColIndex(headers, "NAME")
		nsIdx := findColIndex(headers, "NAMESPACE")
		statusIdx := findColIndex(headers, "STATUS")
		if nameIdx >= 0 && statusIdx >= 0 {
			for _, row := range rows {
				if statusIdx < len(row) && unhealthyStatuses[row[statusIdx]] && nameIdx < len(row) {
					nsHint := ""
					if nsIdx >= 0 && nsIdx < len(row) {
						nsHint = fmt.Sprintf(" namespace=%q", row[nsIdx])
					}
					suggestions = append(suggestions,
						fmt.Sprintf("-> Suggested: k8s_describe resource_type=\"pod\" resource_name=%q%s", row[nameIdx], nsHint),
						fmt.Sprintf("-> Suggested: k8s_logs pod_name=%q%s", row[nameIdx], nsHint))
					break
				}
			}
		}
		if len(suggestions) == 0 {
			suggestions = append(suggestions, "-> Suggested: k8s_find_issues to identify root causes")
		}
	}

	result := summary + "\n\n" + output
	if len(suggestions) > 0 {
		result += "\n\n" + strings.Join(suggestions, "\n")
	}
	return result
}

// summarizeDeployments prepends a count of degraded deployments (ready
// != desired) and suggests a next step for the first degraded one.
func summarizeDeployments(output string) string {
	headers, rows := parseTableRows(output)
	if len(rows) == 0 {
		return output
	}
	readyIdx := findColIndex(headers, "READY")
	nameIdx := findColIndex(headers, "NAME")
	nsIdx := findColIndex(headers, "NAMESPACE")
	if readyIdx < 0 {
		return fmt.Sprintf("%d deployments\n\n%s", len(rows), output)
	}

	degraded := 0
	var firstName, firstNS string
	for _, row := range rows {
		if readyIdx >= len(row) {
			continue
		}
		parts := strings.SplitN(row[readyIdx], "/", 2)
		if len(parts) == 2 && parts[0] != parts[1] {
			degraded++
			if firstName == "" && nameIdx >= 0 && nameIdx < len(row) {
				firstName = row[nameIdx]
				if nsIdx >= 0 && nsIdx < len(row) {
					firstNS = row[nsIdx]
				}
			}
		}
	}

	summary := fmt.Sprintf("%d deployments (all healthy)", len(rows))
	if degraded > 0 {
		summary = fmt.Sprintf("%d deployments (%d degraded, ready != desired)", len(rows), degraded)
	}

	result := summary + "\n\n" + output
	if firstName != "" {
		nsHint := ""
		if firstNS != "" {
			nsHint = fmt.Sprintf(" namespace=%q", firstNS)
		}
		result += "\n\n" + fmt.Sprintf("-> Suggested: k8s_describe resource_type=\"deployment\" resource_name=%q%s", firstName, nsHint) +
			"\n-> Suggested: k8s_find_issues to identify root causes"
	}
	return result
}

// summarizeNodes prepends a Ready vs NotReady count.
func summarizeNodes(output string) string {
	headers, rows := parseTableRows(output)
	if len(rows) == 0 {
		return output
	}
	statuses := colValues(headers, rows, "STATUS")
	if len(statuses) == 0 {
		return output
	}
	ready := 0
	for _, s := range statuses {
		if s == "Ready" {
			ready++
		}
	}
	total := len(statuses)
	if ready == total {
		return fmt.Sprintf("%d nodes (all Ready)\n\n%s", total, output)
	}
	return fmt.Sprintf("%d nodes (%d Ready, %d NotReady)\n\n%s", total, ready, total-ready, output)
}

// summarizeServices prepends a count of services by type.
func summarizeServices(output string) string {
	headers, rows := parseTableRows(output)
	if len(rows) == 0 {
		return output
	}
	types := colValues(headers, rows, "TYPE")
	if len(types) == 0 {
		return fmt.Sprintf("%d services\n\n%s", len(rows), output)
	}
	return fmt.Sprintf("%d services (%s)\n\n%s", len(types), countParts(types), output)
}

// summarizeEvents prepends an event count, broken down by type unless
// the list was already filtered to warnings.
func summarizeEvents(output string, warningsOnly bool) string {
	headers, rows := parseTableRows(output)
	if len(rows) == 0 {
		return output
	}
	if warningsOnly {
		return fmt.Sprintf("%d warning events\n\n%s", len(rows), output)
	}
	types := colValues(headers, rows, "TYPE")
	if len(types) == 0 {
		return fmt.Sprintf("%d events\n\n%s", len(rows), output)
	}
	return fmt.Sprintf("%d events (%s)\n\n%s", len(types), countParts(types), output)
}
