package diagnostics

import (
	"fmt"
	"strings"
)

func severityIcon(s Severity) string {
	switch s {
	case SeverityCritical:
		return "🔴"
	case SeverityWarning:
		return "🟡"
	case SeverityInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

// RenderHealthScan turns a battery report into the cluster health scan
// text. Pod and node problems lead, workload and storage problems
// follow, and the recent warning events close the report. Pod findings
// that have a matching warning event get the event appended inline.
func RenderHealthScan(report *Report) string {
	byName := make(map[string]Result, len(report.Results))
	for _, res := range report.Results {
		byName[res.Name] = res
	}

	events := byName["events"]
	eventMap := make(map[string][]string)
	for _, f := range events.Findings {
		name := objectName(f.Object)
		eventMap[name] = append(eventMap[name], f.Message)
	}

	var critical, warning, nodes []string

	pods := byName["pods"]
	if pods.Err != nil {
		critical = append(critical, fmt.Sprintf("(pod scan failed: %v)", pods.Err))
	} else {
		for _, f := range pods.Findings {
			line := renderFinding(f, eventMap)
			if f.Severity == SeverityCritical {
				critical = append(critical, line)
			} else {
				warning = append(warning, line)
			}
		}
	}

	nodeRes := byName["nodes"]
	if nodeRes.Err != nil {
		nodes = append(nodes, fmt.Sprintf("(node scan failed: %v)", nodeRes.Err))
	} else {
		for _, f := range nodeRes.Findings {
			nodes = append(nodes, fmt.Sprintf("%s: %s", f.Object, f.Message))
		}
	}

	for _, name := range []string{"deployments", "statefulsets", "daemonsets", "jobs", "pvcs"} {
		res := byName[name]
		if res.Err != nil {
			warning = append(warning, fmt.Sprintf("(%s scan failed: %v)", strings.TrimSuffix(name, "s"), res.Err))
			continue
		}
		for _, f := range res.Findings {
			warning = append(warning, renderFinding(f, nil))
		}
	}

	total := len(critical) + len(warning) + len(nodes)
	if total == 0 && len(events.Findings) == 0 && events.Err == nil {
		return "No issues detected. Cluster looks healthy."
	}

	header := fmt.Sprintf("Cluster Health Scan — %d issues found (%d critical, %d warning)",
		total, len(critical)+len(nodes), len(warning))
	sections := []string{header}

	if len(critical) > 0 {
		sections = append(sections, fmt.Sprintf("%s CRITICAL:\n%s", severityIcon(SeverityCritical), indent(critical)))
	}
	if len(warning) > 0 {
		sections = append(sections, fmt.Sprintf("%s WARNING:\n%s", severityIcon(SeverityWarning), indent(warning)))
	}
	if len(nodes) > 0 {
		sections = append(sections, fmt.Sprintf("%s NODE ISSUES:\n%s", severityIcon(SeverityCritical), indent(nodes)))
	}

	if events.Err != nil {
		sections = append(sections, fmt.Sprintf("%s RECENT WARNING EVENTS (last %d)\n  (event scan failed: %v)",
			severityIcon(SeverityWarning), eventWindow, events.Err))
	} else if len(events.Findings) > 0 {
		lines := make([]string, 0, len(events.Findings))
		for _, f := range events.Findings {
			lines = append(lines, fmt.Sprintf("[%s] %s", f.Object, f.Message))
		}
		sections = append(sections, fmt.Sprintf("%s RECENT WARNING EVENTS (last %d):\n%s",
			severityIcon(SeverityWarning), eventWindow, indent(lines)))
	}

	return strings.Join(sections, "\n\n")
}

func renderFinding(f Finding, eventMap map[string][]string) string {
	line := fmt.Sprintf("[%s] %s", f.Object, f.Message)
	if f.Suggestion != "" {
		line += "\n    -> Suggested: " + f.Suggestion
	}
	if entries := eventMap[objectName(f.Object)]; len(entries) > 0 {
		line += "\n    -> Related event: " + entries[len(entries)-1]
	}
	return line
}

func indent(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return strings.Join(out, "\n")
}
