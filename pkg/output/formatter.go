package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter renders tool results in the formats the agent can ask for.
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// IsValidFormat checks if the given format is supported
func IsValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "table", "yaml", "json":
		return true
	default:
		return false
	}
}

// Format formats data in the specified format (table, yaml, json)
func (f *Formatter) Format(data interface{}, format string) (string, error) {
	switch strings.ToLower(format) {
	case "yaml":
		return f.FormatYAML(data)
	case "json":
		return f.FormatJSON(data)
	default:
		return fmt.Sprintf("%+v", data), nil
	}
}

// FormatYAML formats data as YAML
func (f *Formatter) FormatYAML(data interface{}) (string, error) {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %v", err)
	}
	return string(yamlBytes), nil
}

// FormatJSON formats data as JSON
func (f *Formatter) FormatJSON(data interface{}) (string, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %v", err)
	}
	return string(jsonBytes), nil
}

// FormatTableWithHeaders renders rows as a fixed-width text table.
func (f *Formatter) FormatTableWithHeaders(data []map[string]string, headers []string) string {
	if len(data) == 0 {
		return "No data available"
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range data {
		for i, header := range headers {
			if value, ok := row[header]; ok && len(value) > widths[i] {
				widths[i] = len(value)
			}
		}
	}

	var builder strings.Builder
	for i, header := range headers {
		builder.WriteString(fmt.Sprintf("%-*s", widths[i]+2, header))
	}
	builder.WriteString("\n")

	for i, width := range widths {
		builder.WriteString(strings.Repeat("-", width+2))
		if i < len(widths)-1 {
			builder.WriteString(" ")
		}
	}
	builder.WriteString("\n")

	for _, row := range data {
		for i, header := range headers {
			value := row[header]
			builder.WriteString(fmt.Sprintf("%-*s", widths[i]+2, value))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// KeyValue renders aligned key/value pairs, one per line, with the
// given left indent.
func KeyValue(pairs [][2]string, indent int) string {
	if len(pairs) == 0 {
		return ""
	}
	maxKey := 0
	for _, p := range pairs {
		if len(p[0]) > maxKey {
			maxKey = len(p[0])
		}
	}
	pad := strings.Repeat(" ", indent)
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = fmt.Sprintf("%s%-*s  %s", pad, maxKey, p[0], p[1])
	}
	return strings.Join(lines, "\n")
}
