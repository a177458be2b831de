package output

import (
	"strings"
	"testing"
)

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"table", true},
		{"TABLE", true},
		{"yaml", true},
		{"YAML", true},
		{"json", true},
		{"JSON", true},
		{"yml", false}, // Only "yaml" is supported, not "yml"
		{"unknown", false},
		{"", false},
		{"csv", false},
	}

	for _, test := range tests {
		result := IsValidFormat(test.input)
		if result != test.expected {
			t.Errorf("IsValidFormat('%s') = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestFormatter_Format(t *testing.T) {
	formatter := NewFormatter()

	testData := map[string]string{
		"context":   "staging",
		"namespace": "team-a",
	}

	jsonResult, err := formatter.Format(testData, "json")
	if err != nil {
		t.Errorf("Format JSON failed: %v", err)
	}
	if !strings.Contains(jsonResult, "context") || !strings.Contains(jsonResult, "staging") {
		t.Errorf("JSON output should contain test data, got: %s", jsonResult)
	}

	yamlResult, err := formatter.Format(testData, "yaml")
	if err != nil {
		t.Errorf("Format YAML failed: %v", err)
	}
	if !strings.Contains(yamlResult, "namespace") || !strings.Contains(yamlResult, "team-a") {
		t.Errorf("YAML output should contain test data, got: %s", yamlResult)
	}

	// Unknown formats fall back to the plain rendering.
	defaultResult, err := formatter.Format(testData, "unknown")
	if err != nil {
		t.Errorf("Format unknown failed: %v", err)
	}
	if defaultResult == "" {
		t.Errorf("Default output should not be empty")
	}
}

func TestFormatter_FormatTableWithHeaders(t *testing.T) {
	formatter := NewFormatter()

	data := []map[string]string{
		{"name": "web-6f7b9", "status": "Running", "restarts": "0"},
		{"name": "worker-x2c4", "status": "CrashLoopBackOff", "restarts": "12"},
	}
	headers := []string{"name", "status", "restarts"}

	result := formatter.FormatTableWithHeaders(data, headers)

	for _, header := range headers {
		if !strings.Contains(result, header) {
			t.Errorf("Result should contain header '%s', got:\n%s", header, result)
		}
	}
	for _, row := range data {
		for _, value := range row {
			if !strings.Contains(result, value) {
				t.Errorf("Result should contain value '%s', got:\n%s", value, result)
			}
		}
	}

	if got := formatter.FormatTableWithHeaders(nil, headers); got != "No data available" {
		t.Errorf("Empty table should return 'No data available', got: '%s'", got)
	}
}

func TestKeyValue(t *testing.T) {
	out := KeyValue([][2]string{
		{"Context", "staging"},
		{"Server", "https://10.0.0.1:6443"},
	}, 2)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "  Context") {
		t.Errorf("Indent missing: %q", lines[0])
	}
	// Values align on the longest key.
	if !strings.Contains(lines[0], "Context  staging") {
		t.Errorf("Alignment wrong: %q", lines[0])
	}

	if KeyValue(nil, 2) != "" {
		t.Error("Empty pairs should render as empty string")
	}
}
