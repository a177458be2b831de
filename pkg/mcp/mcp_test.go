package mcp

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
)

func testConfig(t *testing.T) *config.PolicyConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AuditLogPath = filepath.Join(t.TempDir(), "audit.log")
	return cfg
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(Configuration{PolicyConfig: testConfig(t)})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	tools := server.GetEnabledTools()
	if len(tools) != 34 {
		t.Errorf("Expected 34 tools across the three toolsets, got %d", len(tools))
	}

	// Check that we have our expected tools
	expectedTools := []string{
		"k8s_cluster_info", "k8s_list_pods", "k8s_get",
		"k8s_describe", "k8s_logs", "k8s_find_issues", "k8s_self_test",
		"k8s_scale", "k8s_apply_manifest", "k8s_diff",
	}
	registered := make(map[string]bool, len(tools))
	for _, name := range tools {
		registered[name] = true
	}
	for _, expected := range expectedTools {
		if !registered[expected] {
			t.Errorf("Expected tool '%s' not found in registered tools", expected)
		}
	}
}

func TestNewServerToolOrderStable(t *testing.T) {
	server, err := NewServer(Configuration{PolicyConfig: testConfig(t)})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	tools := server.GetEnabledTools()
	if len(tools) == 0 {
		t.Fatal("No tools registered")
	}
	if tools[0] != "k8s_cluster_info" {
		t.Errorf("First advertised tool should be k8s_cluster_info, got %s", tools[0])
	}
	if tools[len(tools)-1] != "k8s_diff" {
		t.Errorf("Last advertised tool should be k8s_diff, got %s", tools[len(tools)-1])
	}

	// Toolsets appear as contiguous blocks: awareness, then diagnostic,
	// then remediation.
	index := func(name string) int {
		for i, n := range tools {
			if n == name {
				return i
			}
		}
		t.Fatalf("Tool %s not registered", name)
		return -1
	}
	if !(index("k8s_api_resources") < index("k8s_describe") && index("k8s_self_test") < index("k8s_restart_deployment")) {
		t.Errorf("Toolset registration order wrong: %v", tools)
	}
}

func TestNewServerReadOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReadOnly = true

	server, err := NewServer(Configuration{PolicyConfig: cfg})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	registered := make(map[string]bool)
	for _, name := range server.GetEnabledTools() {
		registered[name] = true
	}

	// Mutating tools must not even be advertised.
	for _, mutating := range []string{
		"k8s_scale", "k8s_delete_pod", "k8s_apply_manifest",
		"k8s_node_operation", "k8s_restart_deployment",
	} {
		if registered[mutating] {
			t.Errorf("Read-only server should not register %s", mutating)
		}
	}

	// Diff previews a change without making one, so it survives.
	if !registered["k8s_diff"] {
		t.Error("k8s_diff is read-only and should remain registered")
	}
	if !registered["k8s_describe"] {
		t.Error("k8s_describe should remain registered")
	}
}

func TestNewServerToolsetSelection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Toolsets = []string{"awareness"}

	server, err := NewServer(Configuration{PolicyConfig: cfg})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	tools := server.GetEnabledTools()
	if len(tools) != 13 {
		t.Errorf("Expected 13 awareness tools, got %d", len(tools))
	}
	for _, name := range tools {
		if name == "k8s_describe" || name == "k8s_scale" {
			t.Errorf("Tool %s belongs to a disabled toolset", name)
		}
	}
}

func TestNewServerToolFiltering(t *testing.T) {
	cfg := testConfig(t)
	cfg.DisabledTools = []string{"k8s_exec"}

	server, err := NewServer(Configuration{PolicyConfig: cfg})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	for _, name := range server.GetEnabledTools() {
		if name == "k8s_exec" {
			t.Error("k8s_exec should be disabled by configuration")
		}
	}

	cfg = testConfig(t)
	cfg.EnabledTools = []string{"k8s_list_pods", "k8s_logs"}

	server, err = NewServer(Configuration{PolicyConfig: cfg})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	tools := server.GetEnabledTools()
	if len(tools) != 2 {
		t.Errorf("Expected exactly the 2 allowlisted tools, got %d: %v", len(tools), tools)
	}
}

func TestNewTextResult(t *testing.T) {
	// Test success case
	result := NewTextResult("success message", nil)
	if result.IsError {
		t.Error("Result should not be an error")
	}

	if len(result.Content) != 1 {
		t.Errorf("Expected 1 content item, got %d", len(result.Content))
	}

	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Error("Content should be TextContent")
	}

	if textContent.Text != "success message" {
		t.Errorf("Expected 'success message', got '%s'", textContent.Text)
	}

	// Test error case
	err := fmt.Errorf("test error")
	result = NewTextResult("", err)
	if !result.IsError {
		t.Error("Result should be an error")
	}

	textContent, ok = result.Content[0].(mcp.TextContent)
	if !ok {
		t.Error("Content should be TextContent")
	}

	if textContent.Text != "test error" {
		t.Errorf("Expected 'test error', got '%s'", textContent.Text)
	}
}
