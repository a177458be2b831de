package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Port != 0 {
		t.Errorf("Expected Port to be 0, got %d", config.Port)
	}

	if config.KubectlPath != "kubectl" {
		t.Errorf("Expected KubectlPath to be 'kubectl', got '%s'", config.KubectlPath)
	}

	if config.MaxConcurrentProcesses != 10 {
		t.Errorf("Expected MaxConcurrentProcesses to be 10, got %d", config.MaxConcurrentProcesses)
	}

	if config.MaxOutputBytes != 10*1024*1024 {
		t.Errorf("Expected MaxOutputBytes to be 10 MiB, got %d", config.MaxOutputBytes)
	}

	if config.ReadOnly {
		t.Error("Expected ReadOnly to be false by default")
	}

	expectedBlocklist := []string{"kube-system", "kube-public", "kube-node-lease"}
	if len(config.NamespaceBlocklist) != len(expectedBlocklist) {
		t.Fatalf("Expected %d blocklisted namespaces, got %d", len(expectedBlocklist), len(config.NamespaceBlocklist))
	}
	for i, ns := range expectedBlocklist {
		if config.NamespaceBlocklist[i] != ns {
			t.Errorf("Expected blocklist[%d] to be '%s', got '%s'", i, ns, config.NamespaceBlocklist[i])
		}
	}

	if config.DefaultTimeout() != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %v", config.DefaultTimeout())
	}
	if config.DrainTimeout() != 5*time.Minute {
		t.Errorf("Expected drain timeout 5m, got %v", config.DrainTimeout())
	}
	if config.ConnectivityTimeout() != 5*time.Second {
		t.Errorf("Expected connectivity timeout 5s, got %v", config.ConnectivityTimeout())
	}
}

func TestValidate(t *testing.T) {
	valid := func(mutate func(*PolicyConfig)) *PolicyConfig {
		c := DefaultConfig()
		mutate(c)
		return c
	}

	tests := []struct {
		name    string
		config  *PolicyConfig
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "valid port",
			config:  valid(func(c *PolicyConfig) { c.Port = 8080 }),
			wantErr: false,
		},
		{
			name:    "invalid port negative",
			config:  valid(func(c *PolicyConfig) { c.Port = -1 }),
			wantErr: true,
		},
		{
			name:    "invalid port too high",
			config:  valid(func(c *PolicyConfig) { c.Port = 65536 }),
			wantErr: true,
		},
		{
			name:    "invalid log level",
			config:  valid(func(c *PolicyConfig) { c.LogLevel = 10 }),
			wantErr: true,
		},
		{
			name:    "empty kubectl path",
			config:  valid(func(c *PolicyConfig) { c.KubectlPath = "" }),
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			config:  valid(func(c *PolicyConfig) { c.MaxConcurrentProcesses = 0 }),
			wantErr: true,
		},
		{
			name:    "tiny output cap",
			config:  valid(func(c *PolicyConfig) { c.MaxOutputBytes = 100 }),
			wantErr: true,
		},
		{
			name:    "zero drain timeout",
			config:  valid(func(c *PolicyConfig) { c.DrainTimeoutSeconds = 0 }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
read_only: true
allowed_contexts:
  - staging
  - dev
namespace_blocklist:
  - kube-system
max_concurrent_processes: 4
drain_timeout_seconds: 120
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !config.ReadOnly {
		t.Error("Expected ReadOnly to be true")
	}
	if len(config.AllowedContexts) != 2 || config.AllowedContexts[0] != "staging" {
		t.Errorf("Unexpected allowed contexts: %v", config.AllowedContexts)
	}
	if len(config.NamespaceBlocklist) != 1 || config.NamespaceBlocklist[0] != "kube-system" {
		t.Errorf("Unexpected namespace blocklist: %v", config.NamespaceBlocklist)
	}
	if config.MaxConcurrentProcesses != 4 {
		t.Errorf("Expected MaxConcurrentProcesses 4, got %d", config.MaxConcurrentProcesses)
	}
	if config.DrainTimeout() != 2*time.Minute {
		t.Errorf("Expected drain timeout 2m, got %v", config.DrainTimeout())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("READ_ONLY_MODE", "true")
	t.Setenv("ALLOWED_CONTEXTS", "prod-1, prod-2")
	t.Setenv("NAMESPACE_ALLOWLIST", "team-a,team-b")
	t.Setenv("NAMESPACE_BLOCKLIST", "kube-system,velero")
	t.Setenv("ALLOW_CLUSTER_RESOURCES", "true")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !config.ReadOnly {
		t.Error("Expected READ_ONLY_MODE to enable read-only mode")
	}
	if !config.AllowClusterScopedApply {
		t.Error("Expected ALLOW_CLUSTER_RESOURCES to allow cluster-scoped apply")
	}

	wantContexts := []string{"prod-1", "prod-2"}
	if len(config.AllowedContexts) != len(wantContexts) {
		t.Fatalf("Unexpected allowed contexts: %v", config.AllowedContexts)
	}
	for i, c := range wantContexts {
		if config.AllowedContexts[i] != c {
			t.Errorf("Expected allowed context %q, got %q", c, config.AllowedContexts[i])
		}
	}

	if len(config.NamespaceAllowlist) != 2 {
		t.Errorf("Unexpected namespace allowlist: %v", config.NamespaceAllowlist)
	}
	if len(config.NamespaceBlocklist) != 2 || config.NamespaceBlocklist[1] != "velero" {
		t.Errorf("Unexpected namespace blocklist: %v", config.NamespaceBlocklist)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"", nil},
		{",,", nil},
	}

	for _, tt := range tests {
		got := splitList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
