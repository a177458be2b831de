package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// PolicyConfig is the static configuration for the kubectl MCP server.
// It is loaded once at startup and never mutated afterwards; every
// component holds it by reference, so no locking is needed.
type PolicyConfig struct {
	// Server configuration
	Port       int    `yaml:"port"`
	SSEBaseURL string `yaml:"sse_base_url"`

	// Logging configuration
	LogLevel int `yaml:"log_level"`

	// kubectl invocation
	KubectlPath            string `yaml:"kubectl_path"`
	MaxConcurrentProcesses int    `yaml:"max_concurrent_processes"`
	MaxOutputBytes         int    `yaml:"max_output_bytes"`

	// Timeouts, in seconds. Connectivity checks get a short budget,
	// drain and rollout get long ones, everything else the default.
	DefaultTimeoutSeconds      int `yaml:"default_timeout_seconds"`
	DrainTimeoutSeconds        int `yaml:"drain_timeout_seconds"`
	RolloutTimeoutSeconds      int `yaml:"rollout_timeout_seconds"`
	ConnectivityTimeoutSeconds int `yaml:"connectivity_timeout_seconds"`

	// Safety policy
	ReadOnly                bool     `yaml:"read_only"`
	AllowedContexts         []string `yaml:"allowed_contexts"`
	NamespaceAllowlist      []string `yaml:"namespace_allowlist"`
	NamespaceBlocklist      []string `yaml:"namespace_blocklist"`
	AllowClusterScopedApply bool     `yaml:"allow_cluster_resources"`

	// Audit sink. Empty means audit records go to stderr.
	AuditLogPath string `yaml:"audit_log_path"`

	// Toolset configuration
	Toolsets      []string `yaml:"toolsets"`
	EnabledTools  []string `yaml:"enabled_tools"`
	DisabledTools []string `yaml:"disabled_tools"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *PolicyConfig {
	return &PolicyConfig{
		Port:                       0, // 0 means stdio mode
		LogLevel:                   0,
		KubectlPath:                "kubectl",
		MaxConcurrentProcesses:     10,
		MaxOutputBytes:             10 * 1024 * 1024,
		DefaultTimeoutSeconds:      60,
		DrainTimeoutSeconds:        300,
		RolloutTimeoutSeconds:      120,
		ConnectivityTimeoutSeconds: 5,
		NamespaceBlocklist:         []string{"kube-system", "kube-public", "kube-node-lease"},
		Toolsets:                   []string{"awareness", "diagnostic", "remediation"},
	}
}

// DefaultTimeout returns the timeout for ordinary operations.
func (c *PolicyConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSeconds) * time.Second
}

// DrainTimeout returns the timeout for node drain operations.
func (c *PolicyConfig) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutSeconds) * time.Second
}

// RolloutTimeout returns the timeout for rollout status waits.
func (c *PolicyConfig) RolloutTimeout() time.Duration {
	return time.Duration(c.RolloutTimeoutSeconds) * time.Second
}

// ConnectivityTimeout returns the timeout for cluster reachability probes.
func (c *PolicyConfig) ConnectivityTimeout() time.Duration {
	return time.Duration(c.ConnectivityTimeoutSeconds) * time.Second
}

// GetPortString returns the port as an address string for net/http
func (c *PolicyConfig) GetPortString() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the configuration
func (c *PolicyConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}

	if c.LogLevel < 0 || c.LogLevel > 9 {
		return fmt.Errorf("log_level must be between 0 and 9, got %d", c.LogLevel)
	}

	if c.KubectlPath == "" {
		return fmt.Errorf("kubectl_path must not be empty")
	}

	if c.MaxConcurrentProcesses < 1 {
		return fmt.Errorf("max_concurrent_processes must be at least 1, got %d", c.MaxConcurrentProcesses)
	}

	if c.MaxOutputBytes < 1024 {
		return fmt.Errorf("max_output_bytes must be at least 1024, got %d", c.MaxOutputBytes)
	}

	for _, field := range []struct {
		name  string
		value int
	}{
		{"default_timeout_seconds", c.DefaultTimeoutSeconds},
		{"drain_timeout_seconds", c.DrainTimeoutSeconds},
		{"rollout_timeout_seconds", c.RolloutTimeoutSeconds},
		{"connectivity_timeout_seconds", c.ConnectivityTimeoutSeconds},
	} {
		if field.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", field.name, field.value)
		}
	}

	return nil
}

// LoadConfig loads configuration from an optional YAML file and the
// environment. Precedence: defaults, then file, then environment.
func LoadConfig(configPath string) (*PolicyConfig, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %v", configPath, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v", configPath, err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overlays the environment-variable configuration surface onto
// the config. List-valued variables are comma-separated.
func applyEnv(config *PolicyConfig) {
	v := viper.New()
	v.AutomaticEnv()

	envBindings := map[string]string{
		"read_only":               "READ_ONLY_MODE",
		"allowed_contexts":        "ALLOWED_CONTEXTS",
		"namespace_allowlist":     "NAMESPACE_ALLOWLIST",
		"namespace_blocklist":     "NAMESPACE_BLOCKLIST",
		"allow_cluster_resources": "ALLOW_CLUSTER_RESOURCES",
	}
	for key, envVar := range envBindings {
		// Bind errors only occur for empty variable names.
		_ = v.BindEnv(key, envVar)
	}

	if v.IsSet("read_only") {
		config.ReadOnly = v.GetBool("read_only")
	}
	if v.IsSet("allow_cluster_resources") {
		config.AllowClusterScopedApply = v.GetBool("allow_cluster_resources")
	}
	if v.IsSet("allowed_contexts") {
		config.AllowedContexts = splitList(v.GetString("allowed_contexts"))
	}
	if v.IsSet("namespace_allowlist") {
		config.NamespaceAllowlist = splitList(v.GetString("namespace_allowlist"))
	}
	if v.IsSet("namespace_blocklist") {
		config.NamespaceBlocklist = splitList(v.GetString("namespace_blocklist"))
	}
}

// splitList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
