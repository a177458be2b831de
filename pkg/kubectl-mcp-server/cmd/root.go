package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
	httpserver "github.com/kubemcp/kubectl-mcp-server/pkg/http"
	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
	"github.com/kubemcp/kubectl-mcp-server/pkg/mcp"
	"github.com/kubemcp/kubectl-mcp-server/pkg/version"
)

// IOStreams represents standard input, output, and error streams
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// NewMCPServer creates a new cobra command for the kubectl MCP server
func NewMCPServer(streams IOStreams) *cobra.Command {
	cfg := config.DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "kubectl-mcp-server",
		Short: "kubectl MCP Server - Model Context Protocol server for Kubernetes cluster administration",
		Long: `kubectl MCP Server is a Model Context Protocol (MCP) server that lets AI
agents inspect, diagnose, and remediate Kubernetes clusters through the
kubectl binary.

Every operation shells out to kubectl under the caller's kubeconfig; the
server holds no Kubernetes credentials of its own. Mutating operations
pass through a policy gate (namespace allow/blocklists, context
restrictions, read-only mode) and are written to an audit log.

The server can run in stdio mode for integration with MCP clients or in
HTTP mode for network access.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg, err := resolveConfig(cmd, configPath, cfg)
			if err != nil {
				return err
			}
			return runServer(runCfg, streams)
		},
	}

	// Set output streams for the command
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)

	// Add flags
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on for HTTP mode (0 for stdio mode)")
	cmd.Flags().StringVar(&cfg.SSEBaseURL, "sse-base-url", cfg.SSEBaseURL, "Base URL advertised to SSE clients")
	cmd.Flags().IntVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (0-9)")
	cmd.Flags().StringVar(&cfg.KubectlPath, "kubectl-path", cfg.KubectlPath, "Path to the kubectl binary")
	cmd.Flags().IntVar(&cfg.MaxConcurrentProcesses, "max-concurrent-processes", cfg.MaxConcurrentProcesses, "Maximum number of concurrent kubectl processes")
	cmd.Flags().IntVar(&cfg.MaxOutputBytes, "max-output-bytes", cfg.MaxOutputBytes, "Maximum bytes captured from a single kubectl invocation")
	cmd.Flags().BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Run in read-only mode (mutating tools are not registered)")
	cmd.Flags().StringSliceVar(&cfg.AllowedContexts, "allowed-contexts", cfg.AllowedContexts, "Comma-separated list of kubeconfig contexts tools may target (empty allows all)")
	cmd.Flags().StringSliceVar(&cfg.NamespaceAllowlist, "namespace-allowlist", cfg.NamespaceAllowlist, "Comma-separated list of namespaces mutations are limited to (empty allows all)")
	cmd.Flags().StringSliceVar(&cfg.NamespaceBlocklist, "namespace-blocklist", cfg.NamespaceBlocklist, "Comma-separated list of namespaces mutations may never touch")
	cmd.Flags().BoolVar(&cfg.AllowClusterScopedApply, "allow-cluster-resources", cfg.AllowClusterScopedApply, "Allow applying cluster-scoped resources")
	cmd.Flags().StringVar(&cfg.AuditLogPath, "audit-log", cfg.AuditLogPath, "Path to the audit log file (empty logs to stderr)")
	cmd.Flags().StringSliceVar(&cfg.Toolsets, "toolsets", cfg.Toolsets, "Comma-separated list of toolsets to enable (awareness, diagnostic, remediation)")
	cmd.Flags().StringSliceVar(&cfg.EnabledTools, "enabled-tools", cfg.EnabledTools, "Comma-separated list of tools to enable")
	cmd.Flags().StringSliceVar(&cfg.DisabledTools, "disabled-tools", cfg.DisabledTools, "Comma-separated list of tools to disable")

	// Add version command
	cmd.AddCommand(newVersionCommand(streams))

	return cmd
}

// resolveConfig builds the effective configuration: defaults, then the
// optional config file, then the environment (all via LoadConfig, which
// accepts an empty path), then flags set on the command line.
func resolveConfig(cmd *cobra.Command, configPath string, flagCfg *config.PolicyConfig) (*config.PolicyConfig, error) {
	runCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, runCfg, flagCfg)
	return runCfg, nil
}

// applyFlagOverrides copies flag values set on the command line over the
// file-loaded configuration. Flags win over the file, the file wins over
// defaults.
func applyFlagOverrides(cmd *cobra.Command, dst, flagCfg *config.PolicyConfig) {
	overrides := map[string]func(){
		"port":                     func() { dst.Port = flagCfg.Port },
		"sse-base-url":             func() { dst.SSEBaseURL = flagCfg.SSEBaseURL },
		"log-level":                func() { dst.LogLevel = flagCfg.LogLevel },
		"kubectl-path":             func() { dst.KubectlPath = flagCfg.KubectlPath },
		"max-concurrent-processes": func() { dst.MaxConcurrentProcesses = flagCfg.MaxConcurrentProcesses },
		"max-output-bytes":         func() { dst.MaxOutputBytes = flagCfg.MaxOutputBytes },
		"read-only":                func() { dst.ReadOnly = flagCfg.ReadOnly },
		"allowed-contexts":         func() { dst.AllowedContexts = flagCfg.AllowedContexts },
		"namespace-allowlist":      func() { dst.NamespaceAllowlist = flagCfg.NamespaceAllowlist },
		"namespace-blocklist":      func() { dst.NamespaceBlocklist = flagCfg.NamespaceBlocklist },
		"allow-cluster-resources":  func() { dst.AllowClusterScopedApply = flagCfg.AllowClusterScopedApply },
		"audit-log":                func() { dst.AuditLogPath = flagCfg.AuditLogPath },
		"toolsets":                 func() { dst.Toolsets = flagCfg.Toolsets },
		"enabled-tools":            func() { dst.EnabledTools = flagCfg.EnabledTools },
		"disabled-tools":           func() { dst.DisabledTools = flagCfg.DisabledTools },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

// runServer runs the MCP server with the given configuration
func runServer(cfg *config.PolicyConfig, streams IOStreams) error {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %v", err)
	}

	// Initialize logging before anything else writes. In stdio mode the
	// protocol owns stdout, so logs always go to stderr.
	logging.Initialize(cfg.LogLevel)

	// Create MCP server
	server, err := mcp.NewServer(mcp.Configuration{PolicyConfig: cfg})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %v", err)
	}
	defer server.Close()

	// Start server based on port configuration
	if cfg.Port == 0 {
		// Stdio mode
		fmt.Fprintf(streams.ErrOut, "Starting kubectl MCP Server in stdio mode\n")
		fmt.Fprintf(streams.ErrOut, "Enabled tools: %v\n", server.GetEnabledTools())
		return server.ServeStdio()
	}

	// HTTP mode
	fmt.Fprintf(streams.ErrOut, "Starting kubectl MCP Server in HTTP mode on port %d\n", cfg.Port)
	fmt.Fprintf(streams.ErrOut, "Enabled tools: %v\n", server.GetEnabledTools())
	return httpserver.Serve(context.Background(), server, cfg)
}

// newVersionCommand creates the version command
func newVersionCommand(streams IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(streams.Out, "%s\n", version.GetVersionInfo())
		},
	}

	// Set output streams for the command
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)

	return cmd
}
