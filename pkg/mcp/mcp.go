package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kubemcp/kubectl-mcp-server/pkg/audit"
	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/awareness"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/diagnostic"
	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/remediation"
	"github.com/kubemcp/kubectl-mcp-server/pkg/version"
)

// Configuration wraps the static configuration with additional runtime components
type Configuration struct {
	*config.PolicyConfig
}

// Server represents the MCP server
type Server struct {
	configuration *Configuration
	server        *server.MCPServer
	executor      *kubectl.Executor
	enabledTools  []string
}

// NewServer creates a new MCP server with the given configuration
func NewServer(configuration Configuration) (*Server, error) {
	// Note: Logging is initialized in root.go before calling NewServer
	// to properly handle stdio vs HTTP/SSE mode

	var serverOptions []server.ServerOption

	// Configure server capabilities
	serverOptions = append(serverOptions,
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	auditWriter, err := audit.OpenFile(configuration.AuditLogPath)
	if err != nil {
		// A broken audit sink must not silently drop mutation records.
		logging.Warn("Failed to open audit log: %v, falling back to stderr", err)
		auditWriter = audit.NewWriter(os.Stderr)
	}

	s := &Server{
		configuration: &configuration,
		server:        server.NewMCPServer(version.BinaryName, version.Version, serverOptions...),
		executor:      kubectl.NewExecutor(configuration.PolicyConfig, auditWriter),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, err
	}

	// Register prompts and resources
	s.registerPrompts()
	s.registerResources()

	return s, nil
}

// registerTools registers all available tools based on configuration
func (s *Server) registerTools() error {
	// Initialize toolsets. The diagnostic toolset needs the final tool
	// count for its self-test output, so it reads it lazily. Order is
	// fixed so tools are advertised in the same order every run.
	toolsetOrder := []string{"awareness", "diagnostic", "remediation"}
	availableToolsets := map[string]toolset.Toolset{
		"awareness": &awareness.Toolset{},
		"diagnostic": &diagnostic.Toolset{
			ToolCount: func() int { return len(s.enabledTools) },
		},
		"remediation": &remediation.Toolset{},
	}

	// Determine which toolsets to enable
	configuredToolsets := s.configuration.Toolsets
	if len(configuredToolsets) == 0 {
		configuredToolsets = toolsetOrder
	}
	enabledToolsets := make([]toolset.Toolset, 0, len(configuredToolsets))
	for _, toolsetName := range configuredToolsets {
		if ts, exists := availableToolsets[toolsetName]; exists {
			enabledToolsets = append(enabledToolsets, ts)
		} else {
			logging.Warn("Unknown toolset %q in configuration, skipping", toolsetName)
		}
	}

	// Register tools from each enabled toolset
	for _, ts := range enabledToolsets {
		tools := ts.GetTools(s.executor)
		for i := range tools {
			tool := tools[i]

			// In read-only mode mutating tools are not registered at
			// all, so clients never see them advertised.
			if s.configuration.ReadOnly && tool.Mutating() {
				logging.Info("Read-only mode: skipping tool %s", tool.Tool.Name)
				continue
			}

			// Check if tool is enabled/disabled by configuration
			if s.shouldEnableTool(tool.Tool.Name) {
				if err := s.registerTool(tool); err != nil {
					return fmt.Errorf("failed to register tool %s: %w", tool.Tool.Name, err)
				}
			}
		}
	}

	logging.Info("MCP server initialized with %d tools", len(s.enabledTools))
	return nil
}

// shouldEnableTool determines if a tool should be enabled based on configuration
func (s *Server) shouldEnableTool(toolName string) bool {
	// Check if tool is explicitly disabled
	for _, disabledTool := range s.configuration.DisabledTools {
		if disabledTool == toolName {
			return false
		}
	}

	// Check if tool is explicitly enabled
	if len(s.configuration.EnabledTools) > 0 {
		for _, enabledTool := range s.configuration.EnabledTools {
			if enabledTool == toolName {
				return true
			}
		}
		// If enabled tools are specified and this tool is not in the list, disable it
		return false
	}

	// Default: enable the tool
	return true
}

func contextFunc(ctx context.Context, r *http.Request) context.Context {
	// Get the Authorization header if needed for future extension
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		return context.WithValue(ctx, "Authorization", authHeader)
	}

	return ctx
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(tool toolset.ServerTool) error {
	toolHandler := server.ToolHandlerFunc(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logging.Debug("Tool %s called with params: %v", tool.Tool.Name, request.Params.Arguments)

		// Convert arguments to the format expected by our tool handlers
		params := make(map[string]interface{})
		if arguments, ok := request.Params.Arguments.(map[string]interface{}); ok {
			for key, value := range arguments {
				params[key] = value
			}
		}

		result, err := tool.Handler(ctx, s.executor, params)
		if err != nil {
			return NewTextResult("", err), nil
		}

		return NewTextResult(result, nil), nil
	})

	// Use the simpler AddTool method
	s.server.AddTool(tool.Tool, toolHandler)
	s.enabledTools = append(s.enabledTools, tool.Tool.Name)

	logging.Info("Registered tool: %s", tool.Tool.Name)
	return nil
}

// ServeStdio starts the MCP server in stdio mode
func (s *Server) ServeStdio() error {
	logging.Info("Starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// ServeSse starts the MCP server in SSE mode
func (s *Server) ServeSse(baseURL string, httpServer *http.Server) *server.SSEServer {
	logging.Info("Starting MCP server in SSE mode")

	options := make([]server.SSEOption, 0)
	options = append(options, server.WithHTTPServer(httpServer), server.WithSSEContextFunc(contextFunc))

	if baseURL != "" {
		options = append(options, server.WithBaseURL(baseURL))
	}

	return server.NewSSEServer(s.server, options...)
}

// ServeHTTP starts the MCP server in HTTP mode
func (s *Server) ServeHTTP(httpServer *http.Server) *server.StreamableHTTPServer {
	logging.Info("Starting MCP server in HTTP mode")

	options := []server.StreamableHTTPOption{
		server.WithHTTPContextFunc(contextFunc),
		server.WithStreamableHTTPServer(httpServer),
		server.WithStateLess(true),
	}

	return server.NewStreamableHTTPServer(s.server, options...)
}

// GetEnabledTools returns the list of enabled tools
func (s *Server) GetEnabledTools() []string {
	return s.enabledTools
}

// Executor returns the execution facade backing all tools.
func (s *Server) Executor() *kubectl.Executor {
	return s.executor
}

// Close cleans up the server resources
func (s *Server) Close() {
	logging.Info("Closing MCP server")
	// Nothing to clean up for now
}

// NewTextResult creates a standardized text result for tool responses
func NewTextResult(content string, err error) *mcp.CallToolResult {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: err.Error(),
				},
			},
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: content,
			},
		},
	}
}
