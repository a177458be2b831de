package toolset

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
)

// Toolset defines the interface for a set of MCP tools.
type Toolset interface {
	// GetName returns the name of the toolset.
	GetName() string

	// GetDescription returns the description of the toolset.
	GetDescription() string

	// GetTools returns the tools provided by this toolset.
	GetTools(exec *kubectl.Executor) []ServerTool
}

// ToolAnnotations provides additional metadata for tools.
type ToolAnnotations struct {
	// ReadOnlyHint indicates if the tool is read-only.
	ReadOnlyHint *bool

	// DestructiveHint indicates if the tool performs destructive operations.
	DestructiveHint *bool
}

// ServerTool represents an MCP tool with its metadata and handler.
// This is a wrapper around mcp.Tool that includes additional server-specific information.
type ServerTool struct {
	// Tool is the MCP tool definition.
	Tool mcp.Tool

	// Annotations provides additional metadata about the tool.
	Annotations ToolAnnotations

	// Handler is the function that handles tool calls.
	Handler ToolHandler
}

// ToolHandler is the function signature for handling tool calls. Every
// handler goes through the executor; none of them shells out directly.
type ToolHandler func(ctx context.Context, exec *kubectl.Executor, params map[string]interface{}) (string, error)

// Mutating returns true when the tool is annotated as a write
// operation. Tools without a ReadOnlyHint are treated as mutating.
func (st *ServerTool) Mutating() bool {
	return st.Annotations.ReadOnlyHint == nil || !*st.Annotations.ReadOnlyHint
}
