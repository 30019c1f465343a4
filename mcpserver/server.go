// Package mcpserver exposes the action catalogue as MCP tools. Calls go
// straight to the executor: arguments are validated against the registry
// and performed by the registered handler, with no model in the loop.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Name is the server name announced to MCP clients.
const Name = "function-calling-relay"

// Executor performs validated action requests.
type Executor interface {
	Execute(ctx context.Context, call protocol.ToolCall) protocol.Outcome
}

// Server wraps an MCP server with one tool per catalogue action.
type Server struct {
	executor  Executor
	mcpServer *server.MCPServer
	tools     []string
}

// New creates a Server declaring every schema as a tool.
func New(version string, schemas []actions.Schema, exec Executor) (*Server, error) {
	s := &Server{
		executor:  exec,
		mcpServer: server.NewMCPServer(Name, version, server.WithToolCapabilities(false)),
	}

	for _, schema := range schemas {
		tool := schema.Tool()
		raw, err := json.Marshal(tool.Parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema for %s: %w", tool.Name, err)
		}
		s.mcpServer.AddTool(mcp.NewToolWithRawSchema(tool.Name, tool.Description, raw), s.handler(tool.Name))
		s.tools = append(s.tools, tool.Name)
	}
	return s, nil
}

// Tools returns the declared tool names in catalogue order.
func (s *Server) Tools() []string {
	return s.tools
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode arguments: %v", err)), nil
		}

		out := s.executor.Execute(ctx, protocol.NewToolCall("mcp_"+name, name, string(raw)))
		if !out.Succeeded() {
			return mcp.NewToolResultError(out.String()), nil
		}
		return mcp.NewToolResultText(string(out.Payload)), nil
	}
}
