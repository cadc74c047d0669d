// Package mcp exposes the commit message and PR summary runs as MCP tools.
package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

// ToolDefinitions lists the tools the server can register, by name.
func ToolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		"commit_message": mcp.NewTool("commit_message",
			mcp.WithDescription("Generate a structured commit message for the changes currently staged in the repository. Every staged file is treated as part of the main purpose."),
			mcp.WithString("ticket_summary",
				mcp.Description("Optional: one line describing the overall goal of the ticket"),
			),
		),
		"pr_summary": mcp.NewTool("pr_summary",
			mcp.WithDescription("Summarize the commits between a base and a feature reference as a pull request title and description, grouped by referenced PR numbers."),
			mcp.WithString("base",
				mcp.Required(),
				mcp.Description("Base branch or commit (e.g. 'main')"),
			),
			mcp.WithString("feature",
				mcp.Description("Optional: feature branch or commit (default: current branch)"),
			),
			mcp.WithString("mode",
				mcp.Description("Optional: 'prs' groups commits by PR number, 'commits' lists every commit (default: auto)"),
				mcp.Enum("auto", "prs", "commits"),
			),
			mcp.WithString("ticket_summary",
				mcp.Description("Optional: one line describing the overall goal of the ticket"),
			),
		),
	}
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"commitbot",
		cfg.Version,
		server.WithToolCapabilities(true),
	)

	toolDefinitions := ToolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := toolDefinitions[name]
		if !ok {
			continue
		}
		adapter := adapter
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCP)
}
