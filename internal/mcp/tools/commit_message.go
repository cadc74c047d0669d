package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type CommitMessageHandler struct{ Service MessageService }

func (h *CommitMessageHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticket := stringArgument(req.GetArguments(), "ticket_summary")
	return messageResult(h.Service.CommitMessage(ctx, ticket))
}
