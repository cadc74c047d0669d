package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitbot/internal/history"
)

type PRSummaryHandler struct{ Service MessageService }

func (h *PRSummaryHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	base := stringArgument(args, "base")
	if base == "" {
		return mcp.NewToolResultError("base parameter is required"), nil
	}
	mode, err := history.ParseMode(stringArgument(args, "mode"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return messageResult(h.Service.PRSummary(ctx, base, stringArgument(args, "feature"), mode, stringArgument(args, "ticket_summary")))
}
