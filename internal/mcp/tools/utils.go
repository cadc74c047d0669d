package tools

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitbot/internal/mcp/tools/types"
	"github.com/roivaz/commitbot/internal/pipeline"
	"github.com/roivaz/commitbot/internal/response"
)

func stringArgument(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// messageResult turns the outcome of a run into a tool result. Clean
// terminations are successful results with status "empty"; a malformed reply
// is a tool error that still carries the raw model text.
func messageResult(msg response.Message, err error) (*mcp.CallToolResult, error) {
	switch {
	case err == nil:
		out := types.MessageResult{Status: "ok", Subject: msg.Subject, Text: msg.String()}
		for _, s := range msg.Sections {
			out.Sections = append(out.Sections, types.SectionResult{Label: s.Label, Text: s.Text})
		}
		return mcp.NewToolResultText(string(mustMarshal(out))), nil
	case pipeline.IsCleanExit(err):
		return mcp.NewToolResultText(string(mustMarshal(types.MessageResult{Status: "empty", Reason: err.Error()}))), nil
	case errors.Is(err, pipeline.ErrMalformedResponse):
		return mcp.NewToolResultError(err.Error() + "\n\nraw reply:\n" + msg.Raw), nil
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
