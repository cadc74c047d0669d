package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/commitbot/internal/mcp/tools"
	"github.com/roivaz/commitbot/internal/pipeline"
)

type Config struct {
	Version      string
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
}

// DefaultConfig registers both tools against p.
func DefaultConfig(p *pipeline.Pipeline, version string) Config {
	svc := tools.NewPipelineService(p)
	return Config{
		Version: version,
		ToolAdapters: map[string]ToolAdapter{
			"commit_message": &tools.CommitMessageHandler{Service: svc},
			"pr_summary":     &tools.PRSummaryHandler{Service: svc},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath("/mcp"),
			server.WithStateLess(true),
		},
	}
}
