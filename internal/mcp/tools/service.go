package tools

import (
	"context"

	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/pipeline"
	"github.com/roivaz/commitbot/internal/response"
)

// MessageService runs the pipeline for tool calls. Every call is an
// independent run.
type MessageService interface {
	CommitMessage(ctx context.Context, ticket string) (response.Message, error)
	PRSummary(ctx context.Context, base, feature string, mode history.Mode, ticket string) (response.Message, error)
}

type pipelineService struct {
	p *pipeline.Pipeline
}

func NewPipelineService(p *pipeline.Pipeline) MessageService {
	return &pipelineService{p: p}
}

func (s *pipelineService) run(ticket string) *pipeline.Pipeline {
	if ticket == "" {
		return s.p
	}
	return s.p.WithTicket(ticket)
}

func (s *pipelineService) CommitMessage(ctx context.Context, ticket string) (response.Message, error) {
	return s.run(ticket).RunCommit(ctx, nil)
}

func (s *pipelineService) PRSummary(ctx context.Context, base, feature string, mode history.Mode, ticket string) (response.Message, error) {
	return s.run(ticket).RunPR(ctx, base, feature, mode)
}
