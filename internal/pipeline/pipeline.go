// Package pipeline wires collection, classification, prompting and parsing
// into the commit message and range summary runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/roivaz/commitbot/internal/classify"
	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/llm"
	"github.com/roivaz/commitbot/internal/logging"
	"github.com/roivaz/commitbot/internal/prompt"
	"github.com/roivaz/commitbot/internal/response"
	"github.com/roivaz/commitbot/internal/staging"
)

// Re-exported so callers can classify failures without importing every stage.
var (
	ErrNoStagedChanges   = staging.ErrNoStagedChanges
	ErrEmptyRange        = history.ErrEmptyRange
	ErrInvalidRange      = history.ErrInvalidRange
	ErrUserAborted       = classify.ErrUserAborted
	ErrTimeout           = llm.ErrTimeout
	ErrTransport         = llm.ErrTransport
	ErrMalformedResponse = response.ErrMalformedResponse
)

// IsCleanExit reports whether err ends a run without it being a failure.
func IsCleanExit(err error) bool {
	return errors.Is(err, ErrNoStagedChanges) ||
		errors.Is(err, ErrEmptyRange) ||
		errors.Is(err, ErrUserAborted)
}

// Repository is the version control capability the runs read from.
type Repository interface {
	staging.Source
	history.Source
	CurrentBranch(ctx context.Context) (string, error)
}

// Operator answers the interactive questions of a commit run.
type Operator interface {
	classify.Prompter
	Line(ctx context.Context, question string) (string, error)
}

// TitleLookup fills pull request titles on numbered groups.
type TitleLookup interface {
	Fill(ctx context.Context, groups []history.Group)
}

type Pipeline struct {
	cfg       Config
	repo      Repository
	client    llm.Client
	collector *staging.Collector
	walker    *history.Walker
	composer  *prompt.Composer
	parser    *response.Parser
	titles    TitleLookup
	log       logging.Logger
}

type Option func(*Pipeline)

// WithTitles enables pull request title lookup for grouped summaries.
func WithTitles(t TitleLookup) Option {
	return func(p *Pipeline) { p.titles = t }
}

func New(cfg Config, repo Repository, client llm.Client, log logging.Logger, opts ...Option) (*Pipeline, error) {
	commitSchema, err := response.CommitSchema(cfg.SubjectMax)
	if err != nil {
		return nil, err
	}
	prSchema, err := response.PRSchema(cfg.SubjectMax)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:       cfg,
		repo:      repo,
		client:    client,
		collector: staging.NewCollector(repo, log),
		walker:    history.NewWalker(repo, log),
		composer:  prompt.NewComposer(commitSchema, prSchema, cfg.DiffCharBudget, log),
		parser:    response.NewParser(log),
		log:       log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// WithTicket returns a copy of p whose runs use summary as the ticket goal.
func (p *Pipeline) WithTicket(summary string) *Pipeline {
	cp := *p
	cp.cfg.TicketSummary = strings.TrimSpace(summary)
	return &cp
}

// RunCommit produces a commit message for the staged changes. A nil operator
// classifies every file as main purpose without asking. On a malformed reply
// the returned message still carries the raw model text.
func (p *Pipeline) RunCommit(ctx context.Context, op Operator) (response.Message, error) {
	log := p.log.WithValues("run", uuid.NewString(), "path", "commit")

	files, err := p.collector.Collect(ctx)
	if err != nil {
		return response.Message{}, err
	}
	branch, err := p.repo.CurrentBranch(ctx)
	if err != nil {
		return response.Message{}, fmt.Errorf("current branch: %w", err)
	}
	log.Info("collected staged files", "branch", branch, "files", len(files))

	opts := prompt.CommitContext{Branch: branch, TicketSummary: p.cfg.TicketSummary}
	if op == nil {
		files = classify.Automatic(files)
	} else {
		if opts.TicketSummary == "" {
			answer, err := op.Line(ctx, "Optional: brief ticket summary (enter to skip): ")
			if err != nil {
				return response.Message{}, asAbort(ctx, err)
			}
			opts.TicketSummary = strings.TrimSpace(answer)
		}
		files, err = classify.Interactive(ctx, files, op)
		if err != nil {
			return response.Message{}, err
		}
	}

	if !hasIncluded(files) {
		return response.Message{}, fmt.Errorf("every staged file was ignored: %w", ErrNoStagedChanges)
	}

	if op != nil && p.cfg.PerFileSummaries {
		if err := p.summarizeFiles(ctx, log, files, opts); err != nil {
			return response.Message{}, err
		}
	}

	return p.ask(ctx, log, p.composer.Commit(files, opts))
}

// RunPR summarizes the commits reachable from feature but not base. An empty
// feature means the current branch.
func (p *Pipeline) RunPR(ctx context.Context, base, feature string, mode history.Mode) (response.Message, error) {
	log := p.log.WithValues("run", uuid.NewString(), "path", "pr")

	if feature == "" {
		branch, err := p.repo.CurrentBranch(ctx)
		if err != nil {
			return response.Message{}, fmt.Errorf("current branch: %w", err)
		}
		feature = branch
	}
	commits, err := p.walker.Walk(ctx, base, feature)
	if err != nil {
		return response.Message{}, err
	}

	groups := history.GroupCommits(commits)
	mode = mode.Resolve(commits)
	log.Info("walked range", "base", base, "feature", feature, "commits", len(commits), "groups", len(groups), "mode", string(mode))
	if mode == history.ModeGrouped && p.titles != nil {
		p.titles.Fill(ctx, groups)
	}

	return p.ask(ctx, log, p.composer.PR(groups, prompt.PRContext{
		Base:          base,
		Feature:       feature,
		Mode:          mode,
		TicketSummary: p.cfg.TicketSummary,
	}))
}

func (p *Pipeline) summarizeFiles(ctx context.Context, log logging.Logger, files []classify.File, opts prompt.CommitContext) error {
	for i := range files {
		if files[i].Kind == classify.Ignored {
			continue
		}
		pr := p.composer.FileSummary(files[i], opts)
		out, err := p.client.Request(ctx, p.request(pr))
		if err != nil {
			return fmt.Errorf("summarize %s: %w", files[i].Path, err)
		}
		files[i].Summary = strings.TrimSpace(out)
		log.Debug("file summarized", "path", files[i].Path)
	}
	return nil
}

func (p *Pipeline) ask(ctx context.Context, log logging.Logger, pr prompt.Prompt) (response.Message, error) {
	raw, err := p.client.Request(ctx, p.request(pr))
	if err != nil {
		return response.Message{}, err
	}
	msg, err := p.parser.Parse(raw, pr.Schema)
	if err != nil {
		log.Error(err, "model reply rejected", "schema", pr.Schema.Name)
		return msg, err
	}
	log.Info("message ready", "schema", pr.Schema.Name, "sections", len(msg.Sections))
	return msg, nil
}

func (p *Pipeline) request(pr prompt.Prompt) llm.Request {
	return llm.Request{
		System:  pr.System,
		User:    pr.User,
		Schema:  pr.Schema.Document(),
		Timeout: p.cfg.LLM.CallTimeout,
	}
}

func hasIncluded(files []classify.File) bool {
	for _, f := range files {
		if f.Kind != classify.Ignored {
			return true
		}
	}
	return false
}

// asAbort maps an operator input failure onto ErrUserAborted when it came from
// end of input or cancellation.
func asAbort(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return ErrUserAborted
	}
	return err
}
