package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/roivaz/commitbot/internal/logging"
)

type Config struct {
	Provider      string // ollama | openai
	Model         string
	OllamaURL     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	CallTimeout   time.Duration
	Logger        logging.Logger
}

// LangChainClient sends requests through a langchaingo model.
type LangChainClient struct {
	llm   llms.Model
	model string
	log   logging.Logger
	to    time.Duration
}

// New builds the client for cfg.Provider.
func New(cfg Config) (*LangChainClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model name is required")
	}
	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(cfg.Model),
			ollama.WithKeepAlive("5m"),
		}
		if u := strings.TrimSpace(cfg.OllamaURL); u != "" {
			opts = append(opts, ollama.WithServerURL(u))
		}
		model, err = ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY (or --api-key) is required unless --no-model or model=none is used")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		}
		if u := strings.TrimSpace(cfg.OpenAIBaseURL); u != "" {
			opts = append(opts, openai.WithBaseURL(u))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown provider %q (want ollama, openai or none)", cfg.Provider)
	}
	return NewFromModel(model, cfg.Model, cfg.CallTimeout, cfg.Logger), nil
}

// NewFromModel wraps an existing langchaingo model.
func NewFromModel(model llms.Model, name string, timeout time.Duration, log logging.Logger) *LangChainClient {
	return &LangChainClient{llm: model, model: name, log: log.WithName("llm"), to: timeout}
}

func (c *LangChainClient) Request(ctx context.Context, req Request) (string, error) {
	to := req.Timeout
	if to <= 0 {
		to = c.to
	}
	callCtx, cancel := withTimeout(ctx, to)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}
	var opts []llms.CallOption
	if len(req.Schema) > 0 {
		opts = append(opts, llms.WithJSONMode())
	}

	debug := c.log.DebugEnabled()
	if debug {
		c.log.Debug("model request",
			"model", c.model,
			"prompt_tokens", EstimateTokens(req.System)+EstimateTokens(req.User),
			"json", len(req.Schema) > 0,
		)
		c.log.Debug("prompt", "system", req.System, "user", req.User)
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(callCtx, messages, opts...)
	if err != nil {
		return "", annotateError(ctx, callCtx, err, to)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrTransport)
	}
	out := resp.Choices[0].Content
	if debug {
		c.log.Debug("model response",
			"elapsed", time.Since(start).String(),
			"completion_tokens", EstimateTokens(out),
			"text", out,
		)
	}
	return out, nil
}
