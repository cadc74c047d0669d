package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/commitbot/internal/config"
	"github.com/roivaz/commitbot/internal/llm"
	"github.com/roivaz/commitbot/internal/logging"
)

var defaultModels = map[string]string{
	"openai": "gpt-5-nano",
	"ollama": "llama3.2",
}

type Config struct {
	SubjectMax       int
	DiffCharBudget   int
	TicketSummary    string
	PerFileSummaries bool
	GitTimeout       time.Duration
	NoModel          bool
	LLM              llm.Config
	GitHubLookup     bool
	GitHubToken      string
}

func LoadConfig() (Config, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider()))
	model := strings.TrimSpace(config.Model())
	cfg := Config{
		SubjectMax:       config.SubjectMax(),
		DiffCharBudget:   config.DiffCharBudget(),
		TicketSummary:    strings.TrimSpace(config.TicketSummary()),
		PerFileSummaries: config.PerFileSummaries(),
		NoModel:          config.NoModel() || provider == "none" || strings.EqualFold(model, "none"),
		LLM: llm.Config{
			Provider:      provider,
			Model:         model,
			OllamaURL:     config.OllamaURL(),
			OpenAIAPIKey:  config.OpenAIAPIKey(),
			OpenAIBaseURL: config.OpenAIBaseURL(),
		},
		GitHubLookup: config.GitHubLookup(),
		GitHubToken:  config.GitHubToken(),
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[provider]
	}
	if cfg.SubjectMax <= 0 {
		return Config{}, fmt.Errorf("invalid subject_max %d: must be positive", cfg.SubjectMax)
	}

	timeout, err := parseDuration(config.LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid llm_call_timeout: %w", err)
	}
	cfg.LLM.CallTimeout = timeout

	gitTimeout, err := parseDuration(config.GitTimeout(), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid git_timeout: %w", err)
	}
	cfg.GitTimeout = gitTimeout

	return cfg, nil
}

// NewClient returns the model client the configuration asks for.
func NewClient(cfg Config, log logging.Logger) (llm.Client, error) {
	if cfg.NoModel {
		log.Info("model disabled; replies are placeholders")
		return llm.NoModel{}, nil
	}
	lc := cfg.LLM
	lc.Logger = log
	return llm.New(lc)
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
