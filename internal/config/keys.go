package config

const (
	KeyProvider       = "provider"
	KeyModel          = "model"
	KeyNoModel        = "no_model"
	KeyOllamaURL      = "ollama_url"
	KeyOpenAIAPIKey   = "openai_api_key"
	KeyOpenAIBaseURL  = "openai_base_url"
	KeyLogLevel       = "log_level"
	KeyDebug          = "debug"
	KeyLLMCallTimeout = "llm_call_timeout"
	KeyGitTimeout     = "git_timeout"
	KeySubjectMax     = "subject_max"
	KeyDiffCharBudget = "diff_char_budget"
	KeyTicketSummary  = "ticket_summary"
	KeyPerFileSummary = "per_file_summaries"
	KeyApply          = "apply"
	KeyGitHubToken    = "github_token"
	KeyGitHubLookup   = "github_lookup"
	KeyRepoPath       = "repo"
)
