package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "COMMITBOT"
	GlobalFileName = "commitbot.yaml"
	RepoFileName   = ".commitbot.yaml"
)

// flagKeys maps config keys onto the persistent flag that overrides them.
var flagKeys = map[string]string{
	KeyProvider:       "provider",
	KeyModel:          "model",
	KeyNoModel:        "no-model",
	KeyOllamaURL:      "ollama-url",
	KeyOpenAIAPIKey:   "api-key",
	KeyLogLevel:       "log-level",
	KeyDebug:          "debug",
	KeyLLMCallTimeout: "timeout",
	KeySubjectMax:     "subject-max",
	KeyTicketSummary:  "ticket-summary",
	KeyPerFileSummary: "per-file-summaries",
	KeyApply:          "apply",
	KeyGitHubLookup:   "github-lookup",
	KeyRepoPath:       "repo",
}

func Init(root *cobra.Command) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(KeyOpenAIAPIKey, EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = godotenv.Load()
	if root != nil {
		bindFlags(root.PersistentFlags())
		bindFlags(root.Flags())
	}
	setDefaults()
}

func bindFlags(flags *pflag.FlagSet) {
	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func setDefaults() {
	viper.SetDefault(KeyProvider, "openai")
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyGitTimeout, "30s")
	viper.SetDefault(KeySubjectMax, 72)
	viper.SetDefault(KeyDiffCharBudget, 12000)
	viper.SetDefault(KeyPerFileSummary, true)
}

// LoadFiles merges the global file and then the per-repository file into the
// configuration. Flags and environment still win over both. Missing files are
// not an error.
func LoadFiles(repoRoot string) error {
	var paths []string
	if dir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".config", GlobalFileName))
	}
	if repoRoot != "" {
		paths = append(paths, filepath.Join(repoRoot, RepoFileName))
	}
	for _, p := range paths {
		if err := mergeFile(p); err != nil {
			return err
		}
	}
	return nil
}

func mergeFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func Provider() string       { return strings.ToLower(viper.GetString(KeyProvider)) }
func Model() string          { return viper.GetString(KeyModel) }
func NoModel() bool          { return viper.GetBool(KeyNoModel) }
func OllamaURL() string      { return viper.GetString(KeyOllamaURL) }
func OpenAIAPIKey() string   { return viper.GetString(KeyOpenAIAPIKey) }
func OpenAIBaseURL() string  { return viper.GetString(KeyOpenAIBaseURL) }
func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func Debug() bool            { return viper.GetBool(KeyDebug) }
func LLMCallTimeout() string { return viper.GetString(KeyLLMCallTimeout) }
func GitTimeout() string     { return viper.GetString(KeyGitTimeout) }
func SubjectMax() int        { return viper.GetInt(KeySubjectMax) }
func DiffCharBudget() int    { return viper.GetInt(KeyDiffCharBudget) }
func TicketSummary() string  { return viper.GetString(KeyTicketSummary) }
func PerFileSummaries() bool { return viper.GetBool(KeyPerFileSummary) }
func Apply() bool            { return viper.GetBool(KeyApply) }
func GitHubToken() string    { return viper.GetString(KeyGitHubToken) }
func GitHubLookup() bool     { return viper.GetBool(KeyGitHubLookup) }
func RepoPath() string       { return viper.GetString(KeyRepoPath) }
