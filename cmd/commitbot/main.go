package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roivaz/commitbot/internal/config"
	"github.com/roivaz/commitbot/internal/pipeline"
	"github.com/roivaz/commitbot/internal/response"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd()
	config.Init(root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stdout, os.Stderr))
}

// exitCode reports err the way the CLI promises: clean terminations print a
// plain line and succeed, a malformed reply prints the raw model text on
// stdout, and every failure ends with one diagnostic line on stderr.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if pipeline.IsCleanExit(err) {
		fmt.Fprintln(stderr, cleanExitLine(err))
		return 0
	}
	var malformed *response.MalformedError
	if errors.As(err, &malformed) && malformed.Raw != "" {
		fmt.Fprintln(stdout, malformed.Raw)
	}
	fmt.Fprintf(stderr, "commitbot: %v\n", err)
	return 1
}

func cleanExitLine(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrUserAborted):
		return "Aborted."
	case errors.Is(err, pipeline.ErrEmptyRange):
		return "No commits found in range: " + err.Error()
	default:
		return "Nothing to describe: " + err.Error()
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "commitbot",
		Short:         "Write commit messages and PR summaries for your changes with a language model",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCommit,
	}

	pf := root.PersistentFlags()
	pf.String("provider", "", "Model provider: openai, ollama or none")
	pf.String("model", "", "Model name (\"none\" disables the model)")
	pf.Bool("no-model", false, "Do not call a model; emit a placeholder message")
	pf.String("ollama-url", "", "Ollama base URL")
	pf.String("api-key", "", "OpenAI API key (default $OPENAI_API_KEY)")
	pf.String("log-level", "", "Log level: debug, info or error")
	pf.Bool("debug", false, "Shorthand for --log-level=debug")
	pf.String("timeout", "", "Timeout of a single model request (e.g. 90s)")
	pf.Int("subject-max", 0, "Maximum subject length in characters")
	pf.String("ticket-summary", "", "One line describing the overall goal of the ticket")
	pf.Bool("per-file-summaries", true, "Ask the model for a summary of each file in interactive mode")
	pf.Bool("github-lookup", false, "Fetch PR titles from GitHub for grouped summaries")
	pf.String("repo", "", "Path inside the repository (default: current directory)")

	root.Flags().Bool("ask", false, "Classify every staged file interactively")
	root.Flags().Bool("apply", false, "Write the message to .git/COMMIT_EDITMSG")

	root.AddCommand(newPRCmd(), newMCPCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
