package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roivaz/commitbot/internal/classify"
	"github.com/roivaz/commitbot/internal/config"
	"github.com/roivaz/commitbot/internal/forge"
	"github.com/roivaz/commitbot/internal/gitrepo"
	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/logging"
	"github.com/roivaz/commitbot/internal/mcp"
	"github.com/roivaz/commitbot/internal/pipeline"
)

type app struct {
	cfg  pipeline.Config
	repo *gitrepo.Repo
	pipe *pipeline.Pipeline
	log  logging.Logger
}

// setup finds the repository, merges its config file and builds the pipeline.
func setup(ctx context.Context) (*app, error) {
	level := config.LogLevel()
	if config.Debug() {
		level = "debug"
	}
	base, err := logging.NewLogr(level)
	if err != nil {
		return nil, err
	}
	log := logging.New(base)

	probe := gitrepo.New(gitrepo.RepoConfig{Path: config.RepoPath()})
	root, err := probe.Root(ctx)
	if err != nil {
		return nil, fmt.Errorf("not inside a git repository: %w", err)
	}
	if err := config.LoadFiles(root); err != nil {
		return nil, err
	}

	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return nil, err
	}
	repo := gitrepo.New(gitrepo.RepoConfig{Path: root, Timeout: cfg.GitTimeout})

	client, err := pipeline.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	var opts []pipeline.Option
	if cfg.GitHubLookup {
		if owner, name, ok := forge.RepoFromRemote(repo.RemoteURL(ctx, "origin")); ok {
			gh := forge.NewGitHubClient(cfg.GitHubToken)
			opts = append(opts, pipeline.WithTitles(forge.NewTitleFetcher(gh, owner, name, log)))
		} else {
			log.Warn("github lookup requested but origin is not a GitHub remote")
		}
	}

	pipe, err := pipeline.New(cfg, repo, client, log, opts...)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, repo: repo, pipe: pipe, log: log}, nil
}

func runCommit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}

	var op pipeline.Operator
	if ask, _ := cmd.Flags().GetBool("ask"); ask {
		op = classify.NewTerminalPrompter(os.Stdin, os.Stderr)
	}
	msg, err := a.pipe.RunCommit(ctx, op)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg.String())

	if config.Apply() {
		path, err := a.repo.WriteCommitEditMsg(ctx, msg.String())
		if err != nil {
			return err
		}
		a.log.Info("commit message written", "path", path)
	}
	return nil
}

func newPRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr <base> [feature]",
		Short: "Summarize the commits of a branch as a pull request description",
		Long: "Summarize the commits reachable from feature (default: the current branch) but not from base.\n" +
			"Commits are grouped by the first #number they reference when two or more numbers appear,\n" +
			"unless --pr or --commit forces a mode.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode, err := prMode(cmd)
			if err != nil {
				return err
			}
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			feature := ""
			if len(args) > 1 {
				feature = args[1]
			}
			msg, err := a.pipe.RunPR(ctx, args[0], feature, mode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.String())
			return nil
		},
	}
	cmd.Flags().Bool("pr", false, "Group commits by referenced PR number")
	cmd.Flags().Bool("commit", false, "List every commit on its own")
	cmd.MarkFlagsMutuallyExclusive("pr", "commit")
	return cmd
}

func prMode(cmd *cobra.Command) (history.Mode, error) {
	byPR, _ := cmd.Flags().GetBool("pr")
	byCommit, _ := cmd.Flags().GetBool("commit")
	switch {
	case byPR && byCommit:
		return history.ModeAuto, fmt.Errorf("--pr and --commit are mutually exclusive")
	case byPR:
		return history.ModeGrouped, nil
	case byCommit:
		return history.ModeCommits, nil
	default:
		return history.ModeAuto, nil
	}
}

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve commit_message and pr_summary as MCP tools (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			srv := mcp.New(mcp.DefaultConfig(a.pipe, version))

			addr, _ := cmd.Flags().GetString("http")
			if addr == "" {
				a.log.Info("serving MCP over stdio")
				return srv.ServeStdio()
			}
			return serveHTTP(ctx, a.log, addr, srv.Handler)
		},
	}
	cmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio (e.g. 127.0.0.1:8000)")
	return cmd
}

func serveHTTP(ctx context.Context, log logging.Logger, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("MCP server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
