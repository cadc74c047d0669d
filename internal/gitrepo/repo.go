package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrRefNotFound is returned by ResolveRef when a name does not point at a commit.
var ErrRefNotFound = errors.New("reference not found")

type RepoConfig struct {
	Path    string
	Timeout time.Duration // per git invocation, default 30s
}

type Repo struct {
	cfg    RepoConfig
	runner Runner
}

func New(cfg RepoConfig) *Repo {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Repo{cfg: cfg, runner: Runner{Timeout: cfg.Timeout}}
}

type Runner struct {
	Timeout time.Duration
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Start(); err != nil {
		return "", formatGitError(args, err, stderr.String())
	}
	done := make(chan error, 1)
	go func() { done <- c.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return "", formatGitError(args, err, stderr.String())
		}
		return stdout.String(), nil
	case <-time.After(r.Timeout):
		_ = c.Process.Kill()
		<-done
		return "", formatGitTimeoutError(args, r.Timeout, stderr.String())
	case <-ctx.Done():
		_ = c.Process.Kill()
		<-done
		return "", formatGitContextError(args, ctx.Err(), stderr.String())
	}
}

func formatGitError(args []string, cause error, stderr string) error {
	cmd := strings.Join(args, " ")
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("git %s: %w", cmd, cause)
}

func formatGitTimeoutError(args []string, timeout time.Duration, stderr string) error {
	return formatGitError(args, fmt.Errorf("command timed out after %s", timeout), stderr)
}

func formatGitContextError(args []string, cause error, stderr string) error {
	if cause == nil {
		cause = errors.New("context canceled")
	}
	return formatGitError(args, cause, stderr)
}

// Run is a helper to execute arbitrary git subcommands in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path, args...)
}

// Root returns the absolute top-level directory of the working tree.
func (r *Repo) Root(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name ("HEAD" when detached).
// On a branch with no commits yet the name comes from symbolic-ref.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		sym, symErr := r.Run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
		if symErr != nil {
			return "", err
		}
		out = sym
	}
	return strings.TrimSpace(out), nil
}

// ResolveRef returns the commit SHA a name points at.
func (r *Repo) ResolveRef(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.HasPrefix(name, "-") {
		return "", fmt.Errorf("%q: %w", name, ErrRefNotFound)
	}
	out, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", name+"^{commit}")
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", name, ErrRefNotFound)
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the configured URL of a remote, or "" when it does not exist.
func (r *Repo) RemoteURL(ctx context.Context, remote string) string {
	out, err := r.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// WriteCommitEditMsg stores msg in the git dir so the next `git commit` opens
// with it. No commit is created.
func (r *Repo) WriteCommitEditMsg(ctx context.Context, msg string) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	path := filepath.Join(strings.TrimSpace(out), "COMMIT_EDITMSG")
	if err := os.WriteFile(path, []byte(strings.TrimRight(msg, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
