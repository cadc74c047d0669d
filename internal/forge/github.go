// Package forge looks up pull request metadata on the hosting forge.
package forge

import (
	"context"
	"net/http"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/logging"
)

func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// RepoFromRemote returns owner and name of a GitHub remote URL. ok is false
// for unparseable URLs and other hosts.
func RepoFromRemote(remoteURL string) (owner, repo string, ok bool) {
	if remoteURL == "" {
		return "", "", false
	}
	info, err := vcsurl.Parse(remoteURL)
	if err != nil || info.Host != vcsurl.GitHub {
		return "", "", false
	}
	if info.Username == "" || info.Name == "" {
		return "", "", false
	}
	return info.Username, info.Name, true
}

// TitleFetcher fills group titles from GitHub pull requests.
type TitleFetcher struct {
	client *github.Client
	owner  string
	repo   string
	log    logging.Logger
}

func NewTitleFetcher(client *github.Client, owner, repo string, log logging.Logger) *TitleFetcher {
	return &TitleFetcher{client: client, owner: owner, repo: repo, log: log.WithName("forge")}
}

// Fill sets Title on every numbered group whose pull request can be read.
// Lookup failures leave the group untouched.
func (f *TitleFetcher) Fill(ctx context.Context, groups []history.Group) {
	for i := range groups {
		g := &groups[i]
		if g.Number == nil || g.Title != "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		pr, _, err := f.client.PullRequests.Get(ctx, f.owner, f.repo, *g.Number)
		if err != nil {
			f.log.Warn("pull request lookup failed", "repo", f.owner+"/"+f.repo, "number", *g.Number, "error", err.Error())
			continue
		}
		g.Title = pr.GetTitle()
		f.log.Debug("pull request title", "number", *g.Number, "title", g.Title)
	}
}
