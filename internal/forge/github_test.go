package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/logging"
)

func TestRepoFromRemote(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{"https://github.com/roivaz/commitbot.git", "roivaz", "commitbot", true},
		{"git@github.com:roivaz/commitbot.git", "roivaz", "commitbot", true},
		{"https://gitlab.com/group/project.git", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, ok := RepoFromRemote(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestFillSetsTitlesAndSkipsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/pulls/42", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number":42,"title":"Parser rewrite"}`)
	})
	mux.HandleFunc("/repos/o/r/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	n42, n7 := 42, 7
	groups := []history.Group{
		{Number: &n42},
		{Number: &n7},
		{},
	}
	NewTitleFetcher(client, "o", "r", logging.Discard()).Fill(context.Background(), groups)

	assert.Equal(t, "Parser rewrite", groups[0].Title)
	assert.Empty(t, groups[1].Title)
	assert.Empty(t, groups[2].Title)
}
