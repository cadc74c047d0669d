package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/commitbot/internal/classify"
	"github.com/roivaz/commitbot/internal/gitrepo"
	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/llm"
	"github.com/roivaz/commitbot/internal/logging"
)

type fakeRepo struct {
	staged []gitrepo.FileDiff
	refs   map[string]string
	log    []gitrepo.LogEntry
	branch string
	reads  int
}

func (f *fakeRepo) StagedFiles(context.Context) ([]gitrepo.FileDiff, error) {
	f.reads++
	return f.staged, nil
}

func (f *fakeRepo) ResolveRef(_ context.Context, name string) (string, error) {
	sha, ok := f.refs[name]
	if !ok {
		return "", gitrepo.ErrRefNotFound
	}
	return sha, nil
}

func (f *fakeRepo) CommitsBetween(context.Context, string, string) ([]gitrepo.LogEntry, error) {
	return f.log, nil
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error) { return f.branch, nil }

// recorder is a model that replies with a fixed text and remembers requests.
type recorder struct {
	replies  []string
	requests []llm.Request
}

func (r *recorder) Request(_ context.Context, req llm.Request) (string, error) {
	r.requests = append(r.requests, req)
	if len(r.replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	out := r.replies[0]
	if len(r.replies) > 1 {
		r.replies = r.replies[1:]
	}
	return out, nil
}

type operator struct {
	ticket  string
	answers []string
	err     error
}

func (o *operator) Line(context.Context, string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.ticket, nil
}

func (o *operator) Ask(context.Context, classify.File, int, int) (string, error) {
	if len(o.answers) == 0 {
		return "", io.EOF
	}
	a := o.answers[0]
	o.answers = o.answers[1:]
	return a, nil
}

func (o *operator) Invalid(string) {}

func testConfig() Config {
	return Config{SubjectMax: 72, DiffCharBudget: 4000, PerFileSummaries: true, LLM: llm.Config{CallTimeout: time.Second}}
}

func newPipeline(t *testing.T, repo Repository, client llm.Client, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(testConfig(), repo, client, logging.Discard(), opts...)
	require.NoError(t, err)
	return p
}

const goodReply = `{"subject":"Add parser","sections":[{"label":"Introduced","text":"- parser"}]}`

func stagedRepo() *fakeRepo {
	return &fakeRepo{
		branch: "feature/parser",
		staged: []gitrepo.FileDiff{
			{Path: "a.go", Diff: "diff --git a/a.go b/a.go\n+a"},
			{Path: "b.go", Diff: "diff --git a/b.go b/b.go\n+b"},
		},
	}
}

func TestRunCommitEmptyStagedSetMakesNoModelCalls(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	_, err := newPipeline(t, &fakeRepo{}, model).RunCommit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoStagedChanges)
	assert.True(t, IsCleanExit(err))
	assert.Empty(t, model.requests)
}

func TestRunCommitAutomatic(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	msg, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Add parser", msg.Subject)
	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.Contains(t, req.User, "### a.go (main)")
	assert.Contains(t, req.User, "### b.go (main)")
	assert.NotEmpty(t, req.Schema)
	assert.Equal(t, time.Second, req.Timeout)
}

func TestRunCommitMalformedKeepsRaw(t *testing.T) {
	raw := `{"sections":[{"label":"Changed","text":"x"}]}`
	model := &recorder{replies: []string{raw}}
	msg, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.False(t, IsCleanExit(err))
	assert.Equal(t, raw, msg.Raw)
}

func TestRunCommitInteractiveSummarizesIncludedFiles(t *testing.T) {
	model := &recorder{replies: []string{"- adds a", goodReply}}
	op := &operator{ticket: "Parser work", answers: []string{"1", "4"}}
	_, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), op)
	require.NoError(t, err)

	require.Len(t, model.requests, 2)
	assert.Empty(t, model.requests[0].Schema)
	assert.Contains(t, model.requests[0].User, "### a.go (main)")

	final := model.requests[1]
	assert.Contains(t, final.User, "Overall ticket goal: Parser work")
	assert.Contains(t, final.User, "Summary:\n  - adds a\n")
	assert.NotContains(t, final.User, "b.go")
}

func TestRunCommitInteractiveAbort(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	op := &operator{answers: []string{"1", "q"}}
	_, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), op)
	assert.ErrorIs(t, err, ErrUserAborted)
	assert.True(t, IsCleanExit(err))
	assert.Empty(t, model.requests)

	_, err = newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), &operator{err: io.EOF})
	assert.ErrorIs(t, err, ErrUserAborted)
}

func TestRunCommitEverythingIgnored(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	op := &operator{ticket: "x", answers: []string{"4", "i"}}
	_, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), op)
	assert.ErrorIs(t, err, ErrNoStagedChanges)
	assert.Empty(t, model.requests)
}

func TestRunCommitTransportFailure(t *testing.T) {
	model := llm.Func(func(context.Context, llm.Request) (string, error) {
		return "", ErrTransport
	})
	_, err := newPipeline(t, stagedRepo(), model).RunCommit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, IsCleanExit(err))
}

func TestRunCommitNoModel(t *testing.T) {
	msg, err := newPipeline(t, stagedRepo(), llm.NoModel{}).RunCommit(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, msg.Sections, 1)
	assert.Contains(t, msg.Sections[0].Text, "a.go (main)")
	assert.Contains(t, msg.Sections[0].Text, "b.go (main)")
}

func rangeRepo() *fakeRepo {
	return &fakeRepo{
		branch: "feature",
		refs:   map[string]string{"main": "aaa", "feature": "bbb", "same": "aaa"},
		log: []gitrepo.LogEntry{
			{Hash: "1111111aaaa", Subject: "Add parser (#42)"},
			{Hash: "2222222bbbb", Subject: "Fix typo"},
			{Hash: "3333333cccc", Subject: "Follow-up", Body: "Refs #42"},
			{Hash: "4444444dddd", Subject: "Cache (#7)"},
		},
	}
}

type titles struct{ calls int }

func (t *titles) Fill(_ context.Context, groups []history.Group) {
	t.calls++
	for i := range groups {
		if groups[i].Number != nil && *groups[i].Number == 42 {
			groups[i].Title = "Parser rewrite"
		}
	}
}

func TestRunPREmptyRange(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	_, err := newPipeline(t, rangeRepo(), model).RunPR(context.Background(), "main", "same", history.ModeAuto)
	assert.ErrorIs(t, err, ErrEmptyRange)
	assert.True(t, IsCleanExit(err))
	assert.Empty(t, model.requests)
}

func TestRunPRInvalidRange(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	_, err := newPipeline(t, rangeRepo(), model).RunPR(context.Background(), "main", "missing", history.ModeAuto)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.False(t, IsCleanExit(err))
}

func TestRunPRGroupedWithTitles(t *testing.T) {
	model := &recorder{replies: []string{`{"subject":"Parser and cache","sections":[{"label":"overview","text":"Two PRs."}]}`}}
	lookup := &titles{}
	msg, err := newPipeline(t, rangeRepo(), model, WithTitles(lookup)).RunPR(context.Background(), "main", "", history.ModeAuto)
	require.NoError(t, err)

	assert.Equal(t, "Parser and cache", msg.Subject)
	require.Len(t, msg.Sections, 1)
	assert.Equal(t, "Overview", msg.Sections[0].Label)
	assert.Equal(t, 1, lookup.calls)

	user := model.requests[0].User
	assert.Contains(t, user, "Feature branch: feature\n")
	assert.Contains(t, user, "### PR #42: Parser rewrite\n")
	assert.Less(t, strings.Index(user, "### PR #7"), strings.Index(user, "### Commits without a PR number"))
}

func TestRunPRCommitModeSkipsTitles(t *testing.T) {
	model := &recorder{replies: []string{goodReply}}
	lookup := &titles{}
	_, err := newPipeline(t, rangeRepo(), model, WithTitles(lookup)).RunPR(context.Background(), "main", "feature", history.ModeCommits)
	require.NoError(t, err)
	assert.Zero(t, lookup.calls)
	assert.Contains(t, model.requests[0].User, "Summary mode: commits\n")
}
