package history

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/commitbot/internal/gitrepo"
	"github.com/roivaz/commitbot/internal/logging"
)

type fakeRepo struct {
	refs    map[string]string
	entries []gitrepo.LogEntry
	logErr  error
	ranges  [][2]string
}

func (f *fakeRepo) ResolveRef(_ context.Context, name string) (string, error) {
	sha, ok := f.refs[name]
	if !ok {
		return "", gitrepo.ErrRefNotFound
	}
	return sha, nil
}

func (f *fakeRepo) CommitsBetween(_ context.Context, base, feature string) ([]gitrepo.LogEntry, error) {
	f.ranges = append(f.ranges, [2]string{base, feature})
	return f.entries, f.logErr
}

func TestWalkSameCommitIsEmptyRange(t *testing.T) {
	repo := &fakeRepo{refs: map[string]string{"main": "abc", "feature": "abc"}}
	_, err := NewWalker(repo, logging.Discard()).Walk(context.Background(), "main", "feature")
	assert.ErrorIs(t, err, ErrEmptyRange)
	assert.Empty(t, repo.ranges)
}

func TestWalkNoCommitsIsEmptyRange(t *testing.T) {
	repo := &fakeRepo{refs: map[string]string{"main": "abc", "feature": "def"}}
	_, err := NewWalker(repo, logging.Discard()).Walk(context.Background(), "main", "feature")
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestWalkUnknownRefIsInvalidRange(t *testing.T) {
	repo := &fakeRepo{refs: map[string]string{"main": "abc"}}
	_, err := NewWalker(repo, logging.Discard()).Walk(context.Background(), "main", "nope")
	require.ErrorIs(t, err, ErrInvalidRange)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "nope", rangeErr.Ref)
	assert.ErrorIs(t, err, gitrepo.ErrRefNotFound)
}

func TestWalkStampsPositionsAndRefs(t *testing.T) {
	repo := &fakeRepo{
		refs: map[string]string{"main": "aaa", "feature": "bbb"},
		entries: []gitrepo.LogEntry{
			{Hash: "h1", Subject: "Add parser (#42)"},
			{Hash: "h2", Subject: "Fix typo", Body: "no refs here"},
		},
	}
	commits, err := NewWalker(repo, logging.Discard()).Walk(context.Background(), "main", "feature")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, [][2]string{{"aaa", "bbb"}}, repo.ranges)
	assert.Equal(t, 0, commits[0].Position)
	assert.Equal(t, 1, commits[1].Position)
	assert.Equal(t, []int{42}, commits[0].Refs)
	assert.Empty(t, commits[1].Refs)
}

func TestScanRefs(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  []int
	}{
		{"none", []string{"plain subject", "and body"}, nil},
		{"subject before body", []string{"Merge #12", "closes #7"}, []int{12, 7}},
		{"bare hash ignored", []string{"# heading #x then #5"}, []int{5}},
		{"dedup", []string{"#3 and #3", "#3"}, []int{3}},
		{"adjacent", []string{"#1#2"}, []int{1, 2}},
		{"saturates", []string{"#99999999999999"}, []int{math.MaxUint32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanRefs(tt.texts...))
		})
	}
}

func commit(hash, subject string, pos int) Commit {
	return Commit{Hash: hash, Subject: subject, Refs: ScanRefs(subject), Position: pos}
}

func TestGroupCommitsFirstAppearanceOrder(t *testing.T) {
	commits := []Commit{
		commit("h1", "feat: thing (#42)", 0),
		commit("h2", "chore: tidy", 1),
		commit("h3", "follow-up for #42", 2),
		commit("h4", "fix #7, see also #42", 3),
	}
	groups := GroupCommits(commits)
	require.Len(t, groups, 3)

	require.NotNil(t, groups[0].Number)
	assert.Equal(t, 42, *groups[0].Number)
	assert.Equal(t, []string{"h1", "h3"}, hashes(groups[0].Commits))

	require.NotNil(t, groups[1].Number)
	assert.Equal(t, 7, *groups[1].Number)
	assert.Equal(t, []string{"h4"}, hashes(groups[1].Commits))

	assert.Nil(t, groups[2].Number)
	assert.Equal(t, []string{"h2"}, hashes(groups[2].Commits))

	assert.Equal(t, 2, DistinctNumbers(commits))
}

func TestGroupCommitsWithoutUngrouped(t *testing.T) {
	groups := GroupCommits([]Commit{commit("h1", "#1", 0)})
	require.Len(t, groups, 1)
	assert.NotNil(t, groups[0].Number)
	assert.Empty(t, GroupCommits(nil))
}

func TestGroupLabel(t *testing.T) {
	n := 42
	assert.Equal(t, "PR #42", Group{Number: &n}.Label())
	assert.Equal(t, "PR #42: Add parser", Group{Number: &n, Title: " Add parser "}.Label())
	assert.Equal(t, "Commits without a PR number", Group{}.Label())
}

func TestModeResolve(t *testing.T) {
	one := []Commit{commit("h1", "#1", 0), commit("h2", "again #1", 1)}
	two := []Commit{commit("h1", "#1", 0), commit("h2", "#2", 1)}

	assert.Equal(t, ModeCommits, ModeAuto.Resolve(one))
	assert.Equal(t, ModeGrouped, ModeAuto.Resolve(two))
	assert.Equal(t, ModeCommits, ModeCommits.Resolve(two))
	assert.Equal(t, ModeGrouped, ModeGrouped.Resolve(one))

	m, err := ParseMode("pr")
	require.NoError(t, err)
	assert.Equal(t, ModeGrouped, m)
	_, err = ParseMode("weekly")
	assert.Error(t, err)
}

func TestCommitShort(t *testing.T) {
	assert.Equal(t, "0123456", Commit{Hash: "0123456789"}.Short())
	assert.Equal(t, "abc", Commit{Hash: "abc"}.Short())
}

func hashes(commits []Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Hash)
	}
	return out
}
