// Package history walks a commit range and groups it by referenced pull
// request or issue numbers.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/roivaz/commitbot/internal/gitrepo"
	"github.com/roivaz/commitbot/internal/logging"
)

var (
	// ErrEmptyRange means the range holds no commits. It is a normal terminal
	// condition.
	ErrEmptyRange = errors.New("no commits in range")
	// ErrInvalidRange means one of the range ends could not be resolved.
	ErrInvalidRange = errors.New("invalid commit range")
)

// RangeError names the reference that failed to resolve.
type RangeError struct {
	Ref string
	Err error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: cannot resolve %q: %v", ErrInvalidRange, e.Ref, e.Err)
}

func (e *RangeError) Is(target error) bool { return target == ErrInvalidRange }

func (e *RangeError) Unwrap() error { return e.Err }

// Commit is one entry of a range walk.
type Commit struct {
	Hash    string
	Subject string
	Body    string
	// Refs are the #numbers referenced by subject then body, deduplicated.
	Refs []int
	// Position is the index in walk order, oldest first.
	Position int
}

// Short returns the abbreviated hash.
func (c Commit) Short() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Source is the part of the repository the walker reads.
type Source interface {
	ResolveRef(ctx context.Context, name string) (string, error)
	CommitsBetween(ctx context.Context, base, feature string) ([]gitrepo.LogEntry, error)
}

type Walker struct {
	src Source
	log logging.Logger
}

func NewWalker(src Source, log logging.Logger) *Walker {
	return &Walker{src: src, log: log.WithName("history")}
}

// Walk returns the commits reachable from feature but not from base, oldest
// first.
func (w *Walker) Walk(ctx context.Context, base, feature string) ([]Commit, error) {
	baseSHA, err := w.resolve(ctx, base)
	if err != nil {
		return nil, err
	}
	featureSHA, err := w.resolve(ctx, feature)
	if err != nil {
		return nil, err
	}
	if baseSHA == featureSHA {
		w.log.Debug("range ends resolve to the same commit", "base", base, "feature", feature, "sha", baseSHA)
		return nil, fmt.Errorf("%s..%s: %w", base, feature, ErrEmptyRange)
	}

	entries, err := w.src.CommitsBetween(ctx, baseSHA, featureSHA)
	if err != nil {
		return nil, fmt.Errorf("list commits %s..%s: %w", base, feature, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s..%s: %w", base, feature, ErrEmptyRange)
	}

	commits := make([]Commit, 0, len(entries))
	for i, e := range entries {
		commits = append(commits, Commit{
			Hash:     e.Hash,
			Subject:  e.Subject,
			Body:     e.Body,
			Refs:     ScanRefs(e.Subject, e.Body),
			Position: i,
		})
	}
	w.log.Debug("walked range", "base", base, "feature", feature, "commits", len(commits))
	return commits, nil
}

func (w *Walker) resolve(ctx context.Context, ref string) (string, error) {
	sha, err := w.src.ResolveRef(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", &RangeError{Ref: ref, Err: err}
	}
	return sha, nil
}
