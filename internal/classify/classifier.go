package classify

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrUserAborted means the operator cancelled classification. No message is
// produced for an aborted run.
var ErrUserAborted = errors.New("aborted by user")

// StepResult reports what a single Step did.
type StepResult int

const (
	StepClassified StepResult = iota
	StepInvalid
	StepDone
)

// Classifier is the per-run classification state machine. Each Step consumes
// one operator answer for the current pending file.
type Classifier struct {
	files   []File
	next    int
	aborted bool
}

func New(files []File) *Classifier {
	cp := make([]File, len(files))
	copy(cp, files)
	for i := range cp {
		cp[i].Kind = Pending
	}
	return &Classifier{files: cp}
}

// Current returns the file awaiting an answer and its index.
func (c *Classifier) Current() (File, int, bool) {
	if c.aborted || c.next >= len(c.files) {
		return File{}, c.next, false
	}
	return c.files[c.next], c.next, true
}

func (c *Classifier) Total() int { return len(c.files) }

func (c *Classifier) Done() bool { return !c.aborted && c.next >= len(c.files) }

func (c *Classifier) Aborted() bool { return c.aborted }

// Step applies one answer. Invalid answers leave the state untouched.
func (c *Classifier) Step(input string) (StepResult, error) {
	if c.aborted {
		return StepDone, ErrUserAborted
	}
	if c.next >= len(c.files) {
		return StepDone, nil
	}
	if isCancel(input) {
		c.Abort()
		return StepDone, ErrUserAborted
	}
	kind, err := ParseKind(input)
	if err != nil {
		return StepInvalid, nil
	}
	c.files[c.next].Kind = kind
	c.next++
	if c.next >= len(c.files) {
		return StepDone, nil
	}
	return StepClassified, nil
}

// Abort ends the run; every later Step reports ErrUserAborted.
func (c *Classifier) Abort() { c.aborted = true }

// Files returns the classified set once every file has a kind.
func (c *Classifier) Files() ([]File, error) {
	if c.aborted {
		return nil, ErrUserAborted
	}
	if c.next < len(c.files) {
		return nil, errors.New("classification incomplete")
	}
	out := make([]File, len(c.files))
	copy(out, c.files)
	return out, nil
}

func isCancel(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "q", "quit", "abort", "exit":
		return true
	}
	return false
}

// Automatic marks every file Main without asking anyone.
func Automatic(files []File) []File {
	out := make([]File, len(files))
	for i, f := range files {
		f.Kind = Main
		out[i] = f
	}
	return out
}

// Prompter asks the operator about one file and returns the raw answer.
type Prompter interface {
	Ask(ctx context.Context, file File, index, total int) (string, error)
	// Invalid tells the operator the last answer was not understood.
	Invalid(input string)
}

// Interactive drives a Classifier with answers from p until every file is
// classified. A cancelled context or io.EOF aborts the run.
func Interactive(ctx context.Context, files []File, p Prompter) ([]File, error) {
	c := New(files)
	for {
		file, idx, ok := c.Current()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			c.Abort()
			return nil, ErrUserAborted
		}
		answer, err := p.Ask(ctx, file, idx, c.Total())
		if err != nil {
			c.Abort()
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil, ErrUserAborted
			}
			return nil, err
		}
		res, err := c.Step(answer)
		if err != nil {
			return nil, err
		}
		if res == StepInvalid {
			p.Invalid(answer)
		}
	}
	return c.Files()
}
