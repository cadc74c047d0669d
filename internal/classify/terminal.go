package classify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// previewLines caps how much of a diff is echoed while asking about a file.
const previewLines = 20

type line struct {
	text string
	err  error
}

// TerminalPrompter asks questions on out and reads answers from in. Each
// read runs on its own goroutine so a cancelled context unblocks Ask; a read
// left pending by a cancel is picked up by the next call.
type TerminalPrompter struct {
	out     io.Writer
	scanner *bufio.Scanner
	pending chan line
	err     error
	title   *color.Color
	dim     *color.Color
	warn    *color.Color
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		out:     out,
		scanner: bufio.NewScanner(in),
		title:   color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.Faint),
		warn:    color.New(color.FgYellow),
	}
}

func (t *TerminalPrompter) read(ch chan<- line) {
	if t.scanner.Scan() {
		ch <- line{text: t.scanner.Text()}
		return
	}
	err := t.scanner.Err()
	if err == nil {
		err = io.EOF
	}
	ch <- line{err: err}
}

// Line prints question and waits for one line of input. Once input ends every
// call returns the same error without reading again.
func (t *TerminalPrompter) Line(ctx context.Context, question string) (string, error) {
	fmt.Fprint(t.out, question)
	if t.err != nil {
		return "", t.err
	}
	if t.pending == nil {
		t.pending = make(chan line, 1)
		go t.read(t.pending)
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case l := <-t.pending:
		t.pending = nil
		if l.err != nil {
			t.err = l.err
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (t *TerminalPrompter) Ask(ctx context.Context, file File, index, total int) (string, error) {
	fmt.Fprintln(t.out)
	t.title.Fprintf(t.out, "[%d / %d] %s\n", index+1, total, file.Path)
	t.dim.Fprintln(t.out, preview(file.Diff))
	fmt.Fprintln(t.out, "How does this file relate to the change?")
	for i, k := range []Kind{Main, Supporting, Consequential, Ignored} {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, k.Describe())
	}
	return t.Line(ctx, "Enter choice [1-4, q to abort]: ")
}

func (t *TerminalPrompter) Invalid(input string) {
	t.warn.Fprintf(t.out, "Invalid choice %q. Please enter 1, 2, 3 or 4.\n", input)
}

func preview(diff string) string {
	lines := strings.Split(diff, "\n")
	if len(lines) <= previewLines {
		return diff
	}
	return strings.Join(lines[:previewLines], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-previewLines)
}
