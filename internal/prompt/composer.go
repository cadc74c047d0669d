// Package prompt turns classified files and grouped commit ranges into the
// system and user text sent to the model.
package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/roivaz/commitbot/internal/classify"
	"github.com/roivaz/commitbot/internal/history"
	"github.com/roivaz/commitbot/internal/logging"
	"github.com/roivaz/commitbot/internal/response"
)

// TruncatedMarker ends a diff that was cut to fit the character budget.
const TruncatedMarker = "[diff truncated]"

// Prompt is one model request. Schema is the zero value for plain-text
// prompts such as per-file summaries.
type Prompt struct {
	System string
	User   string
	Schema response.Schema
}

// CommitContext is the run-level information shared by commit prompts.
type CommitContext struct {
	Branch        string
	TicketSummary string
}

// PRContext is the run-level information of a range summary.
type PRContext struct {
	Base          string
	Feature       string
	Mode          history.Mode
	TicketSummary string
}

// Composer builds prompts. Output depends only on its inputs.
type Composer struct {
	commit   response.Schema
	pr       response.Schema
	budget   int
	splitter textsplitter.RecursiveCharacter
	log      logging.Logger
}

// NewComposer returns a composer replying against the given schemas. Each
// file diff is bounded to diffCharBudget runes; zero disables bounding.
func NewComposer(commit, pr response.Schema, diffCharBudget int, log logging.Logger) *Composer {
	c := &Composer{
		commit: commit,
		pr:     pr,
		budget: diffCharBudget,
		log:    log.WithName("prompt"),
	}
	if diffCharBudget > 0 {
		c.splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators([]string{"\n@@ ", "\n", ""}),
			textsplitter.WithChunkSize(diffCharBudget),
			textsplitter.WithChunkOverlap(0),
			textsplitter.WithKeepSeparator(true),
		)
	}
	return c
}

// Commit builds the commit message prompt. Ignored files are left out; the
// rest are listed main purpose first, then supporting, then consequential,
// keeping staged order within each kind.
func (c *Composer) Commit(files []classify.File, opts CommitContext) Prompt {
	var b strings.Builder
	writeHeader(&b, "Branch", opts.Branch)
	writeTicket(&b, opts.TicketSummary)
	b.WriteString("\nStaged files (main purpose first):\n")

	included, truncated := 0, 0
	for _, kind := range classify.PromptOrder {
		for _, f := range files {
			if f.Kind != kind {
				continue
			}
			if c.writeFile(&b, f) {
				truncated++
			}
			included++
		}
	}
	for _, f := range files {
		if f.Kind == classify.Ignored {
			c.log.Info("file ignored", "path", f.Path)
		}
	}
	c.log.Debug("composed commit prompt", "files", len(files), "included", included, "truncated", truncated)

	return Prompt{
		System: renderSystem(commitSystemTemplate, c.commit),
		User:   b.String(),
		Schema: c.commit,
	}
}

// FileSummary builds the plain-text prompt asking for the intent of one file.
func (c *Composer) FileSummary(f classify.File, opts CommitContext) Prompt {
	var b strings.Builder
	writeHeader(&b, "Branch", opts.Branch)
	writeTicket(&b, opts.TicketSummary)
	b.WriteString("\n")
	f.Summary = ""
	c.writeFile(&b, f)
	return Prompt{System: fileSummarySystemTemplate, User: b.String()}
}

// PR builds the range summary prompt. In grouped mode each group is a labeled
// cluster; in commit mode every commit is listed with its body.
func (c *Composer) PR(groups []history.Group, opts PRContext) Prompt {
	commits := flatten(groups)
	mode := opts.Mode.Resolve(commits)

	var b strings.Builder
	writeHeader(&b, "Base branch", opts.Base)
	writeHeader(&b, "Feature branch", opts.Feature)
	writeHeader(&b, "Summary mode", string(mode))
	writeTicket(&b, opts.TicketSummary)

	switch mode {
	case history.ModeGrouped:
		b.WriteString("\nPull requests contributing to this branch (oldest commits first):\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "\n### %s\n", g.Label())
			for _, cm := range g.Commits {
				fmt.Fprintf(&b, "- %s: %s\n", cm.Short(), oneLine(cm.Subject))
			}
		}
	default:
		b.WriteString("\nCommit history (oldest first):\n")
		for _, cm := range commits {
			tag := ""
			if len(cm.Refs) > 0 {
				tag = " (PR #" + strconv.Itoa(cm.Refs[0]) + ")"
			}
			fmt.Fprintf(&b, "- %s%s: %s\n", cm.Short(), tag, oneLine(cm.Subject))
			if body := strings.TrimSpace(cm.Body); body != "" {
				b.WriteString(indent(body))
			}
		}
	}
	c.log.Debug("composed pr prompt", "groups", len(groups), "commits", len(commits), "mode", string(mode))

	return Prompt{
		System: renderSystem(prSystemTemplate, c.pr),
		User:   b.String(),
		Schema: c.pr,
	}
}

// writeFile renders one file section and reports whether its diff was cut.
func (c *Composer) writeFile(b *strings.Builder, f classify.File) bool {
	diff, cut := c.bound(f.Path, f.Diff)
	fmt.Fprintf(b, "\n### %s (%s)\n", f.Path, f.Kind)
	if s := strings.TrimSpace(f.Summary); s != "" {
		b.WriteString("Summary:\n")
		b.WriteString(indent(s))
	}
	fence := fenceFor(diff)
	fmt.Fprintf(b, "%sdiff\n%s\n%s\n", fence, strings.TrimRight(diff, "\n"), fence)
	return cut
}

// bound keeps a prefix of the diff within the character budget. It cuts after
// the last splitter chunk that fits, unless that keeps less than half the
// budget (a single oversized hunk), in which case it cuts on the last line
// break within the budget.
func (c *Composer) bound(path, diff string) (string, bool) {
	if c.budget <= 0 || utf8.RuneCountInString(diff) <= c.budget {
		return diff, false
	}
	hard := prefixRunes(diff, c.budget)

	end := 0
	parts, err := c.splitter.SplitText(diff)
	if err != nil {
		c.log.Error(err, "split diff failed; cutting on lines", "path", path)
	}
	for _, part := range parts {
		// chunks come back trimmed, so locate each one in the original text
		idx := strings.Index(diff[end:], part)
		if part == "" || idx < 0 {
			break
		}
		stop := end + idx + len(part)
		if stop > len(hard) {
			break
		}
		end = stop
	}
	if utf8.RuneCountInString(diff[:end]) < c.budget/2 {
		if nl := strings.LastIndexByte(hard, '\n'); nl > end {
			end = nl
		} else if end == 0 {
			end = len(hard)
		}
	}

	head := diff[:end]
	c.log.Debug("diff truncated", "path", path, "runes", utf8.RuneCountInString(diff), "kept", utf8.RuneCountInString(head))
	return strings.TrimRight(head, "\n") + "\n" + TruncatedMarker, true
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func renderSystem(tmpl string, schema response.Schema) string {
	out := strings.ReplaceAll(tmpl, "{{.SubjectMax}}", strconv.Itoa(schema.SubjectMax))
	out = strings.ReplaceAll(out, "{{.Labels}}", strings.Join(schema.Labels, ", "))
	return strings.ReplaceAll(out, "{{.Schema}}", string(schema.Document()))
}

func writeHeader(b *strings.Builder, key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, oneLine(value))
}

func writeTicket(b *strings.Builder, summary string) {
	writeHeader(b, "Overall ticket goal", summary)
}

func flatten(groups []history.Group) []history.Commit {
	var commits []history.Commit
	for _, g := range groups {
		commits = append(commits, g.Commits...)
	}
	sort.SliceStable(commits, func(i, j int) bool { return commits[i].Position < commits[j].Position })
	return commits
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return "  " + strings.Join(lines, "\n  ") + "\n"
}

// fenceFor returns a backtick fence longer than any backtick run in body.
func fenceFor(body string) string {
	longest, run := 0, 0
	for _, r := range body {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
