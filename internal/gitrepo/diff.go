package gitrepo

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// FileDiff is one touched path of the staged set with its unified diff.
type FileDiff struct {
	Path string
	Diff string
}

var diffHeaderRegexp = regexp.MustCompile(`(?m)^diff --git (?P<old>"?a/.*?"?) (?P<new>"?b/.*?"?)$`)

// StagedFiles lists every staged path in git's order and attaches its slice of
// the staged diff. A path git printed no block for gets an empty Diff.
func (r *Repo) StagedFiles(ctx context.Context) ([]FileDiff, error) {
	names, err := r.Run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(names, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			paths = append(paths, unquotePath(p))
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	full, err := r.Run(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
	if err != nil {
		return nil, err
	}
	chunks := make(map[string]string, len(paths))
	for _, chunk := range splitDiffIntoFiles(full) {
		if _, seen := chunks[chunk[0]]; !seen {
			chunks[chunk[0]] = chunk[1]
		}
	}

	files := make([]FileDiff, 0, len(paths))
	for _, p := range paths {
		files = append(files, FileDiff{Path: p, Diff: chunks[p]})
	}
	return files, nil
}

// splitDiffIntoFiles cuts a multi-file unified diff on its `diff --git` headers
// and returns (path, chunk) pairs. The new-side path wins except for deletions.
func splitDiffIntoFiles(diffText string) [][2]string {
	if strings.TrimSpace(diffText) == "" {
		return nil
	}

	matches := diffHeaderRegexp.FindAllStringIndex(diffText, -1)
	if len(matches) == 0 {
		return nil
	}

	results := make([][2]string, 0, len(matches))
	for i, loc := range matches {
		start := loc[0]
		end := len(diffText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		chunk := strings.TrimRight(diffText[start:end], "\n")
		header := diffHeaderRegexp.FindStringSubmatch(chunk)
		if header == nil {
			continue
		}
		oldPath := stripSide(header[diffHeaderRegexp.SubexpIndex("old")], "a/")
		newPath := stripSide(header[diffHeaderRegexp.SubexpIndex("new")], "b/")
		file := newPath
		if file == "/dev/null" || file == "" {
			file = oldPath
		}
		results = append(results, [2]string{file, chunk})
	}
	return results
}

func stripSide(p, prefix string) string {
	p = unquotePath(p)
	return strings.TrimPrefix(p, prefix)
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
		return p[1 : len(p)-1]
	}
	return p
}
