package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// LogEntry is one commit of a range walk.
type LogEntry struct {
	Hash    string
	Subject string
	Body    string
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// CommitsBetween returns the commits reachable from feature but not from base,
// oldest first.
func (r *Repo) CommitsBetween(ctx context.Context, base, feature string) ([]LogEntry, error) {
	rangeSpec := fmt.Sprintf("%s..%s", base, feature)
	out, err := r.Run(ctx, "log", "--reverse", "--no-color", "--format=%H%x1f%s%x1f%b%x1e", rangeSpec, "--")
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

func parseLog(out string) []LogEntry {
	var entries []LogEntry
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		parts := strings.SplitN(record, fieldSep, 3)
		entry := LogEntry{Hash: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			entry.Subject = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			entry.Body = strings.TrimSpace(parts[2])
		}
		if entry.Hash == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
