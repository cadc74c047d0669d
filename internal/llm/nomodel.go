package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NoModel answers without calling any provider. JSON requests get a reply that
// satisfies the message schema and lists the items the prompt carried; plain
// requests get a one-line placeholder.
type NoModel struct{}

func (NoModel) Request(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("model request canceled: %w", err)
	}
	items := promptItems(req.User)
	if len(req.Schema) == 0 {
		return "[model disabled] " + strings.Join(items, ", "), nil
	}

	text := "(model disabled)"
	if len(items) > 0 {
		text = "- " + strings.Join(items, "\n- ")
	}
	reply := struct {
		Subject  string              `json:"subject"`
		Sections []map[string]string `json:"sections"`
	}{
		Subject:  "Dummy message for testing",
		Sections: []map[string]string{{"label": "Overview", "text": text}},
	}
	b, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// promptItems picks the "### " headings and "- " entries the composer writes
// for files and commits, skipping fenced diff blocks.
func promptItems(user string) []string {
	var (
		items []string
		fence string
	)
	for _, line := range strings.Split(user, "\n") {
		if fence != "" {
			if line == fence {
				fence = ""
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "```"):
			fence = strings.TrimRight(line, "abcdefghijklmnopqrstuvwxyz")
		case strings.HasPrefix(line, "### "):
			items = append(items, strings.TrimPrefix(line, "### "))
		case strings.HasPrefix(line, "- "):
			items = append(items, strings.TrimPrefix(line, "- "))
		}
	}
	return items
}
