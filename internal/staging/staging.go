// Package staging collects the staged change set of a repository.
package staging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roivaz/commitbot/internal/classify"
	"github.com/roivaz/commitbot/internal/gitrepo"
	"github.com/roivaz/commitbot/internal/logging"
)

// ErrNoStagedChanges means there is nothing to describe. It is a normal
// terminal condition, not a failure.
var ErrNoStagedChanges = errors.New("no staged changes found")

// NoTextualDiff stands in for the diff of a staged path git printed no block
// for, so a file is never present with an empty diff.
const NoTextualDiff = "(no textual diff)"

// Source is the part of the repository the collector reads.
type Source interface {
	StagedFiles(ctx context.Context) ([]gitrepo.FileDiff, error)
}

type Collector struct {
	src Source
	log logging.Logger
}

func NewCollector(src Source, log logging.Logger) *Collector {
	return &Collector{src: src, log: log.WithName("staging")}
}

// Collect returns one pending file per staged path, in repository order.
func (c *Collector) Collect(ctx context.Context) ([]classify.File, error) {
	diffs, err := c.src.StagedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("read staged changes: %w", err)
	}
	if len(diffs) == 0 {
		return nil, ErrNoStagedChanges
	}

	seen := make(map[string]struct{}, len(diffs))
	files := make([]classify.File, 0, len(diffs))
	for _, d := range diffs {
		if _, dup := seen[d.Path]; dup {
			c.log.Debug("duplicate staged path dropped", "path", d.Path)
			continue
		}
		seen[d.Path] = struct{}{}
		diff := d.Diff
		if strings.TrimSpace(diff) == "" {
			diff = NoTextualDiff
		}
		files = append(files, classify.File{Path: d.Path, Diff: diff})
	}
	c.log.Debug("collected staged files", "count", len(files))
	return files, nil
}
