package history

import "fmt"

// Mode selects how a range is presented to the model.
type Mode string

const (
	// ModeAuto picks ModeGrouped when two or more numbers are referenced.
	ModeAuto Mode = ""
	// ModeGrouped clusters commits by pull request.
	ModeGrouped Mode = "prs"
	// ModeCommits lists every commit on its own.
	ModeCommits Mode = "commits"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, "auto":
		return ModeAuto, nil
	case ModeGrouped, "pr":
		return ModeGrouped, nil
	case ModeCommits, "commit":
		return ModeCommits, nil
	default:
		return ModeAuto, fmt.Errorf("unknown summary mode %q (want prs or commits)", s)
	}
}

// Resolve turns ModeAuto into a concrete mode for commits.
func (m Mode) Resolve(commits []Commit) Mode {
	if m != ModeAuto {
		return m
	}
	if DistinctNumbers(commits) >= 2 {
		return ModeGrouped
	}
	return ModeCommits
}
