package history

import (
	"math"
	"strconv"
	"strings"
)

// ScanRefs returns the numbers of every "#<digits>" token in the texts, in
// scan order and without duplicates. Values past MaxUint32 saturate.
func ScanRefs(texts ...string) []int {
	var refs []int
	seen := map[int]struct{}{}
	for _, text := range texts {
		for i := 0; i < len(text); i++ {
			if text[i] != '#' {
				continue
			}
			j := i + 1
			var value uint64
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				value = value*10 + uint64(text[j]-'0')
				if value > math.MaxUint32 {
					value = math.MaxUint32
				}
				j++
			}
			if j == i+1 {
				continue
			}
			n := int(value)
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				refs = append(refs, n)
			}
			i = j - 1
		}
	}
	return refs
}

// Group is a cluster of commits sharing the first referenced number. A nil
// Number marks the bucket of commits that reference none.
type Group struct {
	Number  *int
	Commits []Commit
	// Title is the pull request title when a forge lookup provided one.
	Title string
}

// Label is the heading a group is presented under.
func (g Group) Label() string {
	if g.Number == nil {
		return "Commits without a PR number"
	}
	label := "PR #" + strconv.Itoa(*g.Number)
	if t := strings.TrimSpace(g.Title); t != "" {
		label += ": " + t
	}
	return label
}

// GroupCommits clusters commits by their first reference. Groups appear in the
// order their number was first seen; the ungrouped bucket comes last and only
// when non-empty. Commits keep walk order inside a group.
func GroupCommits(commits []Commit) []Group {
	var (
		groups    []Group
		index     = map[int]int{}
		ungrouped []Commit
	)
	for _, c := range commits {
		if len(c.Refs) == 0 {
			ungrouped = append(ungrouped, c)
			continue
		}
		n := c.Refs[0]
		i, ok := index[n]
		if !ok {
			num := n
			groups = append(groups, Group{Number: &num})
			i = len(groups) - 1
			index[n] = i
		}
		groups[i].Commits = append(groups[i].Commits, c)
	}
	if len(ungrouped) > 0 {
		groups = append(groups, Group{Commits: ungrouped})
	}
	return groups
}

// DistinctNumbers counts the different numbers commits are grouped under.
func DistinctNumbers(commits []Commit) int {
	seen := map[int]struct{}{}
	for _, c := range commits {
		if len(c.Refs) > 0 {
			seen[c.Refs[0]] = struct{}{}
		}
	}
	return len(seen)
}
