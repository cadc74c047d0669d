package classify

import (
	"fmt"
	"strings"
)

// Kind is the intent category assigned to a staged file.
type Kind int

const (
	Pending Kind = iota
	Main
	Supporting
	Consequential
	Ignored
)

// PromptOrder is the order kinds are serialized in. Ignored is never serialized.
var PromptOrder = []Kind{Main, Supporting, Consequential}

func (k Kind) String() string {
	switch k {
	case Main:
		return "main"
	case Supporting:
		return "supporting"
	case Consequential:
		return "consequential"
	case Ignored:
		return "ignored"
	default:
		return "pending"
	}
}

// Describe is the operator-facing label of a choice.
func (k Kind) Describe() string {
	switch k {
	case Main:
		return "Main purpose"
	case Supporting:
		return "Supporting change"
	case Consequential:
		return "Consequence / ripple"
	case Ignored:
		return "Ignore / unrelated cleanup"
	default:
		return "Unclassified"
	}
}

// ParseKind maps an operator answer onto a Kind. Accepts the menu number, the
// first letter or the full name.
func ParseKind(input string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "m", "main":
		return Main, nil
	case "2", "s", "supporting":
		return Supporting, nil
	case "3", "c", "consequential", "consequence":
		return Consequential, nil
	case "4", "i", "ignored", "ignore":
		return Ignored, nil
	default:
		return Pending, fmt.Errorf("invalid choice %q", input)
	}
}

// File is one staged path moving through the pipeline.
type File struct {
	Path string
	Diff string
	Kind Kind
	// Summary is an optional per-file intent summary produced in interactive mode.
	Summary string
}
