package types

type SectionResult struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// MessageResult is the payload of the commit_message and pr_summary tools.
// Status is "ok" with a message, or "empty" with Reason when there was nothing
// to describe.
type MessageResult struct {
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	Sections []SectionResult `json:"sections,omitempty"`
	Text     string          `json:"text,omitempty"`
}
