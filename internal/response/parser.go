// Package response validates model replies and turns them into messages.
package response

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/roivaz/commitbot/internal/logging"
)

// ErrMalformedResponse marks a reply that does not satisfy its schema.
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedError names the rule a reply broke and keeps the raw text for
// fallback display.
type MalformedError struct {
	Schema string
	Rule   string
	Raw    string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrMalformedResponse, e.Schema, e.Rule)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedResponse }

// Section is one labelled block of a message body.
type Section struct {
	Label string
	Text  string
}

// Message is a parsed commit message or PR summary.
type Message struct {
	Subject  string
	Sections []Section
	Raw      string
}

// String renders the message as commit text: subject, blank line, then one
// markdown heading per section.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Subject)
	for i, s := range m.Sections {
		if i == 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\n## %s\n%s\n", s.Label, strings.TrimRight(s.Text, "\n"))
	}
	return b.String()
}

type Parser struct {
	log logging.Logger
}

func NewParser(log logging.Logger) *Parser {
	return &Parser{log: log.WithName("response")}
}

// Parse validates raw against schema. On failure the returned Message still
// carries Raw.
func (p *Parser) Parse(raw string, schema Schema) (Message, error) {
	msg := Message{Raw: raw}
	fail := func(rule string) (Message, error) {
		return msg, &MalformedError{Schema: schema.Name, Rule: rule, Raw: raw}
	}

	obj, ok := extractObject(raw)
	if !ok {
		return fail("reply contains no JSON object")
	}
	if !gjson.Valid(obj) {
		return fail("reply is not valid JSON")
	}
	if schema.compiled == nil {
		return fail("schema was not built with NewSchema")
	}
	result, err := schema.compiled.Validate(gojsonschema.NewStringLoader(obj))
	if err != nil {
		return fail(fmt.Sprintf("schema validation: %v", err))
	}
	if !result.Valid() {
		return fail(describe(result.Errors()))
	}

	subject := gjson.Get(obj, "subject").String()
	switch {
	case strings.TrimSpace(subject) == "":
		return fail("subject is empty")
	case strings.ContainsAny(subject, "\r\n"):
		return fail("subject spans more than one line")
	case utf8.RuneCountInString(subject) > schema.SubjectMax:
		return fail(fmt.Sprintf("subject is %d characters, ceiling is %d", utf8.RuneCountInString(subject), schema.SubjectMax))
	}
	msg.Subject = subject

	gjson.Get(obj, "sections").ForEach(func(_, section gjson.Result) bool {
		label := section.Get("label").String()
		text := strings.TrimSpace(section.Get("text").String())
		canonical, known := schema.canonicalLabel(label)
		if !known {
			p.log.Warn("dropping section with undeclared label", "schema", schema.Name, "label", label)
			return true
		}
		if text == "" {
			p.log.Debug("dropping empty section", "label", canonical)
			return true
		}
		msg.Sections = append(msg.Sections, Section{Label: canonical, Text: text})
		return true
	})
	return msg, nil
}

// extractObject returns the outermost {...} span, tolerating prose or code
// fences around it.
func extractObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start > end {
		return "", false
	}
	return raw[start : end+1], true
}

func describe(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return strings.Join(parts, "; ")
}
