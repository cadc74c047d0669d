package response

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"
)

//go:embed schema.yaml
var baseSchemaYAML []byte

var (
	CommitLabels = []string{"Overview", "Introduced", "Changed", "Fixed", "Refactored", "Removed", "Tests", "Documentation", "Build", "Notes"}
	PRLabels     = []string{"Overview", "Changes", "Testing", "Notes"}
)

// Schema describes the reply the model must produce: a JSON object with a
// subject line and labelled sections. Document is the JSON Schema handed to
// the model; SubjectMax and Labels are enforced by the parser.
type Schema struct {
	Name       string
	SubjectMax int
	Labels     []string

	document []byte
	compiled *gojsonschema.Schema
}

// NewSchema builds a schema from the embedded base document, annotating it
// with the ceiling and the declared labels.
func NewSchema(name string, subjectMax int, labels []string) (Schema, error) {
	if subjectMax <= 0 {
		return Schema{}, fmt.Errorf("schema %s: subject ceiling must be positive", name)
	}
	raw, err := yaml.YAMLToJSON(baseSchemaYAML)
	if err != nil {
		return Schema{}, fmt.Errorf("schema %s: convert yaml: %w", name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Schema{}, fmt.Errorf("schema %s: decode: %w", name, err)
	}
	doc["title"] = name
	props := doc["properties"].(map[string]any)
	subject := props["subject"].(map[string]any)
	subject["description"] = fmt.Sprintf("single summary line, at most %d characters, no formatting", subjectMax)
	label := props["sections"].(map[string]any)["items"].(map[string]any)["properties"].(map[string]any)["label"].(map[string]any)
	label["description"] = "one of: " + strings.Join(labels, ", ")
	label["examples"] = labels

	document, err := json.Marshal(doc)
	if err != nil {
		return Schema{}, fmt.Errorf("schema %s: encode: %w", name, err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return Schema{}, fmt.Errorf("schema %s: compile: %w", name, err)
	}
	return Schema{
		Name:       name,
		SubjectMax: subjectMax,
		Labels:     append([]string(nil), labels...),
		document:   document,
		compiled:   compiled,
	}, nil
}

// CommitSchema is the reply shape for commit messages.
func CommitSchema(subjectMax int) (Schema, error) {
	return NewSchema("commit_message", subjectMax, CommitLabels)
}

// PRSchema is the reply shape for pull-request summaries.
func PRSchema(titleMax int) (Schema, error) {
	return NewSchema("pr_summary", titleMax, PRLabels)
}

// Document returns the JSON Schema as bytes.
func (s Schema) Document() []byte { return s.document }

// canonicalLabel maps a model-supplied label onto a declared one, ignoring
// case and markdown heading marks.
func (s Schema) canonicalLabel(label string) (string, bool) {
	l := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(label), "#"))
	for _, declared := range s.Labels {
		if strings.EqualFold(l, declared) {
			return declared, true
		}
	}
	return "", false
}
