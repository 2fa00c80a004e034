package taxonomy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed templates/default.yaml
var defaultTemplateYAML []byte

// Template is the annotation template served to clients: the severity scale
// plus the error taxonomy annotators pick from.
type Template struct {
	Severities []Severity `yaml:"severities" json:"severities"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Severity is one level of the severity scale.
type Severity struct {
	Key         string `yaml:"key" json:"key"`
	Display     string `yaml:"display" json:"display"`
	Shortcut    string `yaml:"shortcut" json:"shortcut"`
	Color       string `yaml:"color" json:"color"`
	Description string `yaml:"description" json:"description"`
}

// Category is a top-level error category with its subtypes.
type Category struct {
	Key         string    `yaml:"key" json:"key"`
	Display     string    `yaml:"display" json:"display"`
	Description string    `yaml:"description" json:"description"`
	Subtypes    []Subtype `yaml:"subtypes" json:"subtypes"`
}

// Subtype is a selectable error type within a category. The behavior flags
// drive the annotation UI: SourceSideOnly restricts span selection to the
// source text, NeedsNote requires a free-text note, ForcedSeverity locks the
// severity choice, and OverrideAllErrors discards every other error on the
// segment when this one is applied.
type Subtype struct {
	Key               string `yaml:"key" json:"key"`
	Display           string `yaml:"display" json:"display"`
	Description       string `yaml:"description" json:"description"`
	SourceSideOnly    bool   `yaml:"source_side_only" json:"sourceSideOnly"`
	NeedsNote         bool   `yaml:"needs_note" json:"needsNote"`
	ForcedSeverity    string `yaml:"forced_severity,omitempty" json:"forcedSeverity,omitempty"`
	OverrideAllErrors bool   `yaml:"override_all_errors" json:"overrideAllErrors"`
}

// Default returns the built-in template.
func Default() (Template, error) {
	return parse(defaultTemplateYAML)
}

// Load reads a template from a YAML file, falling back to the built-in
// template when path is empty. The returned template is already validated.
func Load(path string) (Template, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parse template yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// SeverityByKey looks up a severity level by its key.
func (t Template) SeverityByKey(key string) (Severity, bool) {
	for _, s := range t.Severities {
		if s.Key == key {
			return s, true
		}
	}
	return Severity{}, false
}

// FindSubtype looks up a subtype by key across all categories.
func (t Template) FindSubtype(key string) (Subtype, bool) {
	for _, c := range t.Categories {
		for _, s := range c.Subtypes {
			if s.Key == key {
				return s, true
			}
		}
	}
	return Subtype{}, false
}
