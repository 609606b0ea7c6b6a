// Package templates provides methodology template loading and rendering.
package templates

import (
	"errors"
	"fmt"
)

// Template errors.
var (
	// ErrTemplateNotFound is returned when a named template does not exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMissingFrontmatter is returned when a template file lacks the YAML
	// frontmatter header.
	ErrMissingFrontmatter = errors.New("template frontmatter is required")
	// ErrRequirementNotMet is returned when a context path listed in the
	// template's requires list resolves falsy.
	ErrRequirementNotMet = errors.New("template requirement not met")
)

// Template represents a single methodology file template: a Markdown body
// with placeholder syntax, described by a YAML frontmatter header.
type Template struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Output      string   `yaml:"output" json:"output"` // default output path relative to the project root
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Requires    []string `yaml:"requires,omitempty" json:"requires,omitempty"` // context paths that must be truthy
	Source      string   `yaml:"-" json:"source"`                              // file path or "builtin"
	Body        string   `yaml:"-" json:"-"`
}

// Validate checks required metadata fields.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Output == "" {
		return fmt.Errorf("template %q: output path is required", t.Name)
	}
	return nil
}

// ByName returns the template with the given name from a catalogue.
func ByName(catalogue []*Template, name string) (*Template, error) {
	for _, tmpl := range catalogue {
		if tmpl.Name == name {
			return tmpl, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}
