package templates

import (
	"fmt"

	"github.com/groundwork-cli/groundwork/internal/resolve"
)

// RenderTemplate renders a template body against the given context. Context
// paths listed in the template's requires list must resolve truthy before
// rendering starts.
func RenderTemplate(tmpl *Template, ctx resolve.Value, opts ...resolve.Option) (*resolve.Result, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is required")
	}

	for _, path := range tmpl.Requires {
		value, ok := ctx.Lookup(path)
		if !ok || !value.Truthy() {
			return nil, fmt.Errorf("%w: template %q requires %s", ErrRequirementNotMet, tmpl.Name, path)
		}
	}

	result, err := resolve.Render(tmpl.Body, ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("render template %q: %w", tmpl.Name, err)
	}
	return result, nil
}
