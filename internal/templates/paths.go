package templates

import (
	"os"
	"path/filepath"
)

// TemplateSearchPaths returns template search directories in precedence order.
func TemplateSearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".groundwork", "templates"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "groundwork", "templates"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "groundwork", "templates"))
	return paths
}

// LoadTemplatesFromSearchPaths loads templates from search paths with
// first-hit precedence, falling back to the embedded builtins. Extra
// directories, if given, are searched before the standard paths.
func LoadTemplatesFromSearchPaths(projectDir string, extra ...string) ([]*Template, error) {
	catalogue := make([]*Template, 0, 8)
	seen := make(map[string]bool)
	add := func(loaded []*Template) {
		for _, tmpl := range loaded {
			if seen[tmpl.Name] {
				continue
			}
			seen[tmpl.Name] = true
			catalogue = append(catalogue, tmpl)
		}
	}

	for _, path := range append(append([]string{}, extra...), TemplateSearchPaths(projectDir)...) {
		loaded, err := LoadTemplatesFromDir(path)
		if err != nil {
			return nil, err
		}
		add(loaded)
	}

	builtins, err := LoadBuiltinTemplates()
	if err != nil {
		return nil, err
	}
	add(builtins)

	return catalogue, nil
}
