// Package analysis discovers project facts and assembles the data context
// used to render methodology templates.
package analysis

// Facts is the typed analysis record for a project. Empty fields are omitted
// from the rendering context so they resolve as absent rather than as empty
// strings.
type Facts struct {
	Project  Project  `json:"project" yaml:"project"`
	Commands Commands `json:"commands" yaml:"commands"`
	Paths    Paths    `json:"paths" yaml:"paths"`
	VCS      VCS      `json:"vcs" yaml:"vcs"`
}

// Project describes the target project itself.
type Project struct {
	Name      string   `json:"name" yaml:"name"`
	Module    string   `json:"module,omitempty" yaml:"module,omitempty"`
	Language  string   `json:"language,omitempty" yaml:"language,omitempty"`
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// Commands holds the discovered developer commands.
type Commands struct {
	Build string `json:"build,omitempty" yaml:"build,omitempty"`
	Test  string `json:"test,omitempty" yaml:"test,omitempty"`
	Lint  string `json:"lint,omitempty" yaml:"lint,omitempty"`
	Run   string `json:"run,omitempty" yaml:"run,omitempty"`
}

// Paths holds notable documentation locations relative to the project root.
type Paths struct {
	Docs string `json:"docs,omitempty" yaml:"docs,omitempty"`
	ADR  string `json:"adr,omitempty" yaml:"adr,omitempty"`
}

// VCS holds version control facts.
type VCS struct {
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Context converts the facts into the JSON-shaped mapping consumed by the
// template resolver.
func (f *Facts) Context() map[string]any {
	project := map[string]any{}
	putIf(project, "name", f.Project.Name)
	putIf(project, "module", f.Project.Module)
	putIf(project, "language", f.Project.Language)
	if len(f.Project.Languages) > 0 {
		languages := make([]any, 0, len(f.Project.Languages))
		for _, lang := range f.Project.Languages {
			languages = append(languages, lang)
		}
		project["languages"] = languages
	}

	commands := map[string]any{}
	putIf(commands, "build", f.Commands.Build)
	putIf(commands, "test", f.Commands.Test)
	putIf(commands, "lint", f.Commands.Lint)
	putIf(commands, "run", f.Commands.Run)

	paths := map[string]any{}
	putIf(paths, "docs", f.Paths.Docs)
	putIf(paths, "adr", f.Paths.ADR)

	vcs := map[string]any{}
	putIf(vcs, "branch", f.VCS.Branch)

	ctx := map[string]any{"project": project}
	if len(commands) > 0 {
		ctx["commands"] = commands
	}
	if len(paths) > 0 {
		ctx["paths"] = paths
	}
	if len(vcs) > 0 {
		ctx["vcs"] = vcs
	}
	return ctx
}

func putIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// MergeContext deep-merges overlay into base and returns the result. Overlay
// values win; nested mappings merge recursively. Neither input is mutated.
func MergeContext(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		baseMap, baseOK := merged[key].(map[string]any)
		overlayMap, overlayOK := value.(map[string]any)
		if baseOK && overlayOK {
			merged[key] = MergeContext(baseMap, overlayMap)
			continue
		}
		merged[key] = value
	}
	return merged
}
