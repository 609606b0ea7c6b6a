package cli

import (
	"fmt"
	"path/filepath"

	"github.com/groundwork-cli/groundwork/internal/analysis"
	"github.com/groundwork-cli/groundwork/internal/resolve"
	"github.com/groundwork-cli/groundwork/internal/templates"
)

// buildContext scans the project and layers any extra context files on top of
// the detected facts. Later files win over earlier ones, and all files win
// over detection. The merged map is the same data the Value was built from.
func buildContext(projectDir string, contextFiles []string) (resolve.Value, map[string]any, error) {
	scanner := analysis.NewScanner()
	facts, err := scanner.Scan(projectDir)
	if err != nil {
		return resolve.Value{}, nil, err
	}

	merged := facts.Context()
	for _, file := range contextFiles {
		overlay, err := analysis.LoadFile(file)
		if err != nil {
			return resolve.Value{}, nil, err
		}
		merged = analysis.MergeContext(merged, overlay)
	}

	value, err := resolve.FromAny(merged)
	if err != nil {
		return resolve.Value{}, nil, fmt.Errorf("build context: %w", err)
	}
	return value, merged, nil
}

func loadCatalogue(projectDir string) ([]*templates.Template, error) {
	var extra []string
	if cfg != nil {
		extra = cfg.Templates.Paths
	}
	return templates.LoadTemplatesFromSearchPaths(projectDir, extra...)
}

func renderOptions(fallback string) []resolve.Option {
	if fallback == "" && cfg != nil {
		fallback = cfg.Render.Fallback
	}
	if fallback == "" {
		return nil
	}
	return []resolve.Option{resolve.WithFallback(fallback)}
}

func resolveProjectDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	return abs, nil
}
