package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanGoProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module github.com/example/widget\n\ngo 1.22\n")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main\n")
	if err := os.MkdirAll(filepath.Join(dir, "docs", "adr"), 0755); err != nil {
		t.Fatalf("mkdir docs: %v", err)
	}

	facts, err := NewScanner().Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if facts.Project.Name != "widget" {
		t.Fatalf("expected name widget, got %q", facts.Project.Name)
	}
	if facts.Project.Module != "github.com/example/widget" {
		t.Fatalf("unexpected module: %q", facts.Project.Module)
	}
	if facts.Project.Language != "go" {
		t.Fatalf("unexpected language: %q", facts.Project.Language)
	}
	if facts.Commands.Test != "go test ./..." {
		t.Fatalf("unexpected test command: %q", facts.Commands.Test)
	}
	if facts.Paths.Docs != "docs" || facts.Paths.ADR != "docs/adr" {
		t.Fatalf("unexpected paths: %+v", facts.Paths)
	}
	if facts.VCS.Branch != "main" {
		t.Fatalf("unexpected branch: %q", facts.VCS.Branch)
	}
}

func TestScanMakefileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/svc\n")
	writeFile(t, dir, "Makefile", "build:\n\tgo build ./cmd/svc\n\ntest: build\n\tgo test -race ./...\n\n.PHONY: build test\n")

	facts, err := NewScanner().Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if facts.Commands.Build != "make build" {
		t.Fatalf("expected make build, got %q", facts.Commands.Build)
	}
	if facts.Commands.Test != "make test" {
		t.Fatalf("expected make test, got %q", facts.Commands.Test)
	}
	if facts.Commands.Lint != "go vet ./..." {
		t.Fatalf("expected go default lint, got %q", facts.Commands.Lint)
	}
}

func TestScanNodeProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"web-app","scripts":{"build":"vite build","test":"vitest","lint":"eslint ."}}`)
	writeFile(t, dir, "tsconfig.json", `{}`)

	facts, err := NewScanner().Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if facts.Project.Name != "web-app" {
		t.Fatalf("unexpected name: %q", facts.Project.Name)
	}
	if facts.Project.Language != "typescript" {
		t.Fatalf("unexpected language: %q", facts.Project.Language)
	}
	if facts.Commands.Test != "npm test" || facts.Commands.Lint != "npm run lint" {
		t.Fatalf("unexpected commands: %+v", facts.Commands)
	}
}

func TestScanMissingDirFails(t *testing.T) {
	if _, err := NewScanner().Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestContextOmitsEmptyFields(t *testing.T) {
	facts := &Facts{}
	facts.Project.Name = "demo"

	ctx := facts.Context()

	project, ok := ctx["project"].(map[string]any)
	if !ok || project["name"] != "demo" {
		t.Fatalf("unexpected context: %#v", ctx)
	}
	if _, ok := ctx["commands"]; ok {
		t.Fatal("empty commands should be absent, not empty")
	}
	if _, ok := project["module"]; ok {
		t.Fatal("empty module should be absent")
	}
}

func TestLoadFileYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "analysis.yaml", "project:\n  name: from-yaml\ncustom:\n  reviewer: ada\n")
	writeFile(t, dir, "analysis.json", `{"project":{"name":"from-json"}}`)

	fromYAML, err := LoadFile(filepath.Join(dir, "analysis.yaml"))
	if err != nil {
		t.Fatalf("LoadFile yaml: %v", err)
	}
	if fromYAML["custom"].(map[string]any)["reviewer"] != "ada" {
		t.Fatalf("unexpected yaml contents: %#v", fromYAML)
	}

	fromJSON, err := LoadFile(filepath.Join(dir, "analysis.json"))
	if err != nil {
		t.Fatalf("LoadFile json: %v", err)
	}
	if fromJSON["project"].(map[string]any)["name"] != "from-json" {
		t.Fatalf("unexpected json contents: %#v", fromJSON)
	}

	writeFile(t, dir, "analysis.txt", "nope")
	if _, err := LoadFile(filepath.Join(dir, "analysis.txt")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestMergeContextOverlayWins(t *testing.T) {
	base := map[string]any{
		"project":  map[string]any{"name": "scanned", "module": "example.com/x"},
		"commands": map[string]any{"test": "go test ./..."},
	}
	overlay := map[string]any{
		"project": map[string]any{"name": "override"},
		"custom":  map[string]any{"owner": "platform"},
	}

	merged := MergeContext(base, overlay)

	project := merged["project"].(map[string]any)
	if project["name"] != "override" {
		t.Fatalf("overlay should win: %#v", project)
	}
	if project["module"] != "example.com/x" {
		t.Fatalf("base keys should survive: %#v", project)
	}
	if merged["custom"].(map[string]any)["owner"] != "platform" {
		t.Fatalf("overlay-only keys should appear: %#v", merged)
	}
	if base["project"].(map[string]any)["name"] != "scanned" {
		t.Fatal("base must not be mutated")
	}
}
