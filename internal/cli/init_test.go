package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/groundwork-cli/groundwork/internal/logging"
	"github.com/groundwork-cli/groundwork/internal/manifest"
	"github.com/groundwork-cli/groundwork/internal/models"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeGoProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	content := "module example.com/widget\n\ngo 1.22\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	return dir
}

func setInitFlags(t *testing.T, dryRun bool, names ...string) {
	t.Helper()

	origState := statePath
	origDryRun := initDryRun
	origNonInteractive := nonInteractive
	origTemplates := initTemplates
	t.Cleanup(func() {
		statePath = origState
		initDryRun = origDryRun
		nonInteractive = origNonInteractive
		initTemplates = origTemplates
	})

	statePath = filepath.Join(t.TempDir(), "state.db")
	initDryRun = dryRun
	nonInteractive = true
	initTemplates = names
}

func TestRunInitWritesArtifacts(t *testing.T) {
	dir := writeGoProject(t)
	setInitFlags(t, false, "agents-md")

	if err := runInit(context.Background(), dir); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "AGENTS.md"))
	if err != nil {
		t.Fatalf("read AGENTS.md: %v", err)
	}
	if !strings.Contains(string(content), "# widget — Agent Guide") {
		t.Fatalf("unexpected AGENTS.md content: %s", content)
	}
	if strings.Contains(string(content), "{{") {
		t.Fatalf("AGENTS.md contains unresolved syntax: %s", content)
	}

	database, err := manifest.Open(statePath)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer database.Close()

	runs, err := manifest.NewRunRepository(database).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %q", runs[0].Status)
	}
	if runs[0].ArtifactCount != 1 {
		t.Fatalf("expected 1 artifact, got %d", runs[0].ArtifactCount)
	}

	artifacts, err := manifest.NewArtifactRepository(database).ListByRun(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("list artifacts: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Path != "AGENTS.md" {
		t.Fatalf("unexpected artifacts: %+v", artifacts)
	}
	if artifacts[0].Action != models.ArtifactActionCreated {
		t.Fatalf("expected created action, got %q", artifacts[0].Action)
	}
	if artifacts[0].Checksum == "" {
		t.Fatal("expected a checksum")
	}
}

func TestRunInitDryRunTouchesNothing(t *testing.T) {
	dir := writeGoProject(t)
	setInitFlags(t, true, "agents-md")

	if err := runInit(context.Background(), dir); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "AGENTS.md")); !os.IsNotExist(err) {
		t.Fatal("dry run should not write AGENTS.md")
	}

	database, err := manifest.Open(statePath)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer database.Close()

	runs, err := manifest.NewRunRepository(database).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != models.RunStatusDryRun {
		t.Fatalf("expected one dry-run record, got %+v", runs)
	}
}

func TestRunInitRegenerationPreservesRegions(t *testing.T) {
	dir := writeGoProject(t)
	setInitFlags(t, false, "agents-md")

	if err := runInit(context.Background(), dir); err != nil {
		t.Fatalf("first runInit: %v", err)
	}

	path := filepath.Join(dir, "AGENTS.md")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read AGENTS.md: %v", err)
	}
	edited := strings.Replace(string(content),
		"_Add project-specific guidance for assistants here. This section is never\noverwritten by regeneration._",
		"Keep the widget API backwards compatible.", 1)
	if edited == string(content) {
		t.Fatal("expected to find the managed region placeholder")
	}
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatalf("write edited AGENTS.md: %v", err)
	}

	if err := runInit(context.Background(), dir); err != nil {
		t.Fatalf("second runInit: %v", err)
	}

	regenerated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read regenerated AGENTS.md: %v", err)
	}
	if !strings.Contains(string(regenerated), "Keep the widget API backwards compatible.") {
		t.Fatal("managed region edit was lost on regeneration")
	}
}

func TestRunInitFailsWithoutProjectName(t *testing.T) {
	setInitFlags(t, false, "agents-md")

	err := runInit(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for undetectable project")
	}
	if _, ok := err.(*PreflightError); !ok {
		t.Fatalf("expected PreflightError, got %T: %v", err, err)
	}
}

func TestSelectTemplatesByName(t *testing.T) {
	origTemplates := initTemplates
	t.Cleanup(func() { initTemplates = origTemplates })

	catalogue, err := loadCatalogue(t.TempDir())
	if err != nil {
		t.Fatalf("loadCatalogue: %v", err)
	}

	initTemplates = []string{"agents-md", "adr-readme"}
	selected, err := selectTemplates(catalogue)
	if err != nil {
		t.Fatalf("selectTemplates: %v", err)
	}
	if len(selected) != 2 || selected[0].Name != "agents-md" || selected[1].Name != "adr-readme" {
		t.Fatalf("unexpected selection: %+v", selected)
	}

	initTemplates = []string{"nope"}
	if _, err := selectTemplates(catalogue); err == nil {
		t.Fatal("expected error for unknown template name")
	}
}

func TestBuildContextLayersFiles(t *testing.T) {
	dir := writeGoProject(t)

	overlay := filepath.Join(t.TempDir(), "context.yaml")
	content := "project:\n  name: renamed\ncommands:\n  test: make check\n"
	if err := os.WriteFile(overlay, []byte(content), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	value, merged, err := buildContext(dir, []string{overlay})
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}

	project, ok := merged["project"].(map[string]any)
	if !ok || project["name"] != "renamed" {
		t.Fatalf("merged map should carry the overlay name: %#v", merged)
	}

	assertText := func(path, want string) {
		t.Helper()
		value, ok := value.Lookup(path)
		if !ok {
			t.Fatalf("expected %s in context", path)
		}
		text, err := value.Text()
		if err != nil {
			t.Fatalf("text of %s: %v", path, err)
		}
		if text != want {
			t.Fatalf("expected %s=%q, got %q", path, want, text)
		}
	}

	assertText("project.name", "renamed")
	assertText("commands.test", "make check")
	assertText("project.module", "example.com/widget")
}
