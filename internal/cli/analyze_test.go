package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setAnalyzeFlags(t *testing.T, jsonMode bool, contextFiles ...string) {
	t.Helper()

	origJSON := jsonOutput
	origContext := analyzeContextFiles
	t.Cleanup(func() {
		jsonOutput = origJSON
		analyzeContextFiles = origContext
	})

	jsonOutput = jsonMode
	analyzeContextFiles = contextFiles
}

func writeOverlay(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "context.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	return path
}

func TestRunAnalyzeJSONIncludesOverlay(t *testing.T) {
	dir := writeGoProject(t)
	overlay := writeOverlay(t, "project:\n  name: renamed\ncustom:\n  owner: platform\n")
	setAnalyzeFlags(t, true, overlay)

	var out bytes.Buffer
	if err := runAnalyze(&out, dir); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	var merged map[string]any
	if err := json.Unmarshal(out.Bytes(), &merged); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	project, ok := merged["project"].(map[string]any)
	if !ok || project["name"] != "renamed" {
		t.Fatalf("overlay name should win in output: %s", out.String())
	}
	if project["module"] != "example.com/widget" {
		t.Fatalf("detected module should survive the overlay: %s", out.String())
	}
	custom, ok := merged["custom"].(map[string]any)
	if !ok || custom["owner"] != "platform" {
		t.Fatalf("overlay-only keys should appear in output: %s", out.String())
	}
}

func TestRunAnalyzeTableShowsOverlayValues(t *testing.T) {
	dir := writeGoProject(t)
	overlay := writeOverlay(t, "project:\n  name: renamed\ncommands:\n  test: make check\n")
	setAnalyzeFlags(t, false, overlay)

	var out bytes.Buffer
	if err := runAnalyze(&out, dir); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	if !strings.Contains(out.String(), "renamed") {
		t.Fatalf("table should show the overlay name, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Name:     widget") {
		t.Fatalf("table should not show the detected name once overridden:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "make check") {
		t.Fatalf("table should show the overlay test command, got:\n%s", out.String())
	}
}

func TestRunAnalyzeWithoutOverlay(t *testing.T) {
	dir := writeGoProject(t)
	setAnalyzeFlags(t, false)

	var out bytes.Buffer
	if err := runAnalyze(&out, dir); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	if !strings.Contains(out.String(), "widget") {
		t.Fatalf("table should show the detected name, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "go test ./...") {
		t.Fatalf("table should show the default test command, got:\n%s", out.String())
	}
}
