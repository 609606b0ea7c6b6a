package cli

import "testing"

func setProgressFlags(t *testing.T) {
	t.Helper()

	origJSON := jsonOutput
	origNoProgress := noProgress
	t.Cleanup(func() {
		jsonOutput = origJSON
		noProgress = origNoProgress
	})

	jsonOutput = false
	noProgress = false
}

func TestProgressEnabled(t *testing.T) {
	setProgressFlags(t)

	if !progressEnabled() {
		t.Fatal("progress should be enabled by default")
	}

	noProgress = true
	if progressEnabled() {
		t.Fatal("--no-progress should disable progress")
	}
	noProgress = false

	jsonOutput = true
	if progressEnabled() {
		t.Fatal("JSON output should disable progress")
	}
}

func TestProgressEnabledRespectsEnv(t *testing.T) {
	setProgressFlags(t)

	t.Setenv("GROUNDWORK_NO_PROGRESS", "1")
	if progressEnabled() {
		t.Fatal("GROUNDWORK_NO_PROGRESS should disable progress")
	}
}

func TestProgressEnabledRespectsNoProgressConvention(t *testing.T) {
	setProgressFlags(t)

	t.Setenv("NO_PROGRESS", "")
	if progressEnabled() {
		t.Fatal("NO_PROGRESS should disable progress even when empty")
	}
}

func TestNilProgressStepIsSafe(t *testing.T) {
	var step *progressStep
	step.Done()
	step.Fail(nil)
}
