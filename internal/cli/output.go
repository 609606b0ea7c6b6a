// Package cli output helpers: JSON emission and styled terminal text.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// IsJSONOutput reports whether commands should emit machine-readable JSON.
func IsJSONOutput() bool {
	return jsonOutput
}

// WriteOutput encodes value as indented JSON to out.
func WriteOutput(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func colorEnabled() bool {
	if cfg != nil && cfg.NoColor {
		return false
	}
	return !envSet("NO_COLOR")
}

func styled(style lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return style.Render(text)
}

func errorLabel() string {
	return styled(errorStyle, "error:")
}

func formatAction(action string) string {
	switch action {
	case "created":
		return styled(successStyle, action)
	case "updated":
		return styled(warningStyle, action)
	case "unchanged", "skipped":
		return styled(mutedStyle, action)
	default:
		return action
	}
}
