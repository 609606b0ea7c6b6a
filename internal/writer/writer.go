// Package writer persists rendered methodology files. It owns the
// backup-before-overwrite policy and the preservation of user-edited managed
// regions across regeneration.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnbalancedMarkers is returned when a file contains a managed-region
// start marker without its matching end marker (or vice versa).
var ErrUnbalancedMarkers = errors.New("unbalanced managed-region markers")

// Action describes what Write did to the target file.
type Action string

const (
	// ActionCreated means the file did not exist and was written fresh.
	ActionCreated Action = "created"
	// ActionUpdated means an existing file was overwritten (after merge).
	ActionUpdated Action = "updated"
	// ActionUnchanged means the merged content matched the existing file.
	ActionUnchanged Action = "unchanged"
)

// Options controls write behavior.
type Options struct {
	// Backup writes <path>.bak with the previous content before overwriting.
	Backup bool
	// DryRun computes the resulting action and content without touching disk.
	DryRun bool
	// Overwrite replaces the existing file wholesale instead of merging
	// managed regions. Rescues files whose markers have become unbalanced.
	Overwrite bool
}

// Result reports the outcome of a Write.
type Result struct {
	Path       string
	Action     Action
	BackupPath string
	// Content is the final file content (post-merge), useful for checksums
	// and dry-run previews.
	Content string
}

// Write persists content to path. When the file already exists, user-edited
// managed regions (<!-- NAME_START --> … <!-- NAME_END -->) from the existing
// file replace the corresponding regions in the new content.
func Write(path, content string, opts Options) (*Result, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read existing file %s: %w", path, err)
		}
		result := &Result{Path: path, Action: ActionCreated, Content: content}
		if opts.DryRun {
			return result, nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		return result, nil
	}

	merged := content
	if !opts.Overwrite {
		merged, err = MergeRegions(string(existing), content)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", path, err)
		}
	}

	if merged == string(existing) {
		return &Result{Path: path, Action: ActionUnchanged, Content: merged}, nil
	}

	result := &Result{Path: path, Action: ActionUpdated, Content: merged}
	if opts.Backup {
		result.BackupPath = path + ".bak"
	}
	if opts.DryRun {
		return result, nil
	}

	if opts.Backup {
		if err := os.WriteFile(result.BackupPath, existing, 0644); err != nil {
			return nil, fmt.Errorf("write backup %s: %w", result.BackupPath, err)
		}
	}
	if err := os.WriteFile(path, []byte(merged), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return result, nil
}
