package models

import "time"

// RunStatus describes the outcome of a bootstrap run.
type RunStatus string

const (
	// RunStatusCompleted means the run rendered and wrote its artifacts.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed means the run aborted before finishing.
	RunStatusFailed RunStatus = "failed"
	// RunStatusDryRun means the run previewed changes without writing.
	RunStatusDryRun RunStatus = "dry-run"
)

// ArtifactAction describes what a run did to a generated file.
type ArtifactAction string

const (
	ArtifactActionCreated   ArtifactAction = "created"
	ArtifactActionUpdated   ArtifactAction = "updated"
	ArtifactActionUnchanged ArtifactAction = "unchanged"
	ArtifactActionSkipped   ArtifactAction = "skipped"
)

// Run records one invocation of the bootstrap workflow against a project.
type Run struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`

	// ProjectPath is the absolute path of the bootstrapped project.
	ProjectPath string `json:"project_path"`

	// Status is the run outcome.
	Status RunStatus `json:"status"`

	// ArtifactCount is the number of artifacts processed.
	ArtifactCount int `json:"artifact_count"`

	// WarningCount is the total number of resolution warnings across all
	// rendered templates.
	WarningCount int `json:"warning_count"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished, nil while in flight.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Artifact records one file produced (or previewed) by a run.
type Artifact struct {
	// ID is the unique identifier for the artifact record.
	ID string `json:"id"`

	// RunID references the owning run.
	RunID string `json:"run_id"`

	// Path is the output path relative to the project root.
	Path string `json:"path"`

	// Template is the name of the template that produced the file.
	Template string `json:"template"`

	// Checksum is the hex SHA-256 of the final content.
	Checksum string `json:"checksum"`

	// Action is what happened to the file.
	Action ArtifactAction `json:"action"`

	// Warnings is the number of resolution warnings for this render.
	Warnings int `json:"warnings"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"created_at"`
}
