package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groundwork-cli/groundwork/internal/models"
)

// Artifact repository errors.
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidArtifact  = errors.New("invalid artifact")
)

// ArtifactRepository handles artifact persistence.
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Create inserts a new artifact record.
func (r *ArtifactRepository) Create(ctx context.Context, artifact *models.Artifact) error {
	if artifact.RunID == "" || artifact.Path == "" || artifact.Template == "" {
		return ErrInvalidArtifact
	}

	if artifact.ID == "" {
		artifact.ID = uuid.New().String()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	} else {
		artifact.CreatedAt = artifact.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (
			id, run_id, path, template, checksum, action, warnings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		artifact.ID,
		artifact.RunID,
		artifact.Path,
		artifact.Template,
		artifact.Checksum,
		string(artifact.Action),
		artifact.Warnings,
		artifact.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// ListByRun returns the artifacts recorded for a run, ordered by path.
func (r *ArtifactRepository) ListByRun(ctx context.Context, runID string) ([]*models.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, path, template, checksum, action, warnings, created_at
		FROM artifacts WHERE run_id = ? ORDER BY path
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]*models.Artifact, 0)
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// LatestByPath returns the most recent artifact record for an output path.
func (r *ArtifactRepository) LatestByPath(ctx context.Context, path string) (*models.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, run_id, path, template, checksum, action, warnings, created_at
		FROM artifacts WHERE path = ? ORDER BY created_at DESC LIMIT 1
	`, path)

	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return artifact, nil
}

func scanArtifact(row rowScanner) (*models.Artifact, error) {
	var artifact models.Artifact
	var action, createdAt string

	if err := row.Scan(
		&artifact.ID,
		&artifact.RunID,
		&artifact.Path,
		&artifact.Template,
		&artifact.Checksum,
		&action,
		&artifact.Warnings,
		&createdAt,
	); err != nil {
		return nil, err
	}

	artifact.Action = models.ArtifactAction(action)
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	artifact.CreatedAt = created
	return &artifact, nil
}
