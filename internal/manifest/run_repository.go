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

// Run repository errors.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidRun  = errors.New("invalid run")
)

// RunRepository handles run persistence.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ProjectPath == "" {
		return ErrInvalidRun
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = models.RunStatusCompleted
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	} else {
		run.StartedAt = run.StartedAt.UTC()
	}

	var completedAt *string
	if run.CompletedAt != nil {
		value := run.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &value
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, project_path, status, artifact_count, warning_count, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.ProjectPath,
		string(run.Status),
		run.ArtifactCount,
		run.WarningCount,
		run.StartedAt.Format(time.RFC3339),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Complete marks a run as finished with its final status and counters.
func (r *RunRepository) Complete(ctx context.Context, id string, status models.RunStatus, artifacts, warnings int) error {
	if id == "" {
		return ErrInvalidRun
	}

	completedAt := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, artifact_count = ?, warning_count = ?, completed_at = ?
		WHERE id = ?
	`, string(status), artifacts, warnings, completedAt, id)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetByID fetches a single run.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_path, status, artifact_count, warning_count, started_at, completed_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns runs ordered most recent first, optionally limited.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, project_path, status, artifact_count, warning_count, started_at, completed_at
		FROM runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var status, startedAt string
	var completedAt *string

	if err := row.Scan(
		&run.ID,
		&run.ProjectPath,
		&status,
		&run.ArtifactCount,
		&run.WarningCount,
		&startedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started

	if completedAt != nil {
		completed, err := time.Parse(time.RFC3339, *completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		run.CompletedAt = &completed
	}
	return &run, nil
}
