package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/groundwork-cli/groundwork/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestRun(t *testing.T, db *DB) *models.Run {
	t.Helper()

	repo := NewRunRepository(db)
	run := &models.Run{ProjectPath: "/tmp/groundwork-test"}
	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	return run
}

func TestRunRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db)

	run := createTestRun(t, db)
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}

	fetched, err := repo.GetByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.ProjectPath != "/tmp/groundwork-test" {
		t.Fatalf("unexpected project path: %q", fetched.ProjectPath)
	}
	if fetched.Status != models.RunStatusCompleted {
		t.Fatalf("unexpected default status: %q", fetched.Status)
	}
	if fetched.CompletedAt != nil {
		t.Fatal("new run should not be completed")
	}
}

func TestRunRepositoryComplete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db)
	run := createTestRun(t, db)

	if err := repo.Complete(context.Background(), run.ID, models.RunStatusCompleted, 4, 2); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	fetched, err := repo.GetByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.ArtifactCount != 4 || fetched.WarningCount != 2 {
		t.Fatalf("unexpected counters: %+v", fetched)
	}
	if fetched.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	if err := repo.Complete(context.Background(), "missing", models.RunStatusFailed, 0, 0); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepositoryListOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db)

	older := &models.Run{ProjectPath: "/p", StartedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &models.Run{ProjectPath: "/p"}
	if err := repo.Create(context.Background(), older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := repo.Create(context.Background(), newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	runs, err := repo.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", runs)
	}

	limited, err := repo.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected one run, got %d", len(limited))
	}
}

func TestRunRepositoryGetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestArtifactRepositoryCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	run := createTestRun(t, db)
	repo := NewArtifactRepository(db)

	for _, path := range []string{"docs/guide.md", "AGENTS.md"} {
		artifact := &models.Artifact{
			RunID:    run.ID,
			Path:     path,
			Template: "agents-md",
			Checksum: "abc123",
			Action:   models.ArtifactActionCreated,
		}
		if err := repo.Create(context.Background(), artifact); err != nil {
			t.Fatalf("create artifact: %v", err)
		}
	}

	artifacts, err := repo.ListByRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	if artifacts[0].Path != "AGENTS.md" {
		t.Fatalf("expected path ordering, got %+v", artifacts)
	}
}

func TestArtifactRepositoryValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArtifactRepository(db)

	err := repo.Create(context.Background(), &models.Artifact{Path: "x"})
	if !errors.Is(err, ErrInvalidArtifact) {
		t.Fatalf("expected ErrInvalidArtifact, got %v", err)
	}
}

func TestArtifactRepositoryLatestByPath(t *testing.T) {
	db := setupTestDB(t)
	run := createTestRun(t, db)
	repo := NewArtifactRepository(db)

	first := &models.Artifact{
		RunID:     run.ID,
		Path:      "AGENTS.md",
		Template:  "agents-md",
		Checksum:  "old",
		Action:    models.ArtifactActionCreated,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	second := &models.Artifact{
		RunID:    run.ID,
		Path:     "AGENTS.md",
		Template: "agents-md",
		Checksum: "new",
		Action:   models.ArtifactActionUpdated,
	}
	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(context.Background(), second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	latest, err := repo.LatestByPath(context.Background(), "AGENTS.md")
	if err != nil {
		t.Fatalf("LatestByPath: %v", err)
	}
	if latest.Checksum != "new" {
		t.Fatalf("expected most recent record, got %+v", latest)
	}

	if _, err := repo.LatestByPath(context.Background(), "missing.md"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}
