// Package manifest provides SQLite-backed persistence for the bootstrap
// manifest: the record of runs and the files they generated. The manifest is
// an explicit, caller-owned handle; nothing in this package holds global
// state.
package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the manifest database handle.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the manifest database at path and
// applies the schema.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("manifest path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create manifest directory %s: %w", dir, err)
		}
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}

	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY on concurrent repository use.
	handle.SetMaxOpenConns(1)

	db := &DB{DB: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project_path TEXT NOT NULL,
		status TEXT NOT NULL,
		artifact_count INTEGER NOT NULL DEFAULT 0,
		warning_count INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		template TEXT NOT NULL,
		checksum TEXT NOT NULL,
		action TEXT NOT NULL,
		warnings INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON artifacts(run_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_path ON artifacts(path);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate manifest schema: %w", err)
	}
	return nil
}
