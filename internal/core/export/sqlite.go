// Package export copies the build history into other formats.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/neilberkman/buildtracker/internal/core/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	project TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL,
	duration_minutes REAL,
	commit_hash TEXT,
	repo_url TEXT,
	repo_url_from_git TEXT,
	notes TEXT,
	start_load_average REAL,
	start_memory_usage_percent REAL,
	end_load_average REAL,
	end_memory_usage_percent REAL
);

CREATE INDEX IF NOT EXISTS idx_builds_project ON builds(project);
CREATE INDEX IF NOT EXISTS idx_builds_timestamp ON builds(timestamp);
`

// ToSQLite writes builds into the builds table of the SQLite database at
// dbPath, replacing rows with the same id. It returns the number of rows
// written.
func ToSQLite(dbPath string, builds []models.Build) (int, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		return 0, fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO builds (
			id, timestamp, project, description, status, duration_minutes,
			commit_hash, repo_url, repo_url_from_git, notes,
			start_load_average, start_memory_usage_percent,
			end_load_average, end_memory_usage_percent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range builds {
		var endLoad, endMem interface{}
		if b.ResourceUsage.End != nil {
			endLoad = nullable(b.ResourceUsage.End.LoadAverage)
			endMem = nullable(b.ResourceUsage.End.MemoryUsagePercent)
		}
		_, err := stmt.Exec(
			b.ID, b.Timestamp, b.Project, b.Description, string(b.Status),
			nullable(b.DurationMinutes),
			nullable(b.CommitHash), nullable(b.RepoURL), nullable(b.RepoURLFromGit),
			b.Notes,
			nullable(b.ResourceUsage.Start.LoadAverage), nullable(b.ResourceUsage.Start.MemoryUsagePercent),
			endLoad, endMem,
		)
		if err != nil {
			return 0, fmt.Errorf("insert build %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(builds), nil
}

// nullable maps a nil pointer to SQL NULL
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
