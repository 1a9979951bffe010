// Package profiles persists known metadata servers so the client can start
// without flags. Only server bookmarks live here: session and history state
// are never written to disk, they are rebuilt from the server on every start.
package profiles

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	// Pure-Go SQLite driver, registered for database/sql. No CGO, so the
	// client cross-compiles cleanly.
	_ "modernc.org/sqlite"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// currentSchemaVersion is the database schema version. Increment on schema
// changes and add migration logic in initSchema.
const currentSchemaVersion = 1

// Store holds server profiles in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the profiles database at path, initializing the
// schema if needed. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeProfilesOpenFailed, fmt.Sprintf("open profiles database at %s", path), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.CodeProfilesOpenFailed, fmt.Sprintf("ping profiles database at %s", path), err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("profiles: database ready at %s (schema version %d)", path, currentSchemaVersion)
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the tables if they don't exist and applies migrations.
func (s *Store) initSchema() error {
	const schemaVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return apperr.Wrap(apperr.CodeProfilesOpenFailed, "create schema_version table", err)
	}

	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return apperr.Wrap(apperr.CodeProfilesOpenFailed, "check schema version", err)
	}

	if version < 1 {
		if err := s.migrateToV1(); err != nil {
			return apperr.Wrap(apperr.CodeProfilesOpenFailed, "migrate to v1", err)
		}
	}

	return nil
}

// migrateToV1 creates the servers table.
func (s *Store) migrateToV1() error {
	const serversTable = `
		CREATE TABLE IF NOT EXISTS servers (
			name TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			last_used TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(serversTable); err != nil {
		return fmt.Errorf("create servers table: %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))", 1,
	); err != nil {
		return fmt.Errorf("record schema version 1: %w", err)
	}

	return nil
}
