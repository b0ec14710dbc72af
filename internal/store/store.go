// Package store is the client's local persistence: the saved session
// tokens, the anonymous client session id and the recent-search list.
// Backed by a small SQLite database in the user's NewsKoo directory.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNoSession = errors.New("no saved session")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local SQLite DB at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store under ~/.newskoo/, creating the directory
// if needed.
func OpenDefault() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(homeDir, ".newskoo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return Open(filepath.Join(dir, "newskoo.db"))
}

func (s *Store) migrate() error {
	const sqlStmt = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS client (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	session_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recent_searches (
	query TEXT PRIMARY KEY,
	searched_at INTEGER NOT NULL -- unix micro
);

CREATE INDEX IF NOT EXISTS idx_recent_searches_at ON recent_searches (searched_at DESC);
`
	if _, err := s.db.Exec(sqlStmt); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}
