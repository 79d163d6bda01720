// Package store persists projects, conversations, feasibility reports, and
// discovered features in SQLite. A single connection with WAL mode keeps
// writes serialized; all history passing through the store is bounded to the
// configured maximum before it reaches disk or the caller.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"prodassist/internal/logging"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed persistence layer.
type Store struct {
	db         *sql.DB
	mu         sync.RWMutex
	dbPath     string
	maxHistory int
}

// New initializes the SQLite database at the given path. maxHistory bounds
// conversation history on both save and load; non-positive means unbounded.
func New(path string, maxHistory int) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store open")
	defer timer.Stop()

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreError("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreError("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreError("failed to enable foreign_keys: %v", err)
	}

	s := &Store{db: db, dbPath: path, maxHistory: maxHistory}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("store ready at %s (max history %d)", path, maxHistory)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		repo_url TEXT NOT NULL DEFAULT '',
		repo_path TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		summary_overview TEXT NOT NULL DEFAULT '',
		summary_purpose TEXT NOT NULL DEFAULT '',
		tech_stack TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '',
		history TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_project ON conversations(project_id);

	CREATE TABLE IF NOT EXISTS feasibilities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		requirement TEXT NOT NULL,
		rating TEXT NOT NULL,
		approach TEXT NOT NULL DEFAULT '',
		risks TEXT NOT NULL DEFAULT '[]',
		questions TEXT NOT NULL DEFAULT '[]',
		estimate TEXT NOT NULL DEFAULT '{}',
		breakdown TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_feasibilities_conversation ON feasibilities(conversation_id);

	CREATE TABLE IF NOT EXISTS features (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		overview TEXT NOT NULL DEFAULT '',
		scope TEXT NOT NULL DEFAULT '',
		dependencies TEXT NOT NULL DEFAULT '[]',
		considerations TEXT NOT NULL DEFAULT '[]',
		limitations TEXT NOT NULL DEFAULT '[]',
		conversation_id TEXT NOT NULL DEFAULT '',
		discovered_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_features_project ON features(project_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// MaxHistory returns the configured history bound.
func (s *Store) MaxHistory() int {
	return s.maxHistory
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
