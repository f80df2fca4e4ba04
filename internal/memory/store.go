// Package memory provides the episodic memory collaborator: an
// SQLite-backed store with full-text recall and a background
// consolidation loop. The swarm uses it only to inject context; it is
// never required for correctness.
package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	episode_type TEXT NOT NULL DEFAULT 'interaction',
	session_id TEXT,
	agent_id TEXT,
	importance REAL NOT NULL DEFAULT 0.5,
	access_count INTEGER NOT NULL DEFAULT 0,
	consolidated INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE VIRTUAL TABLE IF NOT EXISTS episodes_fts USING fts5(
	content,
	content='episodes',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS episodes_ai AFTER INSERT ON episodes BEGIN
	INSERT INTO episodes_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS episodes_ad AFTER DELETE ON episodes BEGIN
	INSERT INTO episodes_fts(episodes_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS episodes_au AFTER UPDATE OF content ON episodes BEGIN
	INSERT INTO episodes_fts(episodes_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
	INSERT INTO episodes_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TABLE IF NOT EXISTS facts (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	source_episode TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Manager is the episodic memory store. All methods are safe for
// concurrent use.
type Manager struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// DefaultPath returns the XDG data path for the memory database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "nexus", "memory.db")
}

// Open opens (creating if needed) the memory database at path.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Manager, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply memory schema: %w", err)
	}

	return &Manager{db: db, path: path}, nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Close()
}

// Path returns the database file path.
func (m *Manager) Path() string {
	return m.path
}

// Stats returns the number of stored episodes and consolidated facts.
func (m *Manager) Stats() (episodes, facts int, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err = m.db.QueryRow("SELECT COUNT(*) FROM episodes").Scan(&episodes); err != nil {
		return 0, 0, fmt.Errorf("count episodes: %w", err)
	}
	if err = m.db.QueryRow("SELECT COUNT(*) FROM facts").Scan(&facts); err != nil {
		return 0, 0, fmt.Errorf("count facts: %w", err)
	}
	return episodes, facts, nil
}
