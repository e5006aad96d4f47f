package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed session repository.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS Session (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  venue_name TEXT NOT NULL DEFAULT '',
  venue_capacity INTEGER NOT NULL DEFAULT 0,
  stage_volume TEXT NOT NULL DEFAULT 'none',
  console_name TEXT NOT NULL DEFAULT '',
  pa_system_name TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  analysis TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS SessionCreatedAt ON Session(created_at);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}
