package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore persists the run identifier in a SQLite meta table.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// Open opens (and creates if needed) a SQLite run store at path.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create meta table: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadRunID returns the stored run id, or "" if none was stored.
func (s *SQLiteStore) LoadRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, RunIDKey).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select run id: %w", err)
	}
	return runID, nil
}

// SaveRunID replaces the stored run id.
func (s *SQLiteStore) SaveRunID(ctx context.Context, runID string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		RunIDKey, runID)
	if err != nil {
		return fmt.Errorf("upsert run id: %w", err)
	}
	return nil
}
