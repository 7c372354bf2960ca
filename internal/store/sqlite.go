// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite.
// ABOUTME: Provides workspace lookup with automatic schema creation and soft deletes.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite store at the given path, creating parent
// directories and the schema as needed. Pass ":memory:" for an in-memory
// store.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	log := logger.With("component", "store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// All reads go through one connection. The pool's serialization around it
	// is the scoped lock on the shared handle: held per query, never across a
	// bus operation.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Info("SQLite store initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS workspaces (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_workspaces_name_live
			ON workspaces(name) WHERE deleted_at IS NULL;
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) CreateWorkspace(ctx context.Context, ws *Workspace) error {
	now := time.Now().UTC()
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = now
	}
	ws.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, NULL)`,
		ws.ID, ws.Name, ws.CreatedAt, ws.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateWorkspace
		}
		return fmt.Errorf("inserting workspace: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at, deleted_at
		 FROM workspaces WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	return scanWorkspace(row)
}

func (s *SQLiteStore) GetWorkspaceByName(ctx context.Context, name string) (*Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at, deleted_at
		 FROM workspaces WHERE name = ? AND deleted_at IS NULL LIMIT 1`,
		name,
	)
	return scanWorkspace(row)
}

func (s *SQLiteStore) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workspaces SET deleted_at = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanWorkspace(row *sql.Row) (*Workspace, error) {
	var ws Workspace
	var deletedAt sql.NullTime
	err := row.Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}
	if deletedAt.Valid {
		ws.DeletedAt = &deletedAt.Time
	}
	return &ws, nil
}
