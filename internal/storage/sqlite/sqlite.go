// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot inserts or replaces the snapshot of a session.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, sessionID string, snap models.Snapshot) error {
	data, err := models.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, schema_version, step, people_count, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     schema_version = excluded.schema_version,
		     step = excluded.step,
		     people_count = excluded.people_count,
		     data = excluded.data,
		     updated_at = excluded.updated_at`,
		sessionID, models.SnapshotSchemaVersion, string(snap.Step), len(snap.People), string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves and decodes the snapshot of a session.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap, err := models.DecodeSnapshot([]byte(data))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return snap, nil
}

// DeleteSnapshot removes a session by ID.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	return nil
}

// ListSessions returns every stored session, most recently updated first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]storage.SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, step, people_count, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []storage.SessionInfo
	for rows.Next() {
		var info storage.SessionInfo
		var step string
		if err := rows.Scan(&info.ID, &step, &info.PeopleCount, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.Step = models.Step(step)
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}
