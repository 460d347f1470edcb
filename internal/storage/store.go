// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/fairshare/internal/models"
)

// SessionInfo summarizes a stored session without decoding its snapshot.
type SessionInfo struct {
	ID          string      `json:"id"`
	Step        models.Step `json:"step"`
	PeopleCount int         `json:"peopleCount"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
}

// Store defines the interface for session snapshot storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// SaveSnapshot inserts or replaces the snapshot of a session.
	SaveSnapshot(ctx context.Context, sessionID string, snap models.Snapshot) error

	// LoadSnapshot retrieves the snapshot of a session.
	// Returns an error wrapping models.ErrSessionNotFound if it does not exist.
	LoadSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error)

	// DeleteSnapshot removes a session.
	// Returns an error wrapping models.ErrSessionNotFound if it does not exist.
	DeleteSnapshot(ctx context.Context, sessionID string) error

	// ListSessions returns every stored session, most recently updated first.
	ListSessions(ctx context.Context) ([]SessionInfo, error)

	// Close releases any resources held by the store.
	Close() error
}
