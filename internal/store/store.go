// ABOUTME: Store interface and workspace data types for engine-router persistence.
// ABOUTME: Defines the Workspace struct and the single lookup surface the gateway needs.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested workspace does not exist or has
// been soft-deleted.
var ErrNotFound = errors.New("not found")

// ErrDuplicateWorkspace is returned when creating a workspace whose name is
// already taken.
var ErrDuplicateWorkspace = errors.New("workspace already exists")

// Workspace is an isolated customer namespace. The gateway only ever reads
// workspaces; creation and mutation belong to the administrative path.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Store defines the persistence interface for workspaces.
type Store interface {
	// CreateWorkspace inserts a workspace. Used by the administrative path and
	// by tests to seed lookups.
	CreateWorkspace(ctx context.Context, ws *Workspace) error

	// GetWorkspace returns the workspace with the given id, excluding
	// soft-deleted rows. Returns ErrNotFound if no live row matches.
	GetWorkspace(ctx context.Context, id string) (*Workspace, error)

	// GetWorkspaceByName returns the first live workspace with the exact given
	// name. Returns ErrNotFound if no live row matches.
	GetWorkspaceByName(ctx context.Context, name string) (*Workspace, error)

	// DeleteWorkspace soft-deletes the workspace with the given id.
	DeleteWorkspace(ctx context.Context, id string) error

	Close() error
}
