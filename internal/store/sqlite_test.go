// ABOUTME: Tests for the SQLite workspace store.
// ABOUTME: Covers creation, lookup by id and name, soft deletes, and duplicates.

package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetWorkspace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := &Workspace{ID: uuid.New().String(), Name: "acme"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))

	got, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, got.ID)
	assert.Equal(t, "acme", got.Name)
	assert.Nil(t, got.DeletedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetWorkspaceNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetWorkspace(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWorkspaceByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := &Workspace{ID: uuid.New().String(), Name: "acme"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))

	got, err := s.GetWorkspaceByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, got.ID)

	// Exact match only.
	_, err = s.GetWorkspaceByName(ctx, "acm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteExcludesWorkspace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := &Workspace{ID: uuid.New().String(), Name: "doomed"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))
	require.NoError(t, s.DeleteWorkspace(ctx, ws.ID))

	_, err := s.GetWorkspace(ctx, ws.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetWorkspaceByName(ctx, "doomed")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice reports not found.
	assert.ErrorIs(t, s.DeleteWorkspace(ctx, ws.ID), ErrNotFound)
}

func TestCreateDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateWorkspace(ctx, &Workspace{ID: uuid.New().String(), Name: "acme"}))
	err := s.CreateWorkspace(ctx, &Workspace{ID: uuid.New().String(), Name: "acme"})
	assert.ErrorIs(t, err, ErrDuplicateWorkspace)
}
