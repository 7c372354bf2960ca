// ABOUTME: Tests for workspace resolution from request headers.
// ABOUTME: Covers id priority, name fallback, malformed ids, and fail-closed behavior.

package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamono-old/engine-router/internal/store"
)

// mockWorkspaceStore is a simple in-memory mock counting queries.
type mockWorkspaceStore struct {
	byID    map[string]*store.Workspace
	byName  map[string]*store.Workspace
	queries int
}

func newMockWorkspaceStore() *mockWorkspaceStore {
	return &mockWorkspaceStore{
		byID:   make(map[string]*store.Workspace),
		byName: make(map[string]*store.Workspace),
	}
}

func (m *mockWorkspaceStore) add(id, name string) {
	ws := &store.Workspace{ID: id, Name: name}
	m.byID[id] = ws
	m.byName[name] = ws
}

func (m *mockWorkspaceStore) GetWorkspace(_ context.Context, id string) (*store.Workspace, error) {
	m.queries++
	if ws, ok := m.byID[id]; ok {
		return ws, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockWorkspaceStore) GetWorkspaceByName(_ context.Context, name string) (*store.Workspace, error) {
	m.queries++
	if ws, ok := m.byName[name]; ok {
		return ws, nil
	}
	return nil, store.ErrNotFound
}

func requireInvalidTenant(t *testing.T, err error) {
	t.Helper()
	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, CodeInvalidTenant, herr.Code)
	assert.Equal(t, http.StatusBadRequest, herr.Status)
}

func TestResolveWorkspaceMissingHeaders(t *testing.T) {
	ws := newMockWorkspaceStore()

	_, err := resolveWorkspace(context.Background(), ws, http.Header{})
	requireInvalidTenant(t, err)
	assert.Zero(t, ws.queries, "no store query without tenant headers")
}

func TestResolveWorkspaceMalformedID(t *testing.T) {
	ws := newMockWorkspaceStore()
	header := http.Header{}
	header.Set(WorkspaceIDHeader, "not-a-uuid")

	_, err := resolveWorkspace(context.Background(), ws, header)
	requireInvalidTenant(t, err)
	assert.Zero(t, ws.queries, "malformed id fails before any store query")
}

func TestResolveWorkspaceUnknownID(t *testing.T) {
	ws := newMockWorkspaceStore()
	header := http.Header{}
	header.Set(WorkspaceIDHeader, uuid.New().String())

	_, err := resolveWorkspace(context.Background(), ws, header)
	requireInvalidTenant(t, err)
	assert.Equal(t, 1, ws.queries)
}

func TestResolveWorkspaceByID(t *testing.T) {
	id := uuid.New().String()
	ws := newMockWorkspaceStore()
	ws.add(id, "acme")

	header := http.Header{}
	header.Set(WorkspaceIDHeader, id)

	got, err := resolveWorkspace(context.Background(), ws, header)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, 1, ws.queries)
}

func TestResolveWorkspaceByName(t *testing.T) {
	id := uuid.New().String()
	ws := newMockWorkspaceStore()
	ws.add(id, "acme")

	header := http.Header{}
	header.Set(WorkspaceNameHeader, "acme")

	got, err := resolveWorkspace(context.Background(), ws, header)
	require.NoError(t, err)
	assert.Equal(t, id, got, "name resolution returns the canonical id, not the name")
}

func TestResolveWorkspaceUnknownName(t *testing.T) {
	ws := newMockWorkspaceStore()
	header := http.Header{}
	header.Set(WorkspaceNameHeader, "ghost")

	_, err := resolveWorkspace(context.Background(), ws, header)
	requireInvalidTenant(t, err)
}

func TestResolveWorkspaceIDWinsOverName(t *testing.T) {
	id := uuid.New().String()
	other := uuid.New().String()
	ws := newMockWorkspaceStore()
	ws.add(id, "acme")
	ws.add(other, "beta")

	header := http.Header{}
	header.Set(WorkspaceIDHeader, id)
	header.Set(WorkspaceNameHeader, "beta")

	got, err := resolveWorkspace(context.Background(), ws, header)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, 1, ws.queries, "only one store query when both headers are present")
}
