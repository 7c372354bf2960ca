// ABOUTME: Workspace resolution from inbound request headers via the lookup store.
// ABOUTME: Fails closed with InvalidTenant; id header takes priority over name.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/gigamono-old/engine-router/internal/store"
)

// Recognized tenant headers on inbound requests.
const (
	WorkspaceIDHeader   = "workspace-id"
	WorkspaceNameHeader = "workspace-name"
)

// WorkspaceStore is the slice of the store the resolver needs.
type WorkspaceStore interface {
	GetWorkspace(ctx context.Context, id string) (*store.Workspace, error)
	GetWorkspaceByName(ctx context.Context, name string) (*store.Workspace, error)
}

// resolveWorkspace resolves the canonical workspace id for a request. The id
// header wins over the name header; exactly one store query is issued. A
// request is never routed to the bus without an id confirmed to exist and not
// be soft-deleted.
func resolveWorkspace(ctx context.Context, ws WorkspaceStore, header http.Header) (string, error) {
	if id := header.Get(WorkspaceIDHeader); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return "", invalidTenant(fmt.Errorf("parsing workspace id %q: %w", id, err))
		}
		if _, err := ws.GetWorkspace(ctx, id); err != nil {
			return "", invalidTenant(fmt.Errorf("looking up workspace by id: %w", err))
		}
		return id, nil
	}

	if name := header.Get(WorkspaceNameHeader); name != "" {
		row, err := ws.GetWorkspaceByName(ctx, name)
		if err != nil {
			return "", invalidTenant(fmt.Errorf("looking up workspace by name: %w", err))
		}
		return row.ID, nil
	}

	return "", invalidTenant(errors.New("missing workspace-id and workspace-name headers"))
}
