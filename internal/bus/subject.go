// ABOUTME: Subject naming scheme scoping bus messages to a workspace and action.
// ABOUTME: Builds the per-session addressing triple from fresh NUID tokens.

package bus

import (
	"errors"

	"github.com/nats-io/nuid"
)

// ActionRunSurl is the action segment for bridged request execution.
const ActionRunSurl = "run_surl"

var (
	// ErrEmptyWorkspace is returned when a subject is requested for an empty
	// workspace id.
	ErrEmptyWorkspace = errors.New("workspace id is empty")

	// ErrEmptyAction is returned when a subject is requested for an empty action.
	ErrEmptyAction = errors.New("action is empty")
)

// WorkspaceSubject returns the bus subject for an action scoped to a
// workspace: "{workspaceID}.{action}". Pure and deterministic; distinct
// (workspace, action) pairs never collide because neither segment may contain
// a dot (workspace ids are UUIDs, actions are fixed tokens).
func WorkspaceSubject(workspaceID, action string) (string, error) {
	if workspaceID == "" {
		return "", ErrEmptyWorkspace
	}
	if action == "" {
		return "", ErrEmptyAction
	}
	return workspaceID + "." + action, nil
}

// SessionSubjects is the addressing triple generated once per session. Each
// address embeds a fresh NUID token so concurrent sessions in the same
// workspace namespace never cross-talk.
type SessionSubjects struct {
	Directives   string
	RequestBody  string
	ResponseBody string
}

// NewSessionSubjects builds a fresh addressing triple under the workspace
// subject namespace.
func NewSessionSubjects(workspaceID, action string) (SessionSubjects, error) {
	base, err := WorkspaceSubject(workspaceID, action)
	if err != nil {
		return SessionSubjects{}, err
	}
	return SessionSubjects{
		Directives:   base + ".directives." + nuid.Next(),
		RequestBody:  base + ".request-body." + nuid.Next(),
		ResponseBody: base + ".response-body." + nuid.Next(),
	}, nil
}
