// ABOUTME: Bridge handler turning one HTTP request into one bus session.
// ABOUTME: Resolves the workspace, snapshots the request, and runs the streaming session.

package gateway

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gigamono-old/engine-router/internal/bus"
	"github.com/gigamono-old/engine-router/internal/envelope"
)

// handleRunSurl bridges the request to the backend over the bus and writes
// the assembled response.
func (g *Gateway) handleRunSurl(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	g.metrics.sessionsInFlight.Inc()
	defer func() {
		g.metrics.sessionsInFlight.Dec()
		g.metrics.sessionDuration.Observe(time.Since(start).Seconds())
	}()

	resp, err := g.runSession(r)
	if err != nil {
		g.writeError(w, err)
		return
	}

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		g.logger.Debug("writing response body", "error", err)
	}
	g.metrics.requestsTotal.WithLabelValues(strconv.Itoa(resp.Status)).Inc()
}

// runSession resolves the workspace, builds the session addressing triple,
// and negotiates the response. The workspace lookup always completes before
// any bus operation begins.
func (g *Gateway) runSession(r *http.Request) (*envelope.Response, error) {
	workspaceID, err := resolveWorkspace(r.Context(), g.store, r.Header)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("resolved workspace", "workspace_id", workspaceID)

	subject, err := bus.WorkspaceSubject(workspaceID, bus.ActionRunSurl)
	if err != nil {
		return nil, internalError("building workspace subject", err)
	}

	subjects, err := bus.NewSessionSubjects(workspaceID, bus.ActionRunSurl)
	if err != nil {
		return nil, internalError("building session subjects", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, internalError("reading request body", err)
	}

	req := &envelope.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
		Body:   body,
	}

	sess := newSession(g.bus, subjects, req, g.config.NATS.SessionTimeout, g.logger)
	return sess.run(r.Context(), subject, sessionHeaders(workspaceID, r.URL.Path, subjects))
}
