// ABOUTME: Request routing and panic barrier for the gateway's HTTP surface.
// ABOUTME: Routes /r/ and numeric-leading paths to the bridge; everything else is 404.

package gateway

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// runPathPrefix is the reserved execution prefix for bridged requests.
const runPathPrefix = "/r/"

// handler returns the root HTTP handler: panic barrier, then routing. The
// net/http server runs one goroutine per connection, so a fault in one
// request can never take down the listener or sibling connections.
func (g *Gateway) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer g.recoverPanic(w, r)
		g.route(w, r)
	})
}

// route dispatches by path. Paths under the execution prefix and paths whose
// leading segment is purely numeric reach the bridge handler; all other paths
// fail with NotFound.
func (g *Gateway) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if strings.HasPrefix(path, runPathPrefix) || hasNumericLeadingSegment(path) {
		g.handleRunSurl(w, r)
		return
	}

	g.writeError(w, notFound(path))
}

// hasNumericLeadingSegment reports whether the first path segment is a plain
// number, like "/2/system/load/index.css".
func hasNumericLeadingSegment(path string) bool {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if seg == "" {
		return false
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}

// recoverPanic is the last-resort fault boundary: it converts an uncaught
// handler panic into a well-formed 500 response and a log entry instead of
// letting it terminate the connection goroutine.
func (g *Gateway) recoverPanic(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}

	g.logger.Error("handler panic",
		"path", r.URL.Path,
		"method", r.Method,
		"panic", rec,
	)
	g.writeError(w, internalError("handling request", fmt.Errorf("handler panic: %v", rec)))
}
