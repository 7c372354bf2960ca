// ABOUTME: Gateway server owning the listener, shared handles, and lifecycle.
// ABOUTME: Runs the HTTP surface and optional metrics server with graceful shutdown.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gigamono-old/engine-router/internal/bus"
	"github.com/gigamono-old/engine-router/internal/config"
	"github.com/gigamono-old/engine-router/internal/store"
)

// Gateway bridges inbound HTTP requests to the backend over the bus. The
// config, store, and bus handles are shared read-only across all connection
// goroutines.
type Gateway struct {
	config  *config.Config
	store   store.Store
	bus     bus.Conn
	logger  *slog.Logger
	metrics *metrics

	httpServer    *http.Server
	metricsServer *http.Server
}

// New creates a Gateway with the given shared handles.
func New(cfg *config.Config, st store.Store, conn bus.Conn, logger *slog.Logger) *Gateway {
	g := &Gateway{
		config:  cfg,
		store:   st,
		bus:     conn,
		logger:  logger.With("component", "gateway"),
		metrics: newMetrics(),
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Metrics.Enabled {
		g.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           g.metrics.handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return g
}

// Run starts the gateway and blocks until the context is canceled or a
// listener fails. Startup failures are returned; steady-state per-request
// failures never surface here.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	errCh := g.startServers(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServers starts the HTTP and optional metrics servers in goroutines,
// returning an error channel.
func (g *Gateway) startServers(ln net.Listener) chan error {
	errCh := make(chan error, 2)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	if g.metricsServer != nil {
		go func() {
			g.logger.Info("metrics server listening", "addr", g.metricsServer.Addr)
			if err := g.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout. Uses
// context.Background() intentionally since the original context is already
// canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the gateway servers.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if g.metricsServer != nil {
		if err := g.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// writeError records the failure metric and writes the JSON error body.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var herr *HandlerError
	if errors.As(err, &herr) {
		status = herr.Status
	}
	g.metrics.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	writeHandlerError(w, g.logger, err)
}
