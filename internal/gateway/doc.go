// Package gateway bridges inbound HTTP requests to the backend compute tier
// over the message bus.
//
// # Overview
//
// The gateway terminates HTTP/1.x client connections and makes a bus-mediated
// round trip look like an ordinary request/response. Each request is resolved
// to a workspace, published to the workspace's subject on the bus, and
// answered by negotiating backend directives on a per-session control channel.
//
// # Request flow
//
//  1. router.go routes the request: paths under /r/ and numeric-leading paths
//     reach the bridge handler, everything else is a 404. Every handler runs
//     inside a panic barrier that converts faults into 500 responses.
//  2. resolver.go resolves the workspace id from the workspace-id or
//     workspace-name header via a single store lookup.
//  3. runsurl.go snapshots the request into an envelope, generates the
//     session addressing triple, and starts a session.
//  4. session.go publishes the envelope and runs the directive loop:
//     need-request-body hands the buffered body to the backend (at most
//     once); sending-response-body switches to draining the response-body
//     channel until the empty sentinel message, then decodes the response
//     envelope.
//
// # Error surface
//
// Handlers fail with typed HandlerError values carrying an HTTP status and a
// machine-readable code (InvalidTenant, NotFound, InternalError,
// GatewayTimeout). Response bodies are small JSON payloads; internal causes
// are logged, never leaked.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw := gateway.New(cfg, store, conn, logger)
//	err := gw.Run(ctx)
//
// Run blocks until the context is canceled or the listener fails, then shuts
// down gracefully.
package gateway
