// ABOUTME: Streaming session state machine bridging one HTTP request over the bus.
// ABOUTME: Publishes the request envelope and negotiates backend directives to a response.

package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigamono-old/engine-router/internal/bus"
	"github.com/gigamono-old/engine-router/internal/envelope"
)

// Bus message header keys exchanged with the backend.
const (
	// Control headers attached to the published request envelope.
	HeaderWorkspaceID         = "workspace-id"
	HeaderURLPath             = "url-path"
	HeaderDirectivesSubject   = "directives-subject"
	HeaderRequestBodySubject  = "request-body-subject"
	HeaderResponseBodySubject = "response-body-subject"

	// Backend-issued directive signals.
	HeaderNeedRequestBody     = "need-request-body"
	HeaderSendingResponseBody = "sending-response-body"
)

// sessionState enumerates the lifecycle of one bridged request.
type sessionState int

const (
	stateInit sessionState = iota
	statePublishing
	stateAwaitingDirective
	stateStreamingRequestBody
	stateReceivingResponseBody
	stateCompleted
	stateFailed
)

// session owns the lifecycle of one in-flight request. It is a value owned by
// exactly one connection goroutine and holds no cross-session state.
type session struct {
	conn     bus.Conn
	subjects bus.SessionSubjects
	request  *envelope.Request
	timeout  time.Duration
	logger   *slog.Logger

	state sessionState

	// bodySent marks the need-request-body directive as actioned. The body is
	// published at most once per session; duplicates are ignored.
	bodySent bool
}

func newSession(conn bus.Conn, subjects bus.SessionSubjects, req *envelope.Request, timeout time.Duration, logger *slog.Logger) *session {
	return &session{
		conn:     conn,
		subjects: subjects,
		request:  req,
		timeout:  timeout,
		logger:   logger.With("component", "session"),
	}
}

// run publishes the request envelope to the workspace subject and negotiates
// directives until a terminal directive, channel close, or the session
// deadline. All subscriptions end before run returns.
func (s *session) run(ctx context.Context, subject string, header map[string][]string) (*envelope.Response, error) {
	payload, err := envelope.EncodeRequest(s.request)
	if err != nil {
		return s.fail(internalError("encoding request envelope", err))
	}

	directives, err := s.conn.Subscribe(s.subjects.Directives)
	if err != nil {
		return s.fail(internalError("subscribing to directives subject", err))
	}
	defer directives.Unsubscribe()

	responseBody, err := s.conn.Subscribe(s.subjects.ResponseBody)
	if err != nil {
		return s.fail(internalError("subscribing to response body subject", err))
	}
	defer responseBody.Unsubscribe()

	// The subscriptions must be established on the server before the envelope
	// goes out, or the backend can issue a directive before anyone is
	// listening. This ordering is a correctness invariant.
	if err := s.conn.Flush(); err != nil {
		return s.fail(internalError("flushing subscriptions", err))
	}

	s.state = statePublishing
	if err := s.conn.Publish(subject, header, payload); err != nil {
		return s.fail(internalError("publishing request envelope", err))
	}

	s.logger.Debug("request envelope published",
		"subject", subject,
		"directives_subject", s.subjects.Directives,
	)

	s.state = stateAwaitingDirective
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()

	for {
		select {
		case msg, ok := <-directives.Messages():
			if !ok {
				return s.fail(internalError("awaiting directive",
					errors.New("directives channel closed before a terminal directive")))
			}
			switch {
			case msg.HasHeader(HeaderSendingResponseBody):
				s.state = stateReceivingResponseBody
				return s.receiveResponseBody(directives, responseBody, deadline)
			case msg.HasHeader(HeaderNeedRequestBody):
				if err := s.streamRequestBody(); err != nil {
					return s.fail(err)
				}
			default:
				s.logger.Debug("ignoring unknown directive", "header", msg.Header)
			}
		case <-deadline.C:
			return s.fail(gatewayTimeout())
		case <-ctx.Done():
			return s.fail(internalError("awaiting directive", ctx.Err()))
		}
	}
}

// streamRequestBody hands the buffered request body to the backend on the
// request-body subject. Actioned at most once; a duplicate directive is a
// no-op.
func (s *session) streamRequestBody() *HandlerError {
	if s.bodySent {
		s.logger.Debug("duplicate need-request-body directive ignored")
		return nil
	}

	s.state = stateStreamingRequestBody
	if err := s.conn.Publish(s.subjects.RequestBody, nil, s.request.Body); err != nil {
		return internalError("publishing request body", err)
	}
	s.bodySent = true
	s.state = stateAwaitingDirective

	s.logger.Debug("request body streamed", "subject", s.subjects.RequestBody)
	return nil
}

// receiveResponseBody drains the response-body channel, accumulating chunk
// payloads until an empty sentinel message marks the end of the stream, then
// decodes the accumulated bytes as a response envelope. A need-request-body
// directive arriving after response streaming has begun is a protocol
// violation and fails the session.
func (s *session) receiveResponseBody(directives, responseBody bus.Subscription, deadline *time.Timer) (*envelope.Response, error) {
	var buf bytes.Buffer

	for {
		select {
		case msg, ok := <-responseBody.Messages():
			if !ok {
				return s.fail(internalError("receiving response body",
					errors.New("response body channel closed mid-stream")))
			}
			if len(msg.Data) == 0 {
				resp, err := envelope.DecodeResponse(buf.Bytes())
				if err != nil {
					return s.fail(internalError("decoding response envelope", err))
				}
				s.state = stateCompleted
				return resp, nil
			}
			buf.Write(msg.Data)
		case msg, ok := <-directives.Messages():
			if !ok {
				return s.fail(internalError("receiving response body",
					errors.New("directives channel closed mid-stream")))
			}
			if msg.HasHeader(HeaderNeedRequestBody) {
				return s.fail(internalError("receiving response body",
					errors.New("need-request-body directive after response streaming began")))
			}
			// Duplicate sending-response-body directives are idempotent.
		case <-deadline.C:
			return s.fail(gatewayTimeout())
		}
	}
}

func (s *session) fail(err *HandlerError) (*envelope.Response, error) {
	s.state = stateFailed
	return nil, err
}

// sessionHeaders builds the control headers attached to the published request
// envelope: workspace id, URL path, and the session addressing triple.
func sessionHeaders(workspaceID, urlPath string, subjects bus.SessionSubjects) map[string][]string {
	return map[string][]string{
		HeaderWorkspaceID:         {workspaceID},
		HeaderURLPath:             {urlPath},
		HeaderDirectivesSubject:   {subjects.Directives},
		HeaderRequestBodySubject:  {subjects.RequestBody},
		HeaderResponseBodySubject: {subjects.ResponseBody},
	}
}

// String implements fmt.Stringer for logging.
func (st sessionState) String() string {
	switch st {
	case stateInit:
		return "init"
	case statePublishing:
		return "publishing"
	case stateAwaitingDirective:
		return "awaiting-directive"
	case stateStreamingRequestBody:
		return "streaming-request-body"
	case stateReceivingResponseBody:
		return "receiving-response-body"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("sessionState(%d)", int(st))
	}
}
