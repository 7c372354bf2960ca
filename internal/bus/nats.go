// ABOUTME: NATS implementation of the bus Conn interface using nats-io/nats.go.
// ABOUTME: Wraps connect, publish with headers, channel subscriptions, and request/reply.

package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// subscriptionBufferSize is the per-subscription channel buffer. Directive
// channels carry a handful of small control messages; response-body channels
// may carry many chunks, so the buffer leaves headroom before the reader
// drains them.
const subscriptionBufferSize = 64

// NATSConn implements Conn over a NATS connection. A single NATSConn is
// shared by all sessions; nats.Conn is safe for concurrent use.
type NATSConn struct {
	nc             *nats.Conn
	requestTimeout time.Duration
	logger         *slog.Logger
}

// Connect dials the NATS server at the given URL. requestTimeout bounds the
// dial and every flush. Reconnection is handled by the client; connection
// state changes are logged, not surfaced to sessions.
func Connect(url string, requestTimeout time.Duration, logger *slog.Logger) (*NATSConn, error) {
	log := logger.With("component", "bus")

	nc, err := nats.Connect(url,
		nats.Name("engine-router"),
		nats.Timeout(requestTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("bus disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("bus reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to bus at %s: %w", url, err)
	}

	log.Info("bus connected", "url", nc.ConnectedUrl())
	return &NATSConn{nc: nc, requestTimeout: requestTimeout, logger: log}, nil
}

func (c *NATSConn) Publish(subject string, header map[string][]string, data []byte) error {
	msg := &nats.Msg{
		Subject: subject,
		Header:  nats.Header(header),
		Data:    data,
	}
	if err := c.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

func (c *NATSConn) Subscribe(subject string) (Subscription, error) {
	raw := make(chan *nats.Msg, subscriptionBufferSize)
	sub, err := c.nc.ChanSubscribe(subject, raw)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}

	s := &natsSubscription{
		sub:  sub,
		msgs: make(chan *Message, subscriptionBufferSize),
		done: make(chan struct{}),
	}
	go s.pump(raw)
	return s, nil
}

func (c *NATSConn) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := c.nc.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", subject, err)
	}
	return &Message{Subject: msg.Subject, Header: msg.Header, Data: msg.Data}, nil
}

func (c *NATSConn) Flush() error {
	if err := c.nc.FlushTimeout(c.requestTimeout); err != nil {
		return fmt.Errorf("flushing bus connection: %w", err)
	}
	return nil
}

func (c *NATSConn) Close() {
	c.nc.Close()
}

// natsSubscription adapts a NATS channel subscription to the Subscription
// interface. The messages channel is closed only by the pump goroutine, so
// Unsubscribe never races a send on a closed channel.
type natsSubscription struct {
	sub  *nats.Subscription
	msgs chan *Message
	done chan struct{}
	once sync.Once
}

func (s *natsSubscription) Messages() <-chan *Message {
	return s.msgs
}

func (s *natsSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		err = s.sub.Unsubscribe()
		close(s.done)
	})
	return err
}

func (s *natsSubscription) pump(raw <-chan *nats.Msg) {
	defer close(s.msgs)
	for {
		select {
		case m, ok := <-raw:
			if !ok {
				return
			}
			msg := &Message{Subject: m.Subject, Header: m.Header, Data: m.Data}
			select {
			case s.msgs <- msg:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}
