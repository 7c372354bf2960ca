// ABOUTME: Bus connection interface consumed by the gateway for publish/subscribe.
// ABOUTME: Defines the transport-agnostic Message, Subscription, and Conn contracts.

package bus

import (
	"context"
	"time"
)

// Message is a single message received from the bus.
type Message struct {
	Subject string
	Header  map[string][]string
	Data    []byte
}

// HasHeader reports whether the message carries the given header key with a
// non-empty presence (directive signals are presence-only headers).
func (m *Message) HasHeader(key string) bool {
	if m.Header == nil {
		return false
	}
	_, ok := m.Header[key]
	return ok
}

// Subscription is a live subscription on one subject. Messages yields received
// messages in arrival order; the channel is closed when the subscription or
// the underlying connection ends.
type Subscription interface {
	Messages() <-chan *Message
	Unsubscribe() error
}

// Conn is the slice of the bus client the gateway consumes. Implementations
// must be safe for concurrent use by many sessions.
type Conn interface {
	// Publish sends one message. Headers may be nil.
	Publish(subject string, header map[string][]string, data []byte) error

	// Subscribe starts receiving messages on the given subject.
	Subscribe(subject string) (Subscription, error)

	// Request performs a single-shot request/reply exchange with a bounded wait.
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error)

	// Flush blocks until all pending operations (publishes, subscriptions) have
	// been processed by the server. Sessions use it to guarantee their
	// subscriptions are established before the request envelope is published.
	Flush() error

	// Close tears down the connection and ends all subscriptions.
	Close()
}
