// ABOUTME: In-process Conn implementation for tests and local development.
// ABOUTME: Delivers published messages synchronously to exact-subject subscribers.

package bus

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrConnClosed is returned by operations on a closed MemoryConn.
var ErrConnClosed = errors.New("bus connection closed")

// ErrNoResponder is returned by MemoryConn.Request when no handler is
// registered for the subject.
var ErrNoResponder = errors.New("no responder on subject")

// MemoryConn is an in-process Conn. It records every published message so
// tests can assert on bus traffic (or the absence of it).
type MemoryConn struct {
	mu         sync.Mutex
	subs       map[string][]*memorySubscription
	responders map[string]func(data []byte) []byte
	published  []*Message
	closed     bool
}

// NewMemoryConn creates an empty in-process bus connection.
func NewMemoryConn() *MemoryConn {
	return &MemoryConn{
		subs:       make(map[string][]*memorySubscription),
		responders: make(map[string]func(data []byte) []byte),
	}
}

func (c *MemoryConn) Publish(subject string, header map[string][]string, data []byte) error {
	msg := &Message{Subject: subject, Header: header, Data: data}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnClosed
	}
	c.published = append(c.published, msg)
	targets := make([]*memorySubscription, len(c.subs[subject]))
	copy(targets, c.subs[subject])
	c.mu.Unlock()

	for _, s := range targets {
		s.deliver(msg)
	}
	return nil
}

func (c *MemoryConn) Subscribe(subject string) (Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrConnClosed
	}

	s := &memorySubscription{
		conn:    c,
		subject: subject,
		msgs:    make(chan *Message, subscriptionBufferSize),
	}
	c.subs[subject] = append(c.subs[subject], s)
	return s, nil
}

func (c *MemoryConn) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error) {
	c.mu.Lock()
	fn, ok := c.responders[subject]
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, ErrConnClosed
	}
	if !ok {
		return nil, ErrNoResponder
	}
	return &Message{Subject: subject, Data: fn(data)}, nil
}

// Flush is a no-op: delivery is synchronous.
func (c *MemoryConn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	return nil
}

// Close ends all live subscriptions by closing their message channels.
func (c *MemoryConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, subs := range c.subs {
		for _, s := range subs {
			s.close()
		}
	}
	c.subs = make(map[string][]*memorySubscription)
}

// HandleRequest registers a responder for Request exchanges on a subject.
func (c *MemoryConn) HandleRequest(subject string, fn func(data []byte) []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responders[subject] = fn
}

// Published returns a snapshot of every message published so far.
func (c *MemoryConn) Published() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.published))
	copy(out, c.published)
	return out
}

// SubscriptionCount returns the number of live subscriptions, across all
// subjects. Tests use it to verify sessions do not leak subscriptions.
func (c *MemoryConn) SubscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, subs := range c.subs {
		n += len(subs)
	}
	return n
}

type memorySubscription struct {
	conn    *MemoryConn
	subject string
	msgs    chan *Message

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) Messages() <-chan *Message {
	return s.msgs
}

func (s *memorySubscription) Unsubscribe() error {
	c := s.conn
	c.mu.Lock()
	subs := c.subs[s.subject]
	for i, other := range subs {
		if other == s {
			c.subs[s.subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	s.close()
	return nil
}

func (s *memorySubscription) deliver(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.msgs <- msg:
	default:
		// Buffer full: drop rather than block the publisher.
	}
}

func (s *memorySubscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.msgs)
}
