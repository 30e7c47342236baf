package host

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-dashboard/internal/events"
)

// Subscription is a live registration on a Stream.
type Subscription interface {
	Unsubscribe()
}

// Stream delivers host snapshots to subscribers.
type Stream interface {
	Subscribe(handler func(Context)) Subscription
}

// Publisher accepts snapshots from the host.
type Publisher interface {
	Publish(ctx context.Context, c Context) error
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }

// MemoryStream is an in-process Stream. New subscribers receive the
// latest snapshot immediately, as the host SDK does.
type MemoryStream struct {
	dispatcher events.Dispatcher

	mu     sync.RWMutex
	latest *Context
}

// NewMemoryStream creates an empty stream.
func NewMemoryStream() *MemoryStream {
	return &MemoryStream{dispatcher: events.NewInMemoryDispatcher()}
}

func (s *MemoryStream) Publish(ctx context.Context, c Context) error {
	s.mu.Lock()
	s.latest = &c
	s.mu.Unlock()
	return s.dispatcher.Publish(ctx, events.Event{Type: events.EventHostContext, Payload: c})
}

func (s *MemoryStream) Subscribe(handler func(Context)) Subscription {
	unsubscribe := s.dispatcher.Subscribe(events.EventHostContext, func(_ context.Context, e events.Event) error {
		if c, ok := e.Payload.(Context); ok {
			handler(c)
		}
		return nil
	})

	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		handler(*latest)
	}
	return subscriptionFunc(unsubscribe)
}

var (
	_ Stream    = (*MemoryStream)(nil)
	_ Publisher = (*MemoryStream)(nil)
)
