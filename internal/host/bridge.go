package host

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/clock"
	"github.com/spec-kit/ticket-dashboard/internal/events"
)

// DefaultContextTimeout is how long a mounted bridge waits for the first
// snapshot before checking whether it runs outside the host.
const DefaultContextTimeout = 3 * time.Second

// State is the bridge's connection state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateConnected     State = "connected"
	StateNotEmbedded   State = "not_embedded"
)

// Update is delivered to bridge subscribers on every transition and
// every new snapshot.
type Update struct {
	State   State
	Context *Context
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	Frame   FrameDetector
	Clock   clock.Clock
	Timeout time.Duration
	Logger  *zap.Logger
}

// Bridge keeps the latest host snapshot for views and reports when the
// plugin is opened outside the host.
type Bridge struct {
	stream     Stream
	frame      FrameDetector
	clock      clock.Clock
	timeout    time.Duration
	logger     *zap.Logger
	dispatcher events.Dispatcher

	mu         sync.RWMutex
	state      State
	current    *Context
	mounted    bool
	generation uint64
	armSeq     uint64
	sub        Subscription
	timer      *clock.Timer
}

// NewBridge creates an unmounted bridge over stream.
func NewBridge(stream Stream, opts BridgeOptions) *Bridge {
	b := &Bridge{
		stream:     stream,
		frame:      opts.Frame,
		clock:      opts.Clock,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		dispatcher: events.NewInMemoryDispatcher(),
		state:      StateUninitialized,
	}
	if b.clock == nil {
		b.clock = clock.Real()
	}
	if b.timeout <= 0 {
		b.timeout = DefaultContextTimeout
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Mount subscribes to the stream and arms the not-embedded timer.
// Mounting an already mounted bridge is a no-op.
func (b *Bridge) Mount() {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.generation++
	gen := b.generation
	b.state = StateUninitialized
	b.current = nil
	b.armLocked()
	b.mu.Unlock()

	sub := b.stream.Subscribe(func(c Context) { b.onContext(gen, c) })

	b.mu.Lock()
	if b.generation != gen {
		b.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	b.sub = sub
	b.mu.Unlock()
}

// Unmount unsubscribes and cancels the pending timer. Late callbacks
// from the old subscription or timer are ignored.
func (b *Bridge) Unmount() {
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = false
	b.generation++
	timer, sub := b.timer, b.sub
	b.timer, b.sub = nil, nil
	b.mu.Unlock()

	timer.Stop()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Reload starts a new waiting period for a fresh plugin page load while
// no snapshot has arrived. A pending timeout is left alone. A bridge that
// already reported NotEmbedded goes back to waiting only when the frame
// detector now reports the page as nested.
func (b *Bridge) Reload() {
	nested := detectNested(b.frame)

	b.mu.Lock()
	if !b.mounted || b.current != nil || b.timer != nil {
		b.mu.Unlock()
		return
	}
	if b.state == StateNotEmbedded && !nested {
		b.mu.Unlock()
		return
	}
	changed := b.state != StateUninitialized
	b.state = StateUninitialized
	b.armLocked()
	b.mu.Unlock()

	if changed {
		b.logger.Info("plugin reloaded inside a frame; waiting for host context")
		b.publish(Update{State: StateUninitialized})
	}
}

// State returns the current connection state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Snapshot returns the latest host snapshot, if one has arrived.
func (b *Bridge) Snapshot() (Context, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return Context{}, false
	}
	return *b.current, true
}

// Subscribe calls fn on every update until the returned func is called.
func (b *Bridge) Subscribe(fn func(Update)) (unsubscribe func()) {
	return b.dispatcher.Subscribe(events.EventHostContext, func(_ context.Context, e events.Event) error {
		if u, ok := e.Payload.(Update); ok {
			fn(u)
		}
		return nil
	})
}

func (b *Bridge) onContext(gen uint64, c Context) {
	b.mu.Lock()
	if !b.mounted || b.generation != gen {
		b.mu.Unlock()
		return
	}
	b.current = &c
	b.state = StateConnected
	timer := b.timer
	b.timer = nil
	b.mu.Unlock()

	timer.Stop()
	b.logger.Debug("host context received", zap.String("type", string(c.Type)))
	b.publish(Update{State: StateConnected, Context: &c})
}

// armLocked schedules the not-embedded check for the current mount.
func (b *Bridge) armLocked() {
	b.armSeq++
	gen, seq := b.generation, b.armSeq
	b.timer = b.clock.AfterFunc(b.timeout, func() { b.onTimeout(gen, seq) })
}

func (b *Bridge) onTimeout(gen, seq uint64) {
	if !b.waitingFor(gen, seq) {
		return
	}

	nested := detectNested(b.frame)

	b.mu.Lock()
	if !b.waitingLocked(gen, seq) {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	if nested {
		b.mu.Unlock()
		b.logger.Info("no host context yet; assuming embedded and waiting", zap.Duration("timeout", b.timeout))
		return
	}
	b.state = StateNotEmbedded
	b.mu.Unlock()

	b.logger.Warn("no host context and not framed; plugin is not embedded", zap.Duration("timeout", b.timeout))
	b.publish(Update{State: StateNotEmbedded})
}

func (b *Bridge) waitingFor(gen, seq uint64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.waitingLocked(gen, seq)
}

func (b *Bridge) waitingLocked(gen, seq uint64) bool {
	return b.mounted && b.generation == gen && b.armSeq == seq && b.state == StateUninitialized
}

func (b *Bridge) publish(u Update) {
	_ = b.dispatcher.Publish(context.Background(), events.Event{Type: events.EventHostContext, Payload: u})
}
