package host

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dashboard/internal/clock"
)

type updateRecorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *updateRecorder) record(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *updateRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.updates))
	for _, u := range r.updates {
		out = append(out, u.State)
	}
	return out
}

func newTestBridge(t *testing.T, frame FrameDetector) (*Bridge, *MemoryStream, *clock.FakeClock, *updateRecorder) {
	t.Helper()
	stream := NewMemoryStream()
	fake := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewBridge(stream, BridgeOptions{Frame: frame, Clock: fake})
	rec := &updateRecorder{}
	t.Cleanup(b.Subscribe(rec.record))
	return b, stream, fake, rec
}

func notNested() FrameDetector {
	return FrameDetectorFunc(func() (bool, error) { return false, nil })
}

func TestBridgeNotEmbeddedAfterTimeout(t *testing.T) {
	b, _, fake, rec := newTestBridge(t, notNested())
	b.Mount()
	require.Equal(t, StateUninitialized, b.State())

	fake.Advance(DefaultContextTimeout - time.Millisecond)
	require.Equal(t, StateUninitialized, b.State())

	fake.Advance(time.Millisecond)
	require.Equal(t, StateNotEmbedded, b.State())

	fake.Advance(10 * DefaultContextTimeout)
	require.Equal(t, []State{StateNotEmbedded}, rec.states())
}

func TestBridgeSnapshotCancelsTimeout(t *testing.T) {
	b, stream, fake, rec := newTestBridge(t, notNested())
	b.Mount()

	teammate := &Teammate{Name: "Ada"}
	require.NoError(t, stream.Publish(context.Background(), NoConversation(teammate)))
	require.Equal(t, StateConnected, b.State())
	require.Zero(t, fake.Pending())

	fake.Advance(2 * DefaultContextTimeout)
	require.Equal(t, StateConnected, b.State())
	require.Equal(t, []State{StateConnected}, rec.states())

	snap, ok := b.Snapshot()
	require.True(t, ok)
	require.Equal(t, ContextNoConversation, snap.Type)
	require.Equal(t, "Ada", snap.Teammate.Name)
}

func TestBridgeReplaysLatestOnMount(t *testing.T) {
	b, stream, _, _ := newTestBridge(t, notNested())
	require.NoError(t, stream.Publish(context.Background(), SingleConversation(Conversation{Subject: "VPN"}, nil, nil)))

	b.Mount()
	require.Equal(t, StateConnected, b.State())
	snap, ok := b.Snapshot()
	require.True(t, ok)
	require.Equal(t, "VPN", snap.Subject())
}

func TestBridgeNestedKeepsWaiting(t *testing.T) {
	nested := FrameDetectorFunc(func() (bool, error) { return true, nil })
	b, stream, fake, rec := newTestBridge(t, nested)
	b.Mount()

	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateUninitialized, b.State())
	require.Empty(t, rec.states())

	require.NoError(t, stream.Publish(context.Background(), NoConversation(nil)))
	require.Equal(t, StateConnected, b.State())
}

func TestBridgeDetectorFailureCountsAsNested(t *testing.T) {
	cases := map[string]FrameDetector{
		"error": FrameDetectorFunc(func() (bool, error) { return false, errors.New("cross-origin") }),
		"panic": FrameDetectorFunc(func() (bool, error) { panic("blocked") }),
		"nil":   nil,
		"hint":  &FrameHint{},
	}
	for name, detector := range cases {
		t.Run(name, func(t *testing.T) {
			b, _, fake, _ := newTestBridge(t, detector)
			b.Mount()
			fake.Advance(DefaultContextTimeout)
			require.Equal(t, StateUninitialized, b.State())
		})
	}
}

func TestBridgeSnapshotAfterNotEmbedded(t *testing.T) {
	b, stream, fake, rec := newTestBridge(t, notNested())
	b.Mount()
	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateNotEmbedded, b.State())

	require.NoError(t, stream.Publish(context.Background(), NoConversation(nil)))
	require.Equal(t, StateConnected, b.State())
	require.Equal(t, []State{StateNotEmbedded, StateConnected}, rec.states())
}

func TestBridgeUnmount(t *testing.T) {
	b, stream, fake, rec := newTestBridge(t, notNested())
	b.Mount()
	require.Equal(t, 1, fake.Pending())

	b.Unmount()
	require.Zero(t, fake.Pending())

	fake.Advance(DefaultContextTimeout)
	require.NoError(t, stream.Publish(context.Background(), NoConversation(nil)))
	require.Equal(t, StateUninitialized, b.State())
	require.Empty(t, rec.states())
}

func TestBridgeRemountResetsState(t *testing.T) {
	b, stream, fake, _ := newTestBridge(t, notNested())
	b.Mount()
	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateNotEmbedded, b.State())
	b.Unmount()

	b.Mount()
	require.Equal(t, StateUninitialized, b.State())
	_, ok := b.Snapshot()
	require.False(t, ok)

	require.NoError(t, stream.Publish(context.Background(), NoConversation(nil)))
	require.Equal(t, StateConnected, b.State())
}

func TestBridgeCustomTimeout(t *testing.T) {
	stream := NewMemoryStream()
	fake := clock.Fake(time.Unix(0, 0))
	b := NewBridge(stream, BridgeOptions{Frame: notNested(), Clock: fake, Timeout: 500 * time.Millisecond})
	b.Mount()
	defer b.Unmount()

	fake.Advance(500 * time.Millisecond)
	require.Equal(t, StateNotEmbedded, b.State())
}

func TestBridgeReloadAfterEarlyTimeout(t *testing.T) {
	hint := &FrameHint{}
	b, _, fake, rec := newTestBridge(t, hint)
	b.Mount()

	// Nothing recorded yet, so the first timeout assumes the plugin is framed.
	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateUninitialized, b.State())
	require.Zero(t, fake.Pending())

	hint.Record("document")
	b.Reload()
	require.Equal(t, 1, fake.Pending())

	fake.Advance(10 * DefaultContextTimeout)
	require.Equal(t, StateNotEmbedded, b.State())
	require.Equal(t, []State{StateNotEmbedded}, rec.states())
}

func TestBridgeReloadKeepsPendingTimeout(t *testing.T) {
	b, _, fake, _ := newTestBridge(t, notNested())
	b.Mount()

	fake.Advance(DefaultContextTimeout / 2)
	b.Reload()
	require.Equal(t, 1, fake.Pending())

	fake.Advance(DefaultContextTimeout / 2)
	require.Equal(t, StateNotEmbedded, b.State())
}

func TestBridgeReloadAfterNotEmbedded(t *testing.T) {
	hint := &FrameHint{}
	hint.Record("document")
	b, _, fake, rec := newTestBridge(t, hint)
	b.Mount()
	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateNotEmbedded, b.State())

	b.Reload()
	require.Equal(t, StateNotEmbedded, b.State())
	require.Zero(t, fake.Pending())

	hint.Record("iframe")
	b.Reload()
	require.Equal(t, StateUninitialized, b.State())
	require.Equal(t, []State{StateNotEmbedded, StateUninitialized}, rec.states())

	fake.Advance(DefaultContextTimeout)
	require.Equal(t, StateUninitialized, b.State())
}

func TestBridgeReloadIgnoredWhenConnectedOrUnmounted(t *testing.T) {
	b, stream, fake, _ := newTestBridge(t, notNested())
	b.Reload()
	require.Zero(t, fake.Pending())

	b.Mount()
	require.NoError(t, stream.Publish(context.Background(), NoConversation(nil)))
	b.Reload()
	require.Zero(t, fake.Pending())
	require.Equal(t, StateConnected, b.State())
}
