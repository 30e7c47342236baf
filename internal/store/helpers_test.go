package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// pendingFetch is a FetchTickets call whose backend response is held
// until release is called.
type pendingFetch struct {
	gate chan struct{}
	done chan struct{}
}

func (p *pendingFetch) release() { close(p.gate) }
func (p *pendingFetch) wait()    { <-p.done }

// racingFetches starts two fetches. The first one dispatched answers
// "stale", the second "fresh"; neither returns until released.
func racingFetches(t *testing.T, discardStale bool) (*Store, *pendingFetch, *pendingFetch) {
	t.Helper()

	first := &pendingFetch{gate: make(chan struct{}), done: make(chan struct{})}
	second := &pendingFetch{gate: make(chan struct{}), done: make(chan struct{})}

	gw := &stubGateway{listFn: func(_ context.Context, f domain.TicketFilters) ([]domain.Ticket, error) {
		if f.Status == domain.TicketStatusNew {
			<-first.gate
			return []domain.Ticket{{ID: "stale"}}, nil
		}
		<-second.gate
		return []domain.Ticket{{ID: "fresh"}}, nil
	}}
	s := New(gw, Options{DiscardStaleFetches: discardStale})

	go func() {
		s.FetchTickets(context.Background(), &domain.TicketFilters{Status: domain.TicketStatusNew})
		close(first.done)
	}()
	require.Eventually(t, func() bool { return callCount(gw) == 1 }, timeout, tick)

	go func() {
		s.FetchTickets(context.Background(), &domain.TicketFilters{Status: domain.TicketStatusClosed})
		close(second.done)
	}()
	require.Eventually(t, func() bool { return callCount(gw) == 2 }, timeout, tick)

	return s, first, second
}

func callCount(gw *stubGateway) int {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return len(gw.listCalls)
}
