// Package store holds the dashboard's ticket state. A single *Store is
// created at startup and passed to every view; state is read through
// State and changed only through the Store's operations, so IsLoading
// and Error always describe the operation in flight.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/events"
	"github.com/spec-kit/ticket-dashboard/internal/gateway"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

// Fallback messages used when a failure carries no message of its own.
const (
	msgFetchTicketsFailed = "Failed to fetch tickets"
	msgFetchTicketFailed  = "Failed to fetch ticket"
	msgCreateTicketFailed = "Failed to create ticket"
)

// State is a snapshot of the store. Tickets are deep copies, so callers
// may modify them freely.
type State struct {
	Tickets        []domain.Ticket      `json:"tickets"`
	SelectedTicket *domain.Ticket       `json:"selectedTicket"`
	IsLoading      bool                 `json:"isLoading"`
	Error          string               `json:"error,omitempty"`
	Filters        domain.TicketFilters `json:"filters"`
}

// Options configures a Store.
type Options struct {
	// DiscardStaleFetches drops FetchTickets results that complete after
	// a newer FetchTickets was started. Off by default: the newest
	// response to arrive wins.
	DiscardStaleFetches bool
	Dispatcher          events.Dispatcher
	Logger              *zap.Logger
}

// Store is the single source of truth for ticket data shown by views.
type Store struct {
	gateway    gateway.TicketGateway
	dispatcher events.Dispatcher
	logger     *zap.Logger

	discardStale bool

	mu        sync.RWMutex
	tickets   []domain.Ticket
	selected  *domain.Ticket
	isLoading bool
	err       string
	filters   domain.TicketFilters
	fetchSeq  uint64
}

// New constructs a Store backed by gw.
func New(gw gateway.TicketGateway, opts Options) *Store {
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gateway:      gw,
		dispatcher:   dispatcher,
		logger:       logger,
		discardStale: opts.DiscardStaleFetches,
		tickets:      []domain.Ticket{},
	}
}

// State returns a consistent copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Tickets:        domain.CloneTickets(s.tickets),
		SelectedTicket: copyTicket(s.selected),
		IsLoading:      s.isLoading,
		Error:          s.err,
		Filters:        s.filters,
	}
}

// Subscribe calls fn with a fresh snapshot after every state change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.dispatcher.Subscribe(events.EventStoreChanged, func(_ context.Context, e events.Event) error {
		if state, ok := e.Payload.(State); ok {
			fn(state)
		}
		return nil
	})
}

// FetchTickets loads the ticket list. A nil filters uses the stored
// filters. On failure the previous list is kept and Error is set.
func (s *Store) FetchTickets(ctx context.Context, filters *domain.TicketFilters) {
	s.mu.Lock()
	applied := s.filters
	if filters != nil {
		applied = *filters
	}
	s.fetchSeq++
	seq := s.fetchSeq
	s.startLocked()
	s.mu.Unlock()
	s.notify(ctx)

	tickets, err := s.gateway.ListTickets(ctx, applied)

	s.mu.Lock()
	if s.discardStale && seq != s.fetchSeq {
		s.mu.Unlock()
		s.logger.Debug("discarding stale ticket list", zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		s.err = apperrors.MessageOf(err, msgFetchTicketsFailed)
	} else {
		if tickets == nil {
			tickets = []domain.Ticket{}
		}
		s.tickets = tickets
	}
	s.isLoading = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("fetch tickets failed", zap.Error(err))
	}
	s.notify(ctx)
}

// FetchTicketByID loads one ticket into SelectedTicket. On failure the
// previous selection is kept and Error is set.
func (s *Store) FetchTicketByID(ctx context.Context, id string) {
	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
	s.notify(ctx)

	ticket, err := s.gateway.GetTicket(ctx, id)

	s.mu.Lock()
	if err != nil {
		s.err = apperrors.MessageOf(err, msgFetchTicketFailed)
	} else {
		s.selected = ticket
	}
	s.isLoading = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("fetch ticket failed", zap.String("ticket_id", id), zap.Error(err))
	}
	s.notify(ctx)
}

// CreateTicket submits req and prepends the created ticket to the list.
// The request is forwarded as is. On failure Error is set and the error
// is also returned so the caller can stay on its form.
func (s *Store) CreateTicket(ctx context.Context, req domain.CreateTicketRequest) (*domain.Ticket, error) {
	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
	s.notify(ctx)

	ticket, err := s.gateway.CreateTicket(ctx, req)

	s.mu.Lock()
	if err != nil {
		s.err = apperrors.MessageOf(err, msgCreateTicketFailed)
	} else {
		next := make([]domain.Ticket, 0, len(s.tickets)+1)
		next = append(next, *ticket)
		s.tickets = append(next, s.tickets...)
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify(ctx)

	if err != nil {
		s.logger.Warn("create ticket failed", zap.Error(err))
		return nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			ClientID: ticket.ClientID,
			Priority: string(ticket.Priority),
			Title:    ticket.Title,
		},
	})
	return copyTicket(ticket), nil
}

// SetFilters replaces the stored filters. It does not refetch.
func (s *Store) SetFilters(filters domain.TicketFilters) {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()
	s.notify(context.Background())
}

// ClearError resets Error.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify(context.Background())
}

// ClearSelectedTicket resets SelectedTicket.
func (s *Store) ClearSelectedTicket() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
	s.notify(context.Background())
}

// TicketsByStatus filters the in-memory list by exact status.
func (s *Store) TicketsByStatus(status domain.TicketStatus) []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Ticket{}
	for i := range s.tickets {
		if s.tickets[i].Status == status {
			out = append(out, s.tickets[i].Clone())
		}
	}
	return out
}

// TicketStats counts the in-memory list per status.
func (s *Store) TicketStats() domain.TicketStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.tickets)
}

func (s *Store) startLocked() {
	s.isLoading = true
	s.err = ""
}

func (s *Store) notify(ctx context.Context) {
	_ = s.dispatcher.Publish(ctx, events.Event{Type: events.EventStoreChanged, Payload: s.State()})
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	if t == nil {
		return nil
	}
	c := t.Clone()
	return &c
}
