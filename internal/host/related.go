package host

import (
	"context"
	"strings"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// RelatedTicketsLimit caps the related tickets shown next to a
// conversation.
const RelatedTicketsLimit = 5

// DefaultDraftTitle is used when the conversation has no subject.
const DefaultDraftTitle = "New Support Ticket"

// RelatedTickets returns up to limit tickets whose title contains the
// subject or is contained in it, ignoring case, in list order. This is a
// plain substring test: an empty subject matches every ticket.
func RelatedTickets(subject string, tickets []domain.Ticket, limit int) []domain.Ticket {
	needle := strings.ToLower(subject)
	out := []domain.Ticket{}
	for i := range tickets {
		if limit > 0 && len(out) >= limit {
			break
		}
		title := strings.ToLower(tickets[i].Title)
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			out = append(out, tickets[i])
		}
	}
	return out
}

// RelatedForContext applies RelatedTickets to a single-conversation
// snapshot. Other snapshots have no related tickets.
func RelatedForContext(c Context, tickets []domain.Ticket) []domain.Ticket {
	if c.Type != ContextSingleConversation || len(tickets) == 0 {
		return []domain.Ticket{}
	}
	return RelatedTickets(c.Subject(), tickets, RelatedTicketsLimit)
}

// Draft is a new-ticket form prefill composed from a conversation.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DraftFromContext uses the conversation subject as title and the latest
// message body as body.
func DraftFromContext(ctx context.Context, c Context) (Draft, error) {
	if c.Type != ContextSingleConversation {
		return Draft{}, ErrNotSingleConversation
	}
	draft := Draft{Title: c.Subject()}
	if draft.Title == "" {
		draft.Title = DefaultDraftTitle
	}

	messages, err := c.ListMessages(ctx)
	if err != nil {
		return Draft{}, err
	}
	if latest, ok := messages.Latest(); ok {
		draft.Body = latest.Content.Body
	}
	return draft, nil
}

// CreateLink is the create-form URL carrying the draft.
func (d Draft) CreateLink() string {
	return "/tickets/create?title=" + encodeComponent(d.Title) + "&body=" + encodeComponent(d.Body)
}

// encodeComponent percent-encodes every byte except the URI component
// unreserved set A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if componentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func componentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
