package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventStoreChanged fires after any ticket store state mutation.
	EventStoreChanged  EventType = "store_changed"
	EventTicketCreated EventType = "ticket_created"
	EventHostContext   EventType = "host_context"
)

// Event is a notification carried by the dispatcher.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string `json:"ticket_id"`
	ClientID string `json:"client_id"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
}
