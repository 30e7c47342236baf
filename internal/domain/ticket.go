package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusProcessing TicketStatus = "processing"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in workflow order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusProcessing,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is one of the enumerated statuses.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsResolved is true for resolved and closed tickets.
func (s TicketStatus) IsResolved() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists every priority from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

func (p TicketPriority) Valid() bool {
	for _, known := range TicketPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// Ticket is the support request as served by the PSA backend.
type Ticket struct {
	ID                     string                `json:"id"`
	ClientID               string                `json:"clientId"`
	RmmDeviceID            *string               `json:"rmmDeviceId"`
	AssignedTo             *string               `json:"assignedTo"`
	Title                  string                `json:"title"`
	Body                   string                `json:"body"`
	Status                 TicketStatus          `json:"status"`
	Priority               TicketPriority        `json:"priority"`
	ExternalTicketID       *string               `json:"externalTicketId"`
	ResolutionSteps        *string               `json:"resolutionSteps"`
	KnowledgeBaseArticleID *string               `json:"knowledgeBaseArticleId"`
	CreatedAt              time.Time             `json:"createdAt"`
	UpdatedAt              time.Time             `json:"updatedAt"`
	Client                 *Client               `json:"client,omitempty"`
	RmmDevice              *RmmDevice            `json:"rmmDevice,omitempty"`
	AssignedUser           *User                 `json:"assignedUser,omitempty"`
	Attachments            []Attachment          `json:"attachments,omitempty"`
	KnowledgeBaseArticle   *KnowledgeBaseArticle `json:"knowledgeBaseArticle,omitempty"`
}

// Clone returns a deep copy; pointer and slice fields are not shared.
func (t Ticket) Clone() Ticket {
	t.RmmDeviceID = cloneString(t.RmmDeviceID)
	t.AssignedTo = cloneString(t.AssignedTo)
	t.ExternalTicketID = cloneString(t.ExternalTicketID)
	t.ResolutionSteps = cloneString(t.ResolutionSteps)
	t.KnowledgeBaseArticleID = cloneString(t.KnowledgeBaseArticleID)
	if t.Client != nil {
		c := *t.Client
		t.Client = &c
	}
	if t.RmmDevice != nil {
		d := *t.RmmDevice
		t.RmmDevice = &d
	}
	if t.AssignedUser != nil {
		u := *t.AssignedUser
		t.AssignedUser = &u
	}
	if t.KnowledgeBaseArticle != nil {
		a := *t.KnowledgeBaseArticle
		t.KnowledgeBaseArticle = &a
	}
	if t.Attachments != nil {
		t.Attachments = append([]Attachment{}, t.Attachments...)
	}
	return t
}

// CloneTickets deep-copies a ticket list.
func CloneTickets(tickets []Ticket) []Ticket {
	out := make([]Ticket, 0, len(tickets))
	for i := range tickets {
		out = append(out, tickets[i].Clone())
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// TicketFilters is a conjunctive predicate for the list endpoint. Empty
// fields place no constraint.
type TicketFilters struct {
	ClientID   string       `json:"clientId,omitempty"`
	Status     TicketStatus `json:"status,omitempty"`
	AssignedTo string       `json:"assignedTo,omitempty"`
}

// IsEmpty reports whether no field is constrained.
func (f TicketFilters) IsEmpty() bool {
	return f.ClientID == "" && f.Status == "" && f.AssignedTo == ""
}

// WithStatus returns a copy with the status constraint replaced. An
// empty status removes the constraint.
func (f TicketFilters) WithStatus(status TicketStatus) TicketFilters {
	f.Status = status
	return f
}

// CreateTicketRequest is the webhook payload for new tickets.
type CreateTicketRequest struct {
	ClientID         string         `json:"clientId"`
	Title            string         `json:"title"`
	Body             string         `json:"body"`
	Priority         TicketPriority `json:"priority,omitempty"`
	RmmDeviceID      string         `json:"rmmDeviceId,omitempty"`
	AssignedTo       string         `json:"assignedTo,omitempty"`
	ExternalTicketID string         `json:"externalTicketId,omitempty"`
}

// TicketStats aggregates tickets per status.
type TicketStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Processing int `json:"processing"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// ComputeStats counts tickets per status.
func ComputeStats(tickets []Ticket) TicketStats {
	stats := TicketStats{Total: len(tickets)}
	for i := range tickets {
		switch tickets[i].Status {
		case TicketStatusNew:
			stats.New++
		case TicketStatusProcessing:
			stats.Processing++
		case TicketStatusInProgress:
			stats.InProgress++
		case TicketStatusResolved:
			stats.Resolved++
		case TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}
