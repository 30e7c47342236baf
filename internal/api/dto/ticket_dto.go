package dto

import (
	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// CreateTicketForm is the new-ticket form, both as served and as
// submitted.
type CreateTicketForm struct {
	ClientID string                `json:"clientId"`
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Priority domain.TicketPriority `json:"priority"`
}

// CanSubmit reports whether the required fields are filled.
func (f CreateTicketForm) CanSubmit() bool {
	return f.Title != "" && f.Body != ""
}

// TicketCard is a ticket as shown in lists.
type TicketCard struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Status      domain.TicketStatus   `json:"status"`
	StatusLabel string                `json:"statusLabel"`
	Priority    domain.TicketPriority `json:"priority"`
	ClientName  string                `json:"clientName,omitempty"`
	CreatedAt   string                `json:"createdAt"`
	Link        string                `json:"link"`
}

// StatusOption is an entry of the status filter select.
type StatusOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// DashboardView response.
type DashboardView struct {
	Stats         domain.TicketStats `json:"stats"`
	RecentTickets []TicketCard       `json:"recentTickets"`
	IsLoading     bool               `json:"isLoading"`
	Error         string             `json:"error,omitempty"`
}

// TicketListView response.
type TicketListView struct {
	Tickets       []TicketCard         `json:"tickets"`
	CountLabel    string               `json:"countLabel"`
	StatusOptions []StatusOption       `json:"statusOptions"`
	Filters       domain.TicketFilters `json:"filters"`
	IsLoading     bool                 `json:"isLoading"`
	Error         string               `json:"error,omitempty"`
}

// CreateTicketView response.
type CreateTicketView struct {
	Form       CreateTicketForm        `json:"form"`
	Priorities []domain.TicketPriority `json:"priorities"`
	CanSubmit  bool                    `json:"canSubmit"`
	IsLoading  bool                    `json:"isLoading"`
	Error      string                  `json:"error,omitempty"`
}

// CreateTicketResult is returned after a successful submit.
type CreateTicketResult struct {
	Ticket   TicketCard `json:"ticket"`
	Redirect string     `json:"redirect"`
}

// ClientSummary is the client block of the detail view.
type ClientSummary struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// ResolutionBanner is shown for resolved or closed tickets.
type ResolutionBanner struct {
	Steps   string `json:"steps"`
	Article string `json:"article,omitempty"`
}

// TicketDetailView response.
type TicketDetailView struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Body             string                `json:"body"`
	Status           domain.TicketStatus   `json:"status"`
	StatusLabel      string                `json:"statusLabel"`
	Priority         domain.TicketPriority `json:"priority"`
	CreatedAt        string                `json:"createdAt"`
	UpdatedAt        string                `json:"updatedAt"`
	ExternalTicketID string                `json:"externalTicketId,omitempty"`
	Client           ClientSummary         `json:"client"`
	Device           *domain.RmmDevice     `json:"device,omitempty"`
	AssignedTo       *domain.User          `json:"assignedTo,omitempty"`
	Attachments      []domain.Attachment   `json:"attachments"`
	Resolution       *ResolutionBanner     `json:"resolution,omitempty"`
}
