package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dashboard/internal/api/dto"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/gateway"
	"github.com/spec-kit/ticket-dashboard/internal/store"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

const (
	recentTicketsLimit = 5
	ticketsPage        = "/tickets"

	cardDateLayout   = "Jan 2, 03:04 PM"
	detailDateLayout = "January 2, 2006 at 03:04 PM"
)

// TicketsHandler serves the dashboard, list, form and detail views.
type TicketsHandler struct {
	store           *store.Store
	defaultClientID string
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketStore *store.Store, defaultClientID string) *TicketsHandler {
	return &TicketsHandler{store: ticketStore, defaultClientID: defaultClientID}
}

// Dashboard GET /api/dashboard.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	h.store.FetchTickets(c.UserContext(), nil)
	state := h.store.State()

	return c.JSON(dto.DashboardView{
		Stats:         domain.ComputeStats(state.Tickets),
		RecentTickets: ticketCards(recentTickets(state.Tickets, recentTicketsLimit)),
		IsLoading:     state.IsLoading,
		Error:         state.Error,
	})
}

// ListTickets GET /api/tickets. A status query parameter, even empty,
// replaces the stored status filter before fetching.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filters := h.store.State().Filters
	if _, ok := c.Queries()["status"]; ok {
		status := domain.TicketStatus(strings.TrimSpace(c.Query("status")))
		if status != "" && !status.Valid() {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
		}
		filters = filters.WithStatus(status)
		h.store.SetFilters(filters)
	}

	h.store.FetchTickets(c.UserContext(), &filters)
	state := h.store.State()

	return c.JSON(dto.TicketListView{
		Tickets:       ticketCards(state.Tickets),
		CountLabel:    countLabel(len(state.Tickets)),
		StatusOptions: statusOptions(state.Filters.Status),
		Filters:       state.Filters,
		IsLoading:     state.IsLoading,
		Error:         state.Error,
	})
}

// CreateForm GET /api/tickets/create.
func (h *TicketsHandler) CreateForm(c *fiber.Ctx) error {
	form := dto.CreateTicketForm{
		ClientID: h.defaultClientID,
		Title:    c.Query("title"),
		Body:     c.Query("body"),
		Priority: domain.TicketPriorityMedium,
	}
	return c.JSON(h.createView(form))
}

// CreateTicket POST /api/tickets. Backend failures keep the caller on
// the form with the store's error.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var form dto.CreateTicketForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if form.ClientID == "" {
		form.ClientID = h.defaultClientID
	}
	if form.Priority == "" {
		form.Priority = domain.TicketPriorityMedium
	}
	if !form.CanSubmit() {
		return apperrors.NewValidationError("title and body required", nil)
	}
	if !form.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": form.Priority})
	}

	ticket, err := h.store.CreateTicket(c.UserContext(), domain.CreateTicketRequest{
		ClientID: form.ClientID,
		Title:    form.Title,
		Body:     form.Body,
		Priority: form.Priority,
	})
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(h.createView(form))
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResult{
		Ticket:   ticketCard(ticket),
		Redirect: ticketsPage,
	})
}

// ClearError DELETE /api/error.
func (h *TicketsHandler) ClearError(c *fiber.Ctx) error {
	h.store.ClearError()
	return c.SendStatus(http.StatusNoContent)
}

// GetTicket GET /api/tickets/:id. The selection is cleared once the view
// is rendered.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id := c.Params("id")
	h.store.FetchTicketByID(c.UserContext(), id)
	defer h.store.ClearSelectedTicket()

	state := h.store.State()
	if state.Error != "" {
		if state.Error == gateway.NotFoundMessage(id) {
			return apperrors.NewNotFound(state.Error, map[string]any{"id": id})
		}
		return apperrors.NewNetworkFailure(state.Error, 0, nil)
	}
	if state.SelectedTicket == nil || state.SelectedTicket.ID != id {
		return apperrors.NewNotFound("Ticket not found", map[string]any{"id": id})
	}
	return c.JSON(ticketDetail(state.SelectedTicket))
}

func (h *TicketsHandler) createView(form dto.CreateTicketForm) dto.CreateTicketView {
	state := h.store.State()
	return dto.CreateTicketView{
		Form:       form,
		Priorities: domain.TicketPriorities,
		CanSubmit:  form.CanSubmit() && !state.IsLoading,
		IsLoading:  state.IsLoading,
		Error:      state.Error,
	}
}

// recentTickets returns the newest limit tickets by creation time.
func recentTickets(tickets []domain.Ticket, limit int) []domain.Ticket {
	sorted := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func countLabel(n int) string {
	if n == 1 {
		return "Showing 1 ticket"
	}
	return fmt.Sprintf("Showing %d tickets", n)
}

func statusOptions(selected domain.TicketStatus) []dto.StatusOption {
	options := []dto.StatusOption{{Value: "", Label: "All Statuses", Selected: selected == ""}}
	for _, status := range domain.TicketStatuses {
		options = append(options, dto.StatusOption{
			Value:    string(status),
			Label:    statusTitle(status),
			Selected: status == selected,
		})
	}
	return options
}

// statusLabel renders a status for display, e.g. "in progress".
func statusLabel(status domain.TicketStatus) string {
	return strings.Replace(string(status), "_", " ", 1)
}

func statusTitle(status domain.TicketStatus) string {
	words := strings.Fields(statusLabel(status))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func ticketCards(tickets []domain.Ticket) []dto.TicketCard {
	cards := make([]dto.TicketCard, 0, len(tickets))
	for i := range tickets {
		cards = append(cards, ticketCard(&tickets[i]))
	}
	return cards
}

func ticketCard(ticket *domain.Ticket) dto.TicketCard {
	card := dto.TicketCard{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Status:      ticket.Status,
		StatusLabel: statusLabel(ticket.Status),
		Priority:    ticket.Priority,
		CreatedAt:   formatDate(ticket.CreatedAt, cardDateLayout),
		Link:        ticketsPage + "/" + ticket.ID,
	}
	if ticket.Client != nil {
		card.ClientName = ticket.Client.Name
	}
	return card
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailView {
	view := dto.TicketDetailView{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Body:        ticket.Body,
		Status:      ticket.Status,
		StatusLabel: statusLabel(ticket.Status),
		Priority:    ticket.Priority,
		CreatedAt:   formatDate(ticket.CreatedAt, detailDateLayout),
		UpdatedAt:   formatDate(ticket.UpdatedAt, detailDateLayout),
		Client:      dto.ClientSummary{Name: "Unknown", Industry: "N/A"},
		Device:      ticket.RmmDevice,
		AssignedTo:  ticket.AssignedUser,
		Attachments: append([]domain.Attachment{}, ticket.Attachments...),
	}
	if ticket.ExternalTicketID != nil {
		view.ExternalTicketID = *ticket.ExternalTicketID
	}
	if ticket.Client != nil {
		if ticket.Client.Name != "" {
			view.Client.Name = ticket.Client.Name
		}
		if ticket.Client.Industry != "" {
			view.Client.Industry = ticket.Client.Industry
		}
	}
	if ticket.Status.IsResolved() && ticket.ResolutionSteps != nil && *ticket.ResolutionSteps != "" {
		view.Resolution = &dto.ResolutionBanner{Steps: *ticket.ResolutionSteps}
		if ticket.KnowledgeBaseArticle != nil {
			view.Resolution.Article = ticket.KnowledgeBaseArticle.Content
		}
	}
	return view
}
