package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/api/dto"
	"github.com/spec-kit/ticket-dashboard/internal/auth"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/host"
	"github.com/spec-kit/ticket-dashboard/internal/store"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

const pluginPath = "/plugin"

var setupSteps = []string{
	"Go to Front Settings → Company → Developers",
	"Create a new app with a Sidebar Plugin",
	"Set the URL to the plugin URL below",
	"Pin the plugin in your Front sidebar",
}

// PluginHandler serves the helpdesk sidebar plugin.
type PluginHandler struct {
	bridge    *host.Bridge
	hint      *host.FrameHint
	store     *store.Store
	publisher host.Publisher
	publicURL string
	logger    *zap.Logger
}

// PluginHandlerOptions bundles the plugin dependencies.
type PluginHandlerOptions struct {
	Bridge    *host.Bridge
	FrameHint *host.FrameHint
	Store     *store.Store
	Publisher host.Publisher
	PublicURL string
	Logger    *zap.Logger
}

// NewPluginHandler constructs handler.
func NewPluginHandler(opts PluginHandlerOptions) *PluginHandler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginHandler{
		bridge:    opts.Bridge,
		hint:      opts.FrameHint,
		store:     opts.Store,
		publisher: opts.Publisher,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		logger:    logger,
	}
}

// View GET /plugin. Each load counts as a fresh plugin mount for the
// not-embedded timeout.
func (h *PluginHandler) View(c *fiber.Ctx) error {
	if h.hint != nil {
		h.hint.Record(c.Get("Sec-Fetch-Dest"))
	}
	h.bridge.Reload()

	snapshot, ok := h.bridge.Snapshot()
	if !ok {
		if h.bridge.State() == host.StateNotEmbedded {
			return c.JSON(dto.PluginView{
				Mode: dto.PluginModeSetupRequired,
				Setup: &dto.SetupInstructions{
					Title:     "Front Context Required",
					Message:   "This plugin must be loaded inside Front's sidebar.",
					Steps:     setupSteps,
					PluginURL: h.pluginURL(c),
				},
			})
		}
		return c.JSON(dto.PluginView{Mode: dto.PluginModeConnecting, Message: "Connecting to Front..."})
	}

	switch snapshot.Type {
	case host.ContextNoConversation:
		return c.JSON(dto.PluginView{
			Mode: dto.PluginModeNoConversation,
			Empty: &dto.EmptyState{
				Title:   "No Conversation Selected",
				Message: "Select a conversation to view related tickets and create new ones.",
			},
		})
	case host.ContextMultiConversations:
		return c.JSON(dto.PluginView{
			Mode: dto.PluginModeMultiConversations,
			Empty: &dto.EmptyState{
				Title:   "Multiple Conversations",
				Message: "Select a single conversation to use the plugin.",
			},
		})
	}

	h.store.FetchTickets(c.UserContext(), nil)
	related := host.RelatedForContext(snapshot, h.store.State().Tickets)

	view := dto.PluginView{
		Mode:           dto.PluginModeSingleConversation,
		Greeting:       "Hello, " + teammateName(snapshot) + "!",
		Conversation:   conversationSummary(snapshot),
		RelatedTickets: relatedTickets(related),
		DraftLink:      pluginPath + "/draft",
		AllTicketsLink: ticketsPage,
	}
	return c.JSON(view)
}

// Draft GET /plugin/draft.
func (h *PluginHandler) Draft(c *fiber.Ctx) error {
	snapshot, ok := h.bridge.Snapshot()
	if !ok {
		return apperrors.NewValidationError("no conversation selected", nil)
	}
	draft, err := host.DraftFromContext(c.UserContext(), snapshot)
	if errors.Is(err, host.ErrNotSingleConversation) {
		return apperrors.NewValidationError("select a single conversation", map[string]any{"type": snapshot.Type})
	}
	if err != nil {
		return apperrors.NewNetworkFailure("Failed to load conversation messages", 0, err)
	}
	return c.JSON(dto.DraftView{Title: draft.Title, Body: draft.Body, Link: draft.CreateLink()})
}

// PushContext POST /plugin/context.
func (h *PluginHandler) PushContext(c *fiber.Ctx) error {
	snapshot, err := host.DecodeContext(c.Body())
	if err != nil {
		return apperrors.NewValidationError("invalid host context", map[string]any{"reason": err.Error()})
	}

	fields := []zap.Field{zap.String("type", string(snapshot.Type))}
	if claims, ok := auth.ClaimsFromContext(c); ok && claims.Teammate != "" {
		fields = append(fields, zap.String("teammate", claims.Teammate))
	}
	if err := h.publisher.Publish(c.UserContext(), snapshot); err != nil {
		return apperrors.NewInternalError(err)
	}
	h.logger.Debug("host context pushed", fields...)

	return c.Status(http.StatusAccepted).JSON(dto.HostContextAck{Type: string(snapshot.Type), Accepted: true})
}

func (h *PluginHandler) pluginURL(c *fiber.Ctx) string {
	if h.publicURL != "" {
		return h.publicURL + pluginPath
	}
	return c.BaseURL() + pluginPath
}

func teammateName(snapshot host.Context) string {
	if snapshot.Teammate != nil && snapshot.Teammate.Name != "" {
		return snapshot.Teammate.Name
	}
	return "User"
}

func conversationSummary(snapshot host.Context) *dto.ConversationSummary {
	summary := &dto.ConversationSummary{Subject: "No subject", From: "Unknown"}
	if subject := snapshot.Subject(); subject != "" {
		summary.Subject = subject
	}
	if conv := snapshot.Conversation; conv != nil && conv.Recipient != nil && conv.Recipient.Name != "" {
		summary.From = conv.Recipient.Name
	}
	return summary
}

func relatedTickets(tickets []domain.Ticket) []dto.RelatedTicket {
	out := make([]dto.RelatedTicket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, dto.RelatedTicket{
			ID:     t.ID,
			Title:  t.Title,
			Status: string(t.Status),
			Link:   ticketsPage + "/" + t.ID,
		})
	}
	return out
}
