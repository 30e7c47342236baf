// Package gateway is the HTTP client of the PSA ticket backend. It turns
// store intents into requests and responses into domain values or
// errorutil.DomainError failures.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

const (
	ticketsPath       = "/psa/tickets"
	createTicketsPath = "/psa/webhook/tickets"

	maxErrorBody = 64 << 10
)

// Operation names used for logging and metrics.
const (
	OpListTickets  = "list_tickets"
	OpGetTicket    = "get_ticket"
	OpCreateTicket = "create_ticket"
)

// TicketGateway is what the store needs from the backend.
type TicketGateway interface {
	ListTickets(ctx context.Context, filters domain.TicketFilters) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, req domain.CreateTicketRequest) (*domain.Ticket, error)
}

// HTTPGateway talks to the PSA backend over HTTP.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Options configures an HTTPGateway.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewHTTPGateway validates the base URL and builds the client.
func NewHTTPGateway(opts Options) (*HTTPGateway, error) {
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid API base url %q: %w", opts.BaseURL, err)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		client:  client,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// ListQuery encodes only the filter fields that are set.
func ListQuery(filters domain.TicketFilters) url.Values {
	params := url.Values{}
	if filters.ClientID != "" {
		params.Set("clientId", filters.ClientID)
	}
	if filters.Status != "" {
		params.Set("status", string(filters.Status))
	}
	if filters.AssignedTo != "" {
		params.Set("assignedTo", filters.AssignedTo)
	}
	return params
}

// ListTickets GET /psa/tickets.
func (g *HTTPGateway) ListTickets(ctx context.Context, filters domain.TicketFilters) (tickets []domain.Ticket, err error) {
	defer g.observe(OpListTickets, time.Now(), &err)

	address := g.baseURL + ticketsPath
	if query := ListQuery(filters).Encode(); query != "" {
		address += "?" + query
	}

	resp, err := g.do(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to fetch tickets", 0, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, apperrors.NewNetworkFailure("Failed to fetch tickets: "+statusText(resp), resp.StatusCode, nil)
	}
	if err := decode(resp, &tickets); err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to fetch tickets: malformed response", resp.StatusCode, err)
	}
	return tickets, nil
}

// GetTicket GET /psa/tickets/{id}.
func (g *HTTPGateway) GetTicket(ctx context.Context, id string) (ticket *domain.Ticket, err error) {
	defer g.observe(OpGetTicket, time.Now(), &err)

	address := g.baseURL + ticketsPath + "/" + url.PathEscape(id)
	resp, err := g.do(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to fetch ticket", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFound(NotFoundMessage(id), map[string]any{"id": id})
	}
	if !isSuccess(resp.StatusCode) {
		return nil, apperrors.NewNetworkFailure("Failed to fetch ticket: "+statusText(resp), resp.StatusCode, nil)
	}

	ticket = &domain.Ticket{}
	if err := decode(resp, ticket); err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to fetch ticket: malformed response", resp.StatusCode, err)
	}
	return ticket, nil
}

// CreateTicket POST /psa/webhook/tickets.
func (g *HTTPGateway) CreateTicket(ctx context.Context, req domain.CreateTicketRequest) (ticket *domain.Ticket, err error) {
	defer g.observe(OpCreateTicket, time.Now(), &err)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	resp, err := g.do(ctx, http.MethodPost, g.baseURL+createTicketsPath, payload)
	if err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to create ticket", 0, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		message := serverMessage(resp.Body)
		if message == "" {
			message = "Failed to create ticket: " + statusText(resp)
		}
		return nil, apperrors.NewNetworkFailure(message, resp.StatusCode, nil)
	}

	ticket = &domain.Ticket{}
	if err := decode(resp, ticket); err != nil {
		return nil, apperrors.NewNetworkFailure("Failed to create ticket: malformed response", resp.StatusCode, err)
	}
	return ticket, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, address string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, address, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.client.Do(req)
}

func (g *HTTPGateway) observe(operation string, start time.Time, errp *error) {
	duration := time.Since(start)
	outcome := "ok"
	if *errp != nil {
		outcome = apperrors.ToDomainError(*errp).Code
	}
	g.metrics.RecordGatewayCall(operation, outcome, duration)

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Duration("latency", duration),
	}
	if *errp != nil {
		g.logger.Warn("backend call failed", append(fields, zap.Error(*errp))...)
		return
	}
	g.logger.Debug("backend call", fields...)
}

// NotFoundMessage is the message reported when ticket id does not exist.
func NotFoundMessage(id string) string {
	return fmt.Sprintf("Ticket with ID %q not found", id)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusText returns the reason phrase of the response, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func decode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

// serverMessage extracts {"message": ...} from an error body. The backend
// may send a string or, for validation failures, a list of strings.
func serverMessage(body io.Reader) string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		return single
	}
	var list []string
	if err := json.Unmarshal(envelope.Message, &list); err == nil {
		return strings.Join(list, ",")
	}
	return ""
}

var _ TicketGateway = (*HTTPGateway)(nil)
