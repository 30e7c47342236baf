package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

func newGateway(t *testing.T, handler http.HandlerFunc) (*HTTPGateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewHTTPGateway(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return g, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListQueryOnlyContainsSetFields(t *testing.T) {
	clientIDs := []string{"", "c1"}
	statuses := []domain.TicketStatus{"", domain.TicketStatusNew}
	assignees := []string{"", "u1"}

	for _, clientID := range clientIDs {
		for _, status := range statuses {
			for _, assignee := range assignees {
				filters := domain.TicketFilters{ClientID: clientID, Status: status, AssignedTo: assignee}
				params := ListQuery(filters)

				expected := 0
				for key, value := range map[string]string{"clientId": clientID, "status": string(status), "assignedTo": assignee} {
					if value == "" {
						require.NotContains(t, params, key)
						continue
					}
					expected++
					require.Equal(t, value, params.Get(key))
				}
				require.Len(t, params, expected)
				for key, values := range params {
					for _, v := range values {
						require.NotEmpty(t, v, "empty value sent for %s", key)
					}
				}
			}
		}
	}
}

func TestListTicketsSendsFiltersAndDecodes(t *testing.T) {
	var gotQuery url.Values
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/psa/tickets", r.URL.Path)
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "t1", "title": "VPN down", "status": "new", "priority": "high"},
			{"id": "t2", "title": "Printer", "status": "new", "priority": "low"},
		})
	})

	tickets, err := g.ListTickets(context.Background(), domain.TicketFilters{Status: domain.TicketStatusNew})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	require.Equal(t, "t1", tickets[0].ID)
	require.Equal(t, url.Values{"status": {"new"}}, gotQuery)
}

func TestListTicketsWithoutFiltersHasNoQueryString(t *testing.T) {
	var rawQuery string
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []any{})
	})

	tickets, err := g.ListTickets(context.Background(), domain.TicketFilters{})
	require.NoError(t, err)
	require.Empty(t, tickets)
	require.Empty(t, rawQuery)
}

func TestListTicketsNon2xx(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := g.ListTickets(context.Background(), domain.TicketFilters{})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeNetworkFailure, de.Code)
	require.Equal(t, "Failed to fetch tickets: Internal Server Error", de.Message)
}

func TestListTicketsMalformedBody(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := g.ListTickets(context.Background(), domain.TicketFilters{})
	require.Equal(t, "Failed to fetch tickets: malformed response", apperrors.MessageOf(err, ""))
}

func TestListTicketsDoesNotValidatePayload(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "t1", "status": "archived"}})
	})

	tickets, err := g.ListTickets(context.Background(), domain.TicketFilters{})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatus("archived"), tickets[0].Status)
	require.False(t, tickets[0].Status.Valid())
}

func TestGetTicketNotFoundIsDistinct(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/psa/tickets/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	_, notFoundErr := g.GetTicket(context.Background(), "missing")
	require.True(t, apperrors.IsNotFound(notFoundErr))
	require.Equal(t, `Ticket with ID "missing" not found`, apperrors.MessageOf(notFoundErr, ""))

	_, genericErr := g.GetTicket(context.Background(), "other")
	require.False(t, apperrors.IsNotFound(genericErr))
	require.Equal(t, "Failed to fetch ticket: Service Unavailable", apperrors.MessageOf(genericErr, ""))
	require.NotEqual(t, apperrors.MessageOf(notFoundErr, ""), apperrors.MessageOf(genericErr, ""))
}

func TestGetTicketEscapesID(t *testing.T) {
	var escaped string
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		escaped = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, map[string]any{"id": "a/b", "title": "Weird"})
	})

	ticket, err := g.GetTicket(context.Background(), "a/b")
	require.NoError(t, err)
	require.Equal(t, "a/b", ticket.ID)
	require.Equal(t, "/psa/tickets/a%2Fb", escaped)
}

func TestCreateTicketPostsPayload(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/psa/webhook/tickets", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.CreateTicketRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "VPN down", req.Title)
		require.Equal(t, domain.TicketPriorityUrgent, req.Priority)

		writeJSON(w, http.StatusCreated, map[string]any{
			"id": "t9", "clientId": req.ClientID, "title": req.Title, "body": req.Body,
			"status": "new", "priority": req.Priority,
		})
	})

	ticket, err := g.CreateTicket(context.Background(), domain.CreateTicketRequest{
		ClientID: "c1", Title: "VPN down", Body: "cannot connect", Priority: domain.TicketPriorityUrgent,
	})
	require.NoError(t, err)
	require.Equal(t, "t9", ticket.ID)
	require.Equal(t, domain.TicketStatusNew, ticket.Status)
}

func TestCreateTicketErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server message", http.StatusBadRequest, `{"statusCode":400,"message":"clientId must be a UUID","error":"Bad Request"}`, "clientId must be a UUID"},
		{"message list", http.StatusBadRequest, `{"message":["title should not be empty","body should not be empty"]}`, "title should not be empty,body should not be empty"},
		{"no message field", http.StatusConflict, `{"error":"Conflict"}`, "Failed to create ticket: Conflict"},
		{"unparseable body", http.StatusBadGateway, `upstream exploded`, "Failed to create ticket: Bad Gateway"},
		{"empty body", http.StatusInternalServerError, ``, "Failed to create ticket: Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := g.CreateTicket(context.Background(), domain.CreateTicketRequest{ClientID: "c1", Title: "t", Body: "b"})
			require.Error(t, err)
			require.Equal(t, tc.want, apperrors.MessageOf(err, ""))
			require.Equal(t, apperrors.CodeNetworkFailure, apperrors.ToDomainError(err).Code)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	g, srv := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := g.ListTickets(context.Background(), domain.TicketFilters{})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeNetworkFailure, de.Code)
	require.Equal(t, "Failed to fetch tickets", de.Message)
	require.NotNil(t, de.Err)
}

func TestGatewayRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	g, err := NewHTTPGateway(Options{BaseURL: srv.URL, Metrics: metrics})
	require.NoError(t, err)

	_, _ = g.GetTicket(context.Background(), "nope")

	count, err := testutil.GatherAndCount(metrics.Registry(), "ticket_dashboard_gateway_calls_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNewHTTPGatewayRejectsBadURL(t *testing.T) {
	_, err := NewHTTPGateway(Options{BaseURL: "not a url"})
	require.Error(t, err)
}
