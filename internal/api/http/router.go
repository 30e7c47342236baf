package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dashboard/internal/auth"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	Plugin   *handlers.PluginHandler
	HostAuth *auth.HostAuth
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Get("/dashboard", cfg.Tickets.Dashboard)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/create", cfg.Tickets.CreateForm)
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Delete("/error", cfg.Tickets.ClearError)

	// Page paths handed out as links by the views.
	app.Get("/", cfg.Tickets.Dashboard)
	app.Get("/tickets", cfg.Tickets.ListTickets)
	app.Get("/tickets/create", cfg.Tickets.CreateForm)
	app.Get("/tickets/:id", cfg.Tickets.GetTicket)

	plugin := app.Group("/plugin")
	plugin.Get("", cfg.Plugin.View)
	plugin.Get("/draft", cfg.Plugin.Draft)
	plugin.Post("/context", cfg.HostAuth.Handle, cfg.Plugin.PushContext)
}
