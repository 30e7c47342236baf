package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-dashboard/internal/api/http"
	"github.com/spec-kit/ticket-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dashboard/internal/auth"
	"github.com/spec-kit/ticket-dashboard/internal/config"
	"github.com/spec-kit/ticket-dashboard/internal/events"
	"github.com/spec-kit/ticket-dashboard/internal/gateway"
	"github.com/spec-kit/ticket-dashboard/internal/host"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	"github.com/spec-kit/ticket-dashboard/internal/persistence"
	"github.com/spec-kit/ticket-dashboard/internal/store"
	"github.com/spec-kit/ticket-dashboard/internal/worker"
)

// hostStream is both ends of the host context channel.
type hostStream interface {
	host.Stream
	host.Publisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	gw, err := gateway.NewHTTPGateway(gateway.Options{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout(),
		Logger:  logger.Named("gateway"),
		Metrics: metrics,
	})
	if err != nil {
		logger.Fatal("failed to build gateway", zap.Error(err))
	}

	ticketStore := store.New(gw, store.Options{
		DiscardStaleFetches: cfg.Store.DiscardStaleFetches,
		Dispatcher:          dispatcher,
		Logger:              logger.Named("store"),
	})

	var redis *persistence.Redis
	var stream hostStream = host.NewMemoryStream()
	if cfg.Host.UsesRedis() {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		stream = host.NewRedisStream(redis.Client, cfg.Host.RedisChannel, logger.Named("host"))
	}

	frameHint := &host.FrameHint{}
	bridge := host.NewBridge(stream, host.BridgeOptions{
		Frame:   frameHint,
		Timeout: cfg.Host.ContextTimeout(),
		Logger:  logger.Named("host"),
	})

	activity := worker.NewActivityWorker(dispatcher, bridge, metrics, logger.Named("worker"))
	activity.Start()
	defer activity.Stop()

	bridge.Mount()
	defer bridge.Unmount()

	tokens := auth.NewTokenManager(cfg.Host.ContextSecret, cfg.Host.TokenTTLMinutes)
	if !tokens.Enabled() {
		logger.Warn("HOST_CONTEXT_SECRET not set; host context pushes are unauthenticated")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, bridge),
		Tickets: handlers.NewTicketsHandler(ticketStore, cfg.Form.DefaultClientID),
		Plugin: handlers.NewPluginHandler(handlers.PluginHandlerOptions{
			Bridge:    bridge,
			FrameHint: frameHint,
			Store:     ticketStore,
			Publisher: stream,
			PublicURL: cfg.App.PublicURL,
			Logger:    logger.Named("plugin"),
		}),
		HostAuth: auth.NewHostAuth(tokens),
		Metrics:  metrics,
	})

	go func() {
		logger.Info("dashboard listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("api_base_url", cfg.Gateway.BaseURL),
			zap.String("host_stream", cfg.Host.Stream),
		)
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
