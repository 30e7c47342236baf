// Package worker runs background listeners that react to dashboard
// events.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/events"
	"github.com/spec-kit/ticket-dashboard/internal/host"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
)

// HostUpdates is the part of the host bridge the worker listens to.
type HostUpdates interface {
	Subscribe(fn func(host.Update)) (unsubscribe func())
}

// ActivityWorker logs and counts created tickets and host bridge updates.
type ActivityWorker struct {
	dispatcher events.Dispatcher
	bridge     HostUpdates
	metrics    *observability.Metrics
	logger     *zap.Logger

	unsubscribe []func()
}

// NewActivityWorker creates the worker. bridge may be nil.
func NewActivityWorker(dispatcher events.Dispatcher, bridge HostUpdates, metrics *observability.Metrics, logger *zap.Logger) *ActivityWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityWorker{dispatcher: dispatcher, bridge: bridge, metrics: metrics, logger: logger}
}

// Start registers the handlers. Stop removes them.
func (w *ActivityWorker) Start() {
	if w.dispatcher != nil {
		w.unsubscribe = append(w.unsubscribe, w.dispatcher.Subscribe(events.EventTicketCreated, w.handleTicketCreated))
	}
	if w.bridge != nil {
		w.unsubscribe = append(w.unsubscribe, w.bridge.Subscribe(w.handleHostUpdate))
	}
}

func (w *ActivityWorker) Stop() {
	for _, fn := range w.unsubscribe {
		fn()
	}
	w.unsubscribe = nil
}

func (w *ActivityWorker) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	w.metrics.RecordTicketCreated(payload.Priority)
	w.logger.Info("ticket created",
		zap.String("event_id", event.ID),
		zap.String("ticket_id", payload.TicketID),
		zap.String("client_id", payload.ClientID),
		zap.String("priority", payload.Priority),
	)
	return nil
}

func (w *ActivityWorker) handleHostUpdate(update host.Update) {
	w.metrics.RecordHostUpdate(string(update.State))
	fields := []zap.Field{zap.String("state", string(update.State))}
	if update.Context != nil {
		fields = append(fields, zap.String("context_type", string(update.Context.Type)))
	}
	w.logger.Info("host bridge update", fields...)
}
