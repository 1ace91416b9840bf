package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

// outboxBatchSize is the number of pending events processed per tick.
const outboxBatchSize = 100

// Publisher delivers one outbox event to the event broker.
type Publisher interface {
	Publish(ctx context.Context, event *model.Event) error
}

// OutboxWorker polls the events table and publishes pending events
type OutboxWorker struct {
	events    repository.EventRepository
	publisher Publisher
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(events repository.EventRepository, publisher Publisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		events:    events,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start processes pending events on every tick until ctx is cancelled or Stop is called.
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.processEvents(ctx)
		}
	}
}

// Stop stops the outbox worker. It is safe to call more than once.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// processEvents publishes one batch of pending events and returns how many were published.
func (w *OutboxWorker) processEvents(ctx context.Context) int {
	events, err := w.events.ListPending(ctx, outboxBatchSize)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return 0
	}

	if len(events) == 0 {
		return 0
	}

	slog.Info("Processing pending events", slog.Int("count", len(events)))

	published := 0
	for _, event := range events {
		if err := w.publisher.Publish(ctx, event); err != nil {
			slog.Error("Failed to publish event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))

			if updateErr := w.events.UpdateStatus(ctx, event.ID, model.EventStatusFailed); updateErr != nil {
				slog.Error("Failed to update event status to failed",
					slog.String("event_id", event.ID.String()),
					slog.Any("err", updateErr))
			}
			continue
		}

		if updateErr := w.events.UpdateStatus(ctx, event.ID, model.EventStatusProcessed); updateErr != nil {
			slog.Error("Failed to update event status to processed",
				slog.String("event_id", event.ID.String()),
				slog.Any("err", updateErr))
			continue
		}
		published++
		slog.Debug("Event published",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType))
	}

	return published
}

// LogPublisher only logs events. It is used when no event broker is configured.
type LogPublisher struct{}

// Publish logs the event.
func (LogPublisher) Publish(_ context.Context, event *model.Event) error {
	slog.Info("Event dropped, no broker configured",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType))
	return nil
}
