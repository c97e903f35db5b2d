package watch

import (
	"context"
	"sync"
	"time"

	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/structures"
)

// Handler receives listing change events. Implemented by the moderation
// service.
type Handler interface {
	HandleListingCreated(ctx context.Context, l *models.Listing) error
	HandleListingUpdated(ctx context.Context, before, after *models.Listing) error
}

const defaultMaxRetries = 3

// Watcher drains the bus and dispatches each event to the handler. A
// failing handler is retried a bounded number of times with a short fixed
// delay, mirroring a trigger platform's redelivery.
type Watcher struct {
	bus        *Bus
	handler    Handler
	maxRetries int
	retryDelay time.Duration
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(bus *Bus, handler Handler, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Watcher {
	maxRetries := conf.Moderation.MaxEventRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Watcher{
		bus:        bus,
		handler:    handler,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		logger:     logger,
		metrics:    metrics,
	}
}

func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case ev := <-w.bus.Events():
				w.dispatch(ctx, ev)
				w.metrics.SetPendingEvents(w.bus.Pending())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.cancel = nil
}

func (w *Watcher) dispatch(ctx context.Context, ev Event) {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		switch ev.Type {
		case EventListingCreated:
			err = w.handler.HandleListingCreated(ctx, ev.After)
		case EventListingUpdated:
			err = w.handler.HandleListingUpdated(ctx, ev.Before, ev.After)
		default:
			w.logger.Warnf(providers.TypeApp, "Unknown listing event type %q", ev.Type)
			return
		}
		if err == nil {
			return
		}
		if attempt < w.maxRetries {
			w.logger.Warnf(providers.TypeApp, "Event %s for listing %s failed (attempt %d/%d): %s",
				ev.Type, ev.After.ID, attempt, w.maxRetries, err)
			select {
			case <-time.After(w.retryDelay):
			case <-ctx.Done():
				return
			}
		}
	}
	w.logger.Errorf(providers.TypeApp, "Event %s for listing %s dropped after %d attempts: %s",
		ev.Type, ev.After.ID, w.maxRetries, err)
}
