package notify

import (
	"context"
	"sync"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/pkg/logger"
)

// Handler receives threshold events. Errors and panics are logged and
// swallowed; an observer can never fail the movement that produced the
// event.
type Handler func(ctx context.Context, event domain.StockThresholdCrossed) error

// Subscription identifies a registered handler and allows cancelling it
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Cancel removes the handler from the notifier
func (s *Subscription) Cancel() {
	s.notifier.mu.Lock()
	defer s.notifier.mu.Unlock()
	delete(s.notifier.handlers, s.id)
}

// Notifier delivers threshold events to registered observers after a
// movement commits. Delivery is synchronous and fire-and-forget.
type Notifier struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
}

// New creates a new notifier
func New() *Notifier {
	return &Notifier{handlers: make(map[uint64]Handler)}
}

// Subscribe registers a handler and returns its subscription
func (n *Notifier) Subscribe(h Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.handlers[id] = h
	return &Subscription{id: id, notifier: n}
}

// Publish delivers the event to every subscriber. Failing observers are
// logged and skipped; Publish itself never fails.
func (n *Notifier) Publish(ctx context.Context, event domain.StockThresholdCrossed) {
	n.mu.RLock()
	snapshot := make([]Handler, 0, len(n.handlers))
	for _, h := range n.handlers {
		snapshot = append(snapshot, h)
	}
	n.mu.RUnlock()

	for _, h := range snapshot {
		n.deliver(ctx, h, event)
	}
}

func (n *Notifier) deliver(ctx context.Context, h Handler, event domain.StockThresholdCrossed) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(ctx).
				Interface("panic", rec).
				Str("product_key", event.ProductKey).
				Str("crossed", string(event.Crossed)).
				Msg("Threshold observer panicked")
		}
	}()

	if err := h(ctx, event); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("product_key", event.ProductKey).
			Str("crossed", string(event.Crossed)).
			Msg("Threshold observer failed")
	}
}
