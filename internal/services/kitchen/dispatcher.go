package kitchen

import (
	"context"
	"time"

	"cafepos/internal/logger"
	"cafepos/internal/models"
	"cafepos/internal/storage"
)

// Publisher pushes a kitchen event to connected displays.
type Publisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// Dispatcher fans order lifecycle events out to kitchen displays. Every
// dispatch is fire-and-forget: broadcast failures are logged and swallowed
// so they can never fail the transaction that triggered them. A nil
// publisher turns dispatching into a no-op.
type Dispatcher struct {
	pub   Publisher
	store storage.Store
	log   *logger.Logger
}

// NewDispatcher creates an event dispatcher. pub may be nil.
func NewDispatcher(pub Publisher, store storage.Store, log *logger.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, store: store, log: log}
}

// NewOrder announces a freshly confirmed order.
func (d *Dispatcher) NewOrder(ctx context.Context, order *models.Order) {
	d.emit(ctx, order, Event{Type: EventNewOrder})
}

// OrderUpdated announces an item-level change to an open order.
func (d *Dispatcher) OrderUpdated(ctx context.Context, order *models.Order) {
	d.emit(ctx, order, Event{Type: EventOrderUpdated})
}

// StatusChanged announces an order status transition.
func (d *Dispatcher) StatusChanged(ctx context.Context, order *models.Order, old, next models.OrderStatus, changedBy string) {
	d.emit(ctx, order, Event{
		Type:      EventStatusChanged,
		OldStatus: string(old),
		NewStatus: string(next),
		ChangedBy: changedBy,
	})
}

// Bumped announces an order bumped to ready.
func (d *Dispatcher) Bumped(ctx context.Context, order *models.Order, bumpedBy string) {
	d.emit(ctx, order, Event{
		Type:      EventOrderBumped,
		OldStatus: string(models.StatusPreparing),
		NewStatus: string(models.StatusReady),
		BumpedBy:  bumpedBy,
	})
}

// PriorityChanged announces a ticket priority change.
func (d *Dispatcher) PriorityChanged(ctx context.Context, order *models.Order, old, next models.TicketPriority, changedBy string) {
	d.emit(ctx, order, Event{
		Type:        EventPriorityChanged,
		OldPriority: string(old),
		NewPriority: string(next),
		ChangedBy:   changedBy,
	})
}

func (d *Dispatcher) emit(ctx context.Context, order *models.Order, event Event) {
	if d.pub == nil {
		return
	}

	now := time.Now().UTC()
	event.Timestamp = now

	var table *models.Table
	if order.TableID != nil {
		t, err := d.store.GetTable(ctx, *order.TableID)
		if err == nil {
			table = t
		}
	}
	ticket, err := d.store.GetTicketByOrder(ctx, order.ID)
	if err != nil {
		ticket = nil
	}

	event.Order = BuildOrderSnapshot(order, table, ticket, now)

	if err := d.pub.Publish(ctx, event); err != nil {
		d.log.Error("kitchen_event_failed", "Failed to broadcast kitchen event", "", err, map[string]interface{}{
			"event_type": event.Type,
			"order_id":   order.ID,
		})
	}
}
