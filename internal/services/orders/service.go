// Package orders implements the order lifecycle: creation with daily
// numbering and a kitchen ticket, item management with menu snapshots,
// status transitions, cancellation and abandonment. Every mutation runs
// in one transaction, recomputes the bill and re-derives table occupancy.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cafepos/internal/logger"
	"cafepos/internal/models"
	"cafepos/internal/services/kitchen"
	"cafepos/internal/services/tables"
	"cafepos/internal/services/taxes"
	"cafepos/internal/storage"
)

var (
	ErrInvalidType       = errors.New("invalid order type")
	ErrInvalidSource     = errors.New("invalid order source")
	ErrTableRequired     = errors.New("dine-in orders require a table")
	ErrPhoneRequired     = errors.New("takeaway orders require a customer phone")
	ErrQRDisabled        = errors.New("qr ordering is disabled")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrOrderLocked       = errors.New("items can only be changed on pending or confirmed orders")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrItemUnavailable   = errors.New("menu item not found or unavailable")
	ErrOrderPaid         = errors.New("cannot cancel a paid order, process refund first")
	ErrOrderCompleted    = errors.New("cannot cancel a completed order")
	ErrOrderCancelled    = errors.New("order is already cancelled")
	ErrNotAbandonable    = errors.New("only empty pending or confirmed orders can be abandoned")
)

// StatusChange reports one applied transition. Callers use it to drive
// follow-up behavior without re-reading the order.
type StatusChange struct {
	Order *models.Order
	Old   models.OrderStatus
	New   models.OrderStatus
}

// Service coordinates the order lifecycle against the store and the
// kitchen event dispatcher.
type Service struct {
	store    storage.Store
	dispatch *kitchen.Dispatcher
	log      *logger.Logger
}

// NewService creates the order lifecycle service.
func NewService(store storage.Store, dispatch *kitchen.Dispatcher, log *logger.Logger) *Service {
	return &Service{store: store, dispatch: dispatch, log: log}
}

// CreateParams describes a new order.
type CreateParams struct {
	OutletID         int64
	TableID          *int64
	CombinedTableIDs []int64
	TableSessionID   *int64
	CreatedByID      *int64

	Type   models.OrderType
	Source models.OrderSource

	PartyName     string
	CustomerName  string
	CustomerPhone string
	CustomerNotes string
	KitchenNotes  string
}

// Create opens a new order with a daily order number and a kitchen
// ticket. Dine-in orders occupy their tables immediately. When the outlet
// or the global settings auto-accept, the order starts out confirmed and
// is announced to the kitchen.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Order, error) {
	if !params.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, params.Type)
	}
	if !params.Source.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, params.Source)
	}
	if params.Type == models.DineIn && params.TableID == nil {
		return nil, ErrTableRequired
	}

	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		outlet, err := st.GetOutlet(ctx, params.OutletID)
		if err != nil {
			return fmt.Errorf("failed to load outlet: %w", err)
		}

		settings, err := st.GetOrderSettings(ctx)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			settings = models.DefaultOrderSettings()
		}

		if params.Type == models.Takeaway && settings.RequirePhoneTakeout && params.CustomerPhone == "" {
			return ErrPhoneRequired
		}
		if params.Source == models.SourceQRCode && !settings.AllowQROrdering {
			return ErrQRDisabled
		}

		now := time.Now().UTC()

		seq, err := st.NextOrderSequence(ctx, outlet.ID, now)
		if err != nil {
			return err
		}

		o := &models.Order{
			UUID:   uuid.New(),
			Number: models.FormatOrderNumber(outlet.NumberPrefix(settings.OrderNumberPrefix), now, seq),

			OutletID:         params.OutletID,
			TableID:          params.TableID,
			CombinedTableIDs: params.CombinedTableIDs,
			TableSessionID:   params.TableSessionID,
			CreatedByID:      params.CreatedByID,

			Status: models.StatusPending,
			Type:   params.Type,
			Source: params.Source,

			PartyName:     params.PartyName,
			CustomerName:  params.CustomerName,
			CustomerPhone: params.CustomerPhone,
			CustomerNotes: params.CustomerNotes,
			KitchenNotes:  params.KitchenNotes,

			EstimatedPrepTime: settings.DefaultPrepTime,
		}

		if outlet.AutoAcceptOrders || settings.AutoAcceptOrders {
			o.SetStatus(models.StatusConfirmed, now, nil)
		}

		if err := st.CreateOrder(ctx, o); err != nil {
			return err
		}

		ticketSeq, err := st.NextTicketSequence(ctx, now)
		if err != nil {
			return err
		}
		ticket := &models.KitchenTicket{
			OrderID:      o.ID,
			TicketNumber: models.FormatTicketNumber(ticketSeq),
			Priority:     models.PriorityNormal,
			Notes:        params.KitchenNotes,
		}
		if err := st.CreateTicket(ctx, ticket); err != nil {
			return err
		}

		if err := tables.Claim(ctx, st, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order_created", fmt.Sprintf("Created order %s", order.Number), "", map[string]interface{}{
		"order_id":   order.ID,
		"order_type": string(order.Type),
		"status":     string(order.Status),
	})

	if order.Status == models.StatusConfirmed {
		s.dispatch.NewOrder(ctx, order)
	}

	return order, nil
}

// AddItemParams describes one line item to add.
type AddItemParams struct {
	OrderID    int64
	MenuItemID int64
	VariantID  *int64
	Quantity   int
	SeatNumber *int

	Addons              []models.Addon
	SpecialInstructions string
}

// AddItem appends a line item to an open order, snapshotting the menu
// name and price, and recomputes the bill in the same transaction.
func (s *Service) AddItem(ctx context.Context, params AddItemParams) (*models.Order, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, params.OrderID)
		if err != nil {
			return err
		}
		if !itemsEditable(o.Status) {
			return ErrOrderLocked
		}

		catalog, err := st.LookupMenuItem(ctx, params.MenuItemID, params.VariantID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrItemUnavailable
			}
			return err
		}

		item := &models.OrderItem{
			OrderID:    o.ID,
			MenuItemID: params.MenuItemID,
			VariantID:  params.VariantID,
			SeatNumber: params.SeatNumber,

			ItemName:    catalog.Name,
			VariantName: catalog.VariantName,
			UnitPrice:   catalog.UnitPrice,
			Quantity:    params.Quantity,

			Addons:      params.Addons,
			AddonsTotal: models.SumAddons(params.Addons),

			Status:              models.ItemPending,
			SpecialInstructions: params.SpecialInstructions,
		}
		item.RecalculateTotal()

		if err := st.AddOrderItem(ctx, item); err != nil {
			return err
		}
		o.Items = append(o.Items, *item)

		if err := s.recalculate(ctx, st, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch.OrderUpdated(ctx, order)
	return order, nil
}

// RemoveItem deletes a line item from an open order and recomputes the
// bill.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !itemsEditable(o.Status) {
			return ErrOrderLocked
		}

		idx := findItem(o.Items, itemID)
		if idx < 0 {
			return storage.ErrNotFound
		}

		if err := st.DeleteOrderItem(ctx, itemID); err != nil {
			return err
		}
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)

		if err := s.recalculate(ctx, st, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch.OrderUpdated(ctx, order)
	return order, nil
}

// AdjustItemQuantity changes a line item's quantity by delta. A resulting
// quantity of zero or less removes the item.
func (s *Service) AdjustItemQuantity(ctx context.Context, orderID, itemID int64, delta int) (*models.Order, error) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !itemsEditable(o.Status) {
			return ErrOrderLocked
		}

		idx := findItem(o.Items, itemID)
		if idx < 0 {
			return storage.ErrNotFound
		}

		item := &o.Items[idx]
		item.Quantity += delta

		if item.Quantity <= 0 {
			if err := st.DeleteOrderItem(ctx, itemID); err != nil {
				return err
			}
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
		} else {
			item.RecalculateTotal()
			if err := st.UpdateOrderItem(ctx, item); err != nil {
				return err
			}
		}

		if err := s.recalculate(ctx, st, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch.OrderUpdated(ctx, order)
	return order, nil
}

// ApplyDiscount sets the order discount and recomputes the bill. A
// positive percentage is authoritative; amount is used as entered
// otherwise.
func (s *Service) ApplyDiscount(ctx context.Context, orderID int64, percentage, amount decimal.Decimal, reason string) (*models.Order, error) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return ErrOrderLocked
		}

		o.DiscountPercentage = percentage
		o.DiscountAmount = amount
		o.DiscountReason = reason

		if err := s.recalculate(ctx, st, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch.OrderUpdated(ctx, order)
	return order, nil
}

// UpdateStatus applies one transition along the order lifecycle and
// returns what changed. Cancellation goes through Cancel so its guards
// and table-release semantics apply.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus, actorID *int64, actorName string) (*StatusChange, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next == models.StatusCancelled {
		return s.Cancel(ctx, orderID, actorID, actorName)
	}

	var change *StatusChange

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, next)
		}

		old := o.Status
		o.SetStatus(next, time.Now().UTC(), actorID)
		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		// A completed order no longer holds its tables unless another
		// live order claims them.
		if next == models.StatusCompleted {
			if err := tables.ReleaseIfUnclaimed(ctx, st, o, tables.PaymentActiveSet); err != nil {
				return err
			}
		}

		change = &StatusChange{Order: o, Old: old, New: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change.New == models.StatusConfirmed {
		s.dispatch.NewOrder(ctx, change.Order)
	} else {
		s.dispatch.StatusChanged(ctx, change.Order, change.Old, change.New, actorName)
	}

	return change, nil
}

// Cancel voids an order. Paid and completed orders cannot be cancelled;
// the order's tables are freed unless another live order claims them.
func (s *Service) Cancel(ctx context.Context, orderID int64, actorID *int64, actorName string) (*StatusChange, error) {
	var change *StatusChange

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		switch {
		case o.Status == models.StatusCancelled:
			return ErrOrderCancelled
		case o.Status == models.StatusCompleted:
			return ErrOrderCompleted
		case o.IsPaid() && o.TotalAmount.IsPositive():
			return ErrOrderPaid
		}

		old := o.Status
		o.SetStatus(models.StatusCancelled, time.Now().UTC(), nil)
		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if err := tables.ReleaseIfUnclaimed(ctx, st, o, tables.CancelActiveSet); err != nil {
			return err
		}

		change = &StatusChange{Order: o, Old: old, New: models.StatusCancelled}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch.StatusChanged(ctx, change.Order, change.Old, change.New, actorName)
	return change, nil
}

// Abandon deletes an empty order that never went to the kitchen, freeing
// its tables. Anything with items or past confirmation must be cancelled
// instead.
func (s *Service) Abandon(ctx context.Context, orderID int64) error {
	return s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		editable := o.Status == models.StatusPending || o.Status == models.StatusConfirmed
		if !editable || len(o.Items) > 0 {
			return ErrNotAbandonable
		}

		if err := st.DeleteOrder(ctx, o.ID); err != nil {
			return err
		}

		return tables.ReleaseIfUnclaimed(ctx, st, o, tables.PaymentActiveSet)
	})
}

// Get returns the order with its live items.
func (s *Service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// recalculate re-derives the bill from the live items and the outlet's
// effective tax rates, and persists the order.
func (s *Service) recalculate(ctx context.Context, st storage.Store, o *models.Order) error {
	outlet, err := st.GetOutlet(ctx, o.OutletID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	o.CalculateTotals(taxes.Resolve(ctx, st, outlet))
	return st.UpdateOrder(ctx, o)
}

func itemsEditable(status models.OrderStatus) bool {
	return status == models.StatusPending || status == models.StatusConfirmed
}

func findItem(items []models.OrderItem, itemID int64) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}
