// Package kitchen implements the kitchen display workflow: start
// preparing, bump, recall and priority changes, plus the event fan-out to
// connected displays.
//
// The workflow operations return a soft (ok, message) result instead of
// an error: a guard failure (wrong status, unknown ticket) is a normal
// outcome the display shows to the cook, and must leave the order
// untouched.
package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafepos/internal/logger"
	"cafepos/internal/models"
	"cafepos/internal/storage"
)

// guardError is a workflow guard failure carried out of a transaction
// callback. Its text is the operator-facing message.
type guardError string

func (g guardError) Error() string { return string(g) }

// Service coordinates kitchen workflow against the store and dispatcher.
type Service struct {
	store    storage.Store
	dispatch *Dispatcher
	log      *logger.Logger
}

// NewService creates the kitchen workflow service.
func NewService(store storage.Store, dispatch *Dispatcher, log *logger.Logger) *Service {
	return &Service{store: store, dispatch: dispatch, log: log}
}

// StartPreparing moves a confirmed order to preparing. The ticket's
// started_at is stamped only the first time prep begins, so a later
// recall keeps the original start time.
func (s *Service) StartPreparing(ctx context.Context, orderID int64, actorID *int64, actorName string) (bool, string) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != models.StatusConfirmed {
			return guardError("Order is not in confirmed status")
		}

		now := time.Now().UTC()
		o.SetStatus(models.StatusPreparing, now, nil)
		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		ticket, err := st.GetTicketByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				order = o
				return nil
			}
			return err
		}
		if ticket.StartedAt == nil {
			ticket.StartedAt = &now
		}
		if actorID != nil {
			ticket.AssignedToID = actorID
		}
		if err := st.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return s.failed(err, "kitchen_start_failed", orderID)
	}

	s.dispatch.StatusChanged(ctx, order, models.StatusConfirmed, models.StatusPreparing, actorName)
	return true, "Order moved to preparing"
}

// Bump marks a preparing order as ready and stamps the ticket's
// completed_at.
func (s *Service) Bump(ctx context.Context, orderID int64, actorID *int64, actorName string) (bool, string) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != models.StatusPreparing {
			return guardError("Order is not in preparing status")
		}

		now := time.Now().UTC()
		o.SetStatus(models.StatusReady, now, nil)
		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		ticket, err := st.GetTicketByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				order = o
				return nil
			}
			return err
		}
		ticket.CompletedAt = &now
		if err := st.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return s.failed(err, "kitchen_bump_failed", orderID)
	}

	s.dispatch.Bumped(ctx, order, actorName)
	return true, "Order bumped to ready"
}

// Recall pulls a ready order back to preparing, clearing the ready
// timestamps on both the order and the ticket so a later bump restamps
// them.
func (s *Service) Recall(ctx context.Context, orderID int64, actorID *int64, actorName string) (bool, string) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != models.StatusReady {
			return guardError("Order is not in ready status")
		}

		// Recall rewinds rather than progresses, so it bypasses
		// SetStatus and clears the stamps the bump made.
		o.Status = models.StatusPreparing
		o.PreparedAt = nil
		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		ticket, err := st.GetTicketByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				order = o
				return nil
			}
			return err
		}
		ticket.CompletedAt = nil
		if err := st.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return s.failed(err, "kitchen_recall_failed", orderID)
	}

	s.dispatch.StatusChanged(ctx, order, models.StatusReady, models.StatusPreparing, actorName)
	return true, "Order recalled to preparing"
}

// SetPriority changes a ticket's priority.
func (s *Service) SetPriority(ctx context.Context, orderID int64, priority models.TicketPriority, actorID *int64, actorName string) (bool, string) {
	if !priority.Valid() {
		return false, "Invalid priority value"
	}

	var (
		order *models.Order
		old   models.TicketPriority
	)

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		ticket, err := st.GetTicketByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return guardError("Order has no kitchen ticket")
			}
			return err
		}

		old = ticket.Priority
		ticket.Priority = priority
		if err := st.UpdateTicket(ctx, ticket); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return s.failed(err, "kitchen_priority_failed", orderID)
	}

	s.dispatch.PriorityChanged(ctx, order, old, priority, actorName)
	return true, fmt.Sprintf("Priority changed to %s", priority)
}

// failed maps a transaction error to the soft result: guard failures pass
// their message through, anything else is logged.
func (s *Service) failed(err error, action string, orderID int64) (bool, string) {
	var guard guardError
	if errors.As(err, &guard) {
		return false, guard.Error()
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, "Order not found"
	}
	s.log.Error(action, "Kitchen operation failed", "", err, map[string]interface{}{
		"order_id": orderID,
	})
	return false, "Unable to update order"
}
