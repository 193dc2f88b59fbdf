// Package payments settles orders. Payments are append-only: paid_amount
// is always re-derived from the sum of completed payments, and
// corrections are recorded as refund rows rather than edits. Fully paying
// a ready or served order completes it and releases its tables.
package payments

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
	"cafepos/internal/storage"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrInvalidMethod = errors.New("invalid payment method")
)

// Service records payments and refunds against orders.
type Service struct {
	store    storage.Store
	dispatch *kitchen.Dispatcher
	log      *logger.Logger
}

// NewService creates the payment service.
func NewService(store storage.Store, dispatch *kitchen.Dispatcher, log *logger.Logger) *Service {
	return &Service{store: store, dispatch: dispatch, log: log}
}

// RecordParams describes one settlement.
type RecordParams struct {
	OrderID int64
	Amount  decimal.Decimal
	Method  models.PaymentMethod

	// AmountTendered is the cash handed over; change is derived from it.
	AmountTendered *decimal.Decimal

	TransactionID   string
	ReferenceNumber string
	Notes           string

	ProcessedByID   *int64
	ProcessedByName string
}

// Record settles part or all of an order. The order's paid_amount is
// re-derived from completed payments. When the bill is covered and the
// order is ready or served it completes automatically.
func (s *Service) Record(ctx context.Context, params RecordParams) (*models.Payment, *models.Order, error) {
	if !params.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if !params.Method.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidMethod, params.Method)
	}

	var (
		payment      *models.Payment
		order        *models.Order
		completedNow bool
		oldStatus    models.OrderStatus
	)

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, params.OrderID)
		if err != nil {
			return err
		}

		p := &models.Payment{
			UUID:    uuid.New(),
			OrderID: o.ID,

			Amount: params.Amount,
			Method: params.Method,
			Status: models.PaymentCompleted,

			TransactionID:   params.TransactionID,
			ReferenceNumber: params.ReferenceNumber,
			AmountTendered:  params.AmountTendered,

			ProcessedByID: params.ProcessedByID,
			Notes:         params.Notes,
		}
		p.CalculateChange()

		if err := st.CreatePayment(ctx, p); err != nil {
			return err
		}

		paid, err := st.SumCompletedPayments(ctx, o.ID)
		if err != nil {
			return err
		}
		o.PaidAmount = paid

		if o.IsPaid() && (o.Status == models.StatusReady || o.Status == models.StatusServed) {
			oldStatus = o.Status
			o.SetStatus(models.StatusCompleted, time.Now().UTC(), nil)
			completedNow = true
		}

		if err := st.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if o.IsPaid() {
			if err := tables.ReleaseIfUnclaimed(ctx, st, o, tables.PaymentActiveSet); err != nil {
				return err
			}
		}

		payment = p
		order = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("payment_recorded", fmt.Sprintf("Recorded %s payment on order %s", params.Method, order.Number), "", map[string]interface{}{
		"order_id": order.ID,
		"amount":   params.Amount.String(),
		"paid":     order.IsPaid(),
	})

	if completedNow {
		s.dispatch.StatusChanged(ctx, order, oldStatus, models.StatusCompleted, params.ProcessedByName)
	}

	return payment, order, nil
}

// Refund records a refund row against an order. The original payments
// stay untouched and the order's paid_amount is not reduced; the refund
// exists as bookkeeping evidence.
func (s *Service) Refund(ctx context.Context, orderID int64, amount decimal.Decimal, method models.PaymentMethod, reason string, processedByID *int64) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	var payment *models.Payment

	err := s.store.WithTx(ctx, func(st storage.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		p := &models.Payment{
			UUID:    uuid.New(),
			OrderID: o.ID,

			Amount: amount,
			Method: method,
			Status: models.PaymentRefunded,

			ProcessedByID: processedByID,
			Notes:         reason,
		}
		if err := st.CreatePayment(ctx, p); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// List returns every payment recorded against an order, oldest first.
func (s *Service) List(ctx context.Context, orderID int64) ([]models.Payment, error) {
	return s.store.ListPayments(ctx, orderID)
}
