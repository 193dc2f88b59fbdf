package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafepos/internal/models"
)

func TestSequencesAreIndependentPerOutletAndDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	today := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tomorrow := today.Add(24 * time.Hour)

	seq, err := store.NextOrderSequence(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = store.NextOrderSequence(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	// Another outlet and another day both start from 1.
	seq, err = store.NextOrderSequence(ctx, 2, today)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = store.NextOrderSequence(ctx, 1, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = store.NextTicketSequence(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestGetOrderReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	order := &models.Order{Status: models.StatusPending, Type: models.Takeaway}
	require.NoError(t, store.CreateOrder(ctx, order))

	first, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	first.Status = models.StatusCancelled

	second, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, second.Status)
}

func TestDeleteOrderCascades(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	order := &models.Order{Status: models.StatusPending, Type: models.Takeaway}
	require.NoError(t, store.CreateOrder(ctx, order))
	require.NoError(t, store.AddOrderItem(ctx, &models.OrderItem{OrderID: order.ID, ItemName: "Dosa", Quantity: 1}))
	require.NoError(t, store.CreateTicket(ctx, &models.KitchenTicket{OrderID: order.ID, TicketNumber: "K001"}))

	require.NoError(t, store.DeleteOrder(ctx, order.ID))

	_, err := store.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetTicketByOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSumCompletedPaymentsIgnoresRefunds(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	order := &models.Order{Status: models.StatusServed, Type: models.Takeaway}
	require.NoError(t, store.CreateOrder(ctx, order))

	pay := func(amount int64, status models.PaymentStatus) {
		require.NoError(t, store.CreatePayment(ctx, &models.Payment{
			OrderID: order.ID,
			Amount:  decimal.NewFromInt(amount),
			Method:  models.MethodCash,
			Status:  status,
		}))
	}
	pay(100, models.PaymentCompleted)
	pay(50, models.PaymentCompleted)
	pay(30, models.PaymentRefunded)
	pay(20, models.PaymentFailed)

	sum, err := store.SumCompletedPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", sum.StringFixed(2))
}

func TestWithTxAppliesMutations(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.SeedTable(&models.Table{ID: 1, Number: "T1"})

	err := store.WithTx(ctx, func(st Store) error {
		order := &models.Order{Status: models.StatusPending, Type: models.Takeaway}
		if err := st.CreateOrder(ctx, order); err != nil {
			return err
		}
		return st.SetTableStatus(ctx, 1, models.TableOccupied)
	})
	require.NoError(t, err)

	table, err := store.GetTable(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.Status)
}
