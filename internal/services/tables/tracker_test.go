package tables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cafepos/internal/models"
	"cafepos/internal/storage"
)

func seedFloor(t *testing.T) *storage.Memory {
	t.Helper()
	store := storage.NewMemory()
	store.SeedTable(&models.Table{ID: 1, Number: "T1", IsActive: true})
	store.SeedTable(&models.Table{ID: 2, Number: "T2", IsActive: true})
	return store
}

func dineInAt(t *testing.T, store *storage.Memory, tableID int64, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		TableID: &tableID,
		Status:  status,
		Type:    models.DineIn,
	}
	require.NoError(t, store.CreateOrder(context.Background(), order))
	return order
}

func tableStatus(t *testing.T, store *storage.Memory, id int64) models.TableStatus {
	t.Helper()
	table, err := store.GetTable(context.Background(), id)
	require.NoError(t, err)
	return table.Status
}

func TestClaimOccupiesAllTables(t *testing.T) {
	ctx := context.Background()
	store := seedFloor(t)

	primary := int64(1)
	order := &models.Order{
		TableID:          &primary,
		CombinedTableIDs: []int64{2},
		Type:             models.DineIn,
		Status:           models.StatusPending,
	}
	require.NoError(t, store.CreateOrder(ctx, order))
	require.NoError(t, Claim(ctx, store, order))

	require.Equal(t, models.TableOccupied, tableStatus(t, store, 1))
	require.Equal(t, models.TableOccupied, tableStatus(t, store, 2))
}

func TestClaimIgnoresTakeaway(t *testing.T) {
	ctx := context.Background()
	store := seedFloor(t)

	order := &models.Order{Type: models.Takeaway, Status: models.StatusPending}
	require.NoError(t, store.CreateOrder(ctx, order))
	require.NoError(t, Claim(ctx, store, order))

	require.Equal(t, models.TableVacant, tableStatus(t, store, 1))
}

func TestLastClaimantReleasesTable(t *testing.T) {
	ctx := context.Background()
	store := seedFloor(t)

	first := dineInAt(t, store, 1, models.StatusServed)
	second := dineInAt(t, store, 1, models.StatusConfirmed)
	require.NoError(t, Claim(ctx, store, first))
	require.NoError(t, Claim(ctx, store, second))

	// The second party is still eating, so settling the first order must
	// not free the table.
	require.NoError(t, ReleaseIfUnclaimed(ctx, store, first, PaymentActiveSet))
	require.Equal(t, models.TableOccupied, tableStatus(t, store, 1))

	second.Status = models.StatusCompleted
	require.NoError(t, store.UpdateOrder(ctx, second))
	require.NoError(t, ReleaseIfUnclaimed(ctx, store, second, PaymentActiveSet))
	require.Equal(t, models.TableVacant, tableStatus(t, store, 1))
}

func TestCancelReleaseIgnoresServedOrders(t *testing.T) {
	ctx := context.Background()
	store := seedFloor(t)

	served := dineInAt(t, store, 1, models.StatusServed)
	cancelled := dineInAt(t, store, 1, models.StatusCancelled)
	require.NoError(t, Claim(ctx, store, served))

	// Under cancel semantics a served co-claimant does not hold the table.
	require.NoError(t, ReleaseIfUnclaimed(ctx, store, cancelled, CancelActiveSet))
	require.Equal(t, models.TableVacant, tableStatus(t, store, 1))

	// Under payment semantics it does.
	require.NoError(t, store.SetTableStatus(ctx, 1, models.TableOccupied))
	require.NoError(t, ReleaseIfUnclaimed(ctx, store, cancelled, PaymentActiveSet))
	require.Equal(t, models.TableOccupied, tableStatus(t, store, 1))
}

func TestReleaseChecksCombinedClaims(t *testing.T) {
	ctx := context.Background()
	store := seedFloor(t)

	primary := int64(1)
	combiner := &models.Order{
		TableID:          &primary,
		CombinedTableIDs: []int64{2},
		Type:             models.DineIn,
		Status:           models.StatusPreparing,
	}
	require.NoError(t, store.CreateOrder(ctx, combiner))
	require.NoError(t, Claim(ctx, store, combiner))

	// Another order at table 2 only; the combiner still claims table 2.
	other := dineInAt(t, store, 2, models.StatusServed)
	require.NoError(t, Claim(ctx, store, other))

	require.NoError(t, ReleaseIfUnclaimed(ctx, store, other, PaymentActiveSet))
	require.Equal(t, models.TableOccupied, tableStatus(t, store, 2))
}
