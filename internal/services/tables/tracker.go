// Package tables maintains table occupancy as a side effect of the order
// lifecycle. Several orders can claim the same table at once (split
// parties, combined tables), so release always re-checks for other live
// claimants first: the last claimant to finish frees the table.
package tables

import (
	"context"

	"cafepos/internal/models"
	"cafepos/internal/storage"
)

// PaymentActiveSet are the statuses that keep a table claimed when a
// settled or abandoned order releases it. A served order still holds its
// table until it is paid.
var PaymentActiveSet = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusServed,
}

// CancelActiveSet are the statuses that keep a table claimed when a
// cancelled order releases it. Served orders do not hold the table here.
var CancelActiveSet = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
}

// Claim marks every table the order uses as occupied. Only dine-in
// orders claim tables.
func Claim(ctx context.Context, st storage.Store, order *models.Order) error {
	if order.Type != models.DineIn {
		return nil
	}
	for _, tableID := range order.AllTableIDs() {
		if err := st.SetTableStatus(ctx, tableID, models.TableOccupied); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseIfUnclaimed frees each of the order's tables that no other order
// in one of the active statuses still claims, as primary or combined.
func ReleaseIfUnclaimed(ctx context.Context, st storage.Store, order *models.Order, active []models.OrderStatus) error {
	if order.Type != models.DineIn {
		return nil
	}
	for _, tableID := range order.AllTableIDs() {
		claims, err := st.CountActiveClaims(ctx, tableID, order.ID, active)
		if err != nil {
			return err
		}
		if claims == 0 {
			if err := st.SetTableStatus(ctx, tableID, models.TableVacant); err != nil {
				return err
			}
		}
	}
	return nil
}
