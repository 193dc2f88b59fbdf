// Package storage persists the order engine's aggregates. The Store
// interface is implemented by Postgres (production) and Memory (tests and
// embedded demo mode). WithTx scopes a read-modify-write sequence to one
// transaction, which is how per-order consistency is enforced.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"cafepos/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary for orders, items, payments, kitchen
// tickets, tables, outlets, settings and catalog lookups.
type Store interface {
	// WithTx runs fn against a transaction-scoped Store. If fn returns an
	// error nothing is persisted.
	WithTx(ctx context.Context, fn func(Store) error) error

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	// NextOrderSequence allocates the next daily sequence number for an
	// outlet under the store's locking, never returning duplicates.
	NextOrderSequence(ctx context.Context, outletID int64, day time.Time) (int, error)

	// CountActiveClaims counts orders other than excludeOrderID in one of
	// the given statuses that claim the table as primary or combined.
	CountActiveClaims(ctx context.Context, tableID, excludeOrderID int64, statuses []models.OrderStatus) (int, error)

	AddOrderItem(ctx context.Context, item *models.OrderItem) error
	UpdateOrderItem(ctx context.Context, item *models.OrderItem) error
	DeleteOrderItem(ctx context.Context, id int64) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, orderID int64) ([]models.Payment, error)
	SumCompletedPayments(ctx context.Context, orderID int64) (decimal.Decimal, error)

	CreateTicket(ctx context.Context, ticket *models.KitchenTicket) error
	GetTicketByOrder(ctx context.Context, orderID int64) (*models.KitchenTicket, error)
	UpdateTicket(ctx context.Context, ticket *models.KitchenTicket) error
	NextTicketSequence(ctx context.Context, day time.Time) (int, error)

	GetTable(ctx context.Context, id int64) (*models.Table, error)
	SetTableStatus(ctx context.Context, id int64, status models.TableStatus) error

	GetOutlet(ctx context.Context, id int64) (*models.Outlet, error)
	GetTaxSettings(ctx context.Context) (models.TaxSettings, error)
	GetOrderSettings(ctx context.Context) (models.OrderSettings, error)

	// LookupMenuItem snapshots name and unit price for an item (and
	// optional variant) at add-to-order time.
	LookupMenuItem(ctx context.Context, menuItemID int64, variantID *int64) (*models.CatalogItem, error)
}
