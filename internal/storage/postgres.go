package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cafepos/internal/database"
	"cafepos/internal/models"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Store on PostgreSQL via pgx.
type Postgres struct {
	q    pgQuerier
	pool *pgxpool.Pool
}

// NewPostgres creates a pool-backed store.
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{q: db.Pool, pool: db.Pool}
}

// WithTx runs fn inside a transaction. Nested calls reuse the enclosing
// transaction.
func (p *Postgres) WithTx(ctx context.Context, fn func(Store) error) error {
	if p.pool == nil {
		return fn(p)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{q: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (p *Postgres) CreateOrder(ctx context.Context, order *models.Order) error {
	err := p.q.QueryRow(ctx, database.InsertOrderSQL,
		order.UUID, order.Number, order.OutletID, order.TableID, order.TableSessionID, order.CreatedByID,
		order.Status, order.Type, order.Source, order.PartyName, order.CustomerName, order.CustomerPhone,
		order.Subtotal, order.DiscountAmount, order.DiscountPercentage, order.DiscountReason,
		order.CGSTAmount, order.SGSTAmount, order.ServiceCharge, order.TotalAmount, order.PaidAmount,
		order.CustomerNotes, order.KitchenNotes, order.EstimatedPrepTime, order.ConfirmedAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, tableID := range order.CombinedTableIDs {
		if _, err := p.q.Exec(ctx, database.InsertCombinedTableSQL, order.ID, tableID); err != nil {
			return fmt.Errorf("failed to insert combined table: %w", err)
		}
	}

	return nil
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	err := p.q.QueryRow(ctx, database.GetOrderSQL, id).Scan(
		&order.ID, &order.UUID, &order.Number, &order.OutletID, &order.TableID,
		&order.TableSessionID, &order.CreatedByID, &order.ServedByID,
		&order.Status, &order.Type, &order.Source, &order.PartyName,
		&order.CustomerName, &order.CustomerPhone,
		&order.Subtotal, &order.DiscountAmount, &order.DiscountPercentage, &order.DiscountReason,
		&order.CGSTAmount, &order.SGSTAmount, &order.ServiceCharge, &order.TotalAmount, &order.PaidAmount,
		&order.CustomerNotes, &order.KitchenNotes, &order.EstimatedPrepTime,
		&order.CreatedAt, &order.UpdatedAt, &order.ConfirmedAt, &order.PreparedAt,
		&order.ServedAt, &order.CompletedAt, &order.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := p.q.Query(ctx, database.GetCombinedTablesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get combined tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tableID int64
		if err := rows.Scan(&tableID); err != nil {
			return nil, err
		}
		order.CombinedTableIDs = append(order.CombinedTableIDs, tableID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := p.listOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (p *Postgres) UpdateOrder(ctx context.Context, order *models.Order) error {
	err := p.q.QueryRow(ctx, database.UpdateOrderSQL,
		order.ID, order.TableID, order.ServedByID, order.Status, order.PartyName,
		order.Subtotal, order.DiscountAmount, order.DiscountPercentage, order.DiscountReason,
		order.CGSTAmount, order.SGSTAmount, order.ServiceCharge,
		order.TotalAmount, order.PaidAmount,
		order.CustomerNotes, order.KitchenNotes, order.EstimatedPrepTime,
		order.ConfirmedAt, order.PreparedAt, order.ServedAt, order.CompletedAt, order.CancelledAt,
	).Scan(&order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteOrder(ctx context.Context, id int64) error {
	if _, err := p.q.Exec(ctx, database.DeleteOrderSQL, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (p *Postgres) NextOrderSequence(ctx context.Context, outletID int64, day time.Time) (int, error) {
	var seq int
	err := p.q.QueryRow(ctx, database.NextOrderSequenceSQL, outletID, day.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}
	return seq, nil
}

func (p *Postgres) CountActiveClaims(ctx context.Context, tableID, excludeOrderID int64, statuses []models.OrderStatus) (int, error) {
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}

	var count int
	err := p.q.QueryRow(ctx, database.CountActiveClaimsSQL, tableID, excludeOrderID, set).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count table claims: %w", err)
	}
	return count, nil
}

func (p *Postgres) AddOrderItem(ctx context.Context, item *models.OrderItem) error {
	err := p.q.QueryRow(ctx, database.InsertOrderItemSQL,
		item.OrderID, item.MenuItemID, item.VariantID, item.SeatNumber,
		item.ItemName, item.VariantName, item.UnitPrice, item.Quantity,
		item.Addons, item.AddonsTotal, item.TotalPrice, item.Status, item.SpecialInstructions,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	_, err := p.q.Exec(ctx, database.UpdateOrderItemSQL,
		item.ID, item.Quantity, item.TotalPrice, item.Status,
		item.SeatNumber, item.SpecialInstructions)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteOrderItem(ctx context.Context, id int64) error {
	if _, err := p.q.Exec(ctx, database.DeleteOrderItemSQL, id); err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	return nil
}

func (p *Postgres) listOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := p.q.Query(ctx, database.ListOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.MenuItemID, &item.VariantID, &item.SeatNumber,
			&item.ItemName, &item.VariantName, &item.UnitPrice, &item.Quantity,
			&item.Addons, &item.AddonsTotal, &item.TotalPrice, &item.Status,
			&item.SpecialInstructions, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Postgres) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := p.q.QueryRow(ctx, database.InsertPaymentSQL,
		payment.UUID, payment.OrderID, payment.Amount, payment.Method, payment.Status,
		payment.TransactionID, payment.ReferenceNumber, payment.AmountTendered, payment.ChangeAmount,
		payment.ProcessedByID, payment.Notes,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (p *Postgres) ListPayments(ctx context.Context, orderID int64) ([]models.Payment, error) {
	rows, err := p.q.Query(ctx, database.ListPaymentsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var pay models.Payment
		var tendered, change decimal.NullDecimal
		err := rows.Scan(
			&pay.ID, &pay.UUID, &pay.OrderID, &pay.Amount, &pay.Method, &pay.Status,
			&pay.TransactionID, &pay.ReferenceNumber, &tendered, &change,
			&pay.ProcessedByID, &pay.Notes, &pay.CreatedAt, &pay.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if tendered.Valid {
			pay.AmountTendered = &tendered.Decimal
		}
		if change.Valid {
			pay.ChangeAmount = &change.Decimal
		}
		payments = append(payments, pay)
	}
	return payments, rows.Err()
}

func (p *Postgres) SumCompletedPayments(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := p.q.QueryRow(ctx, database.SumCompletedPaymentsSQL, orderID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return sum, nil
}

func (p *Postgres) CreateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	err := p.q.QueryRow(ctx, database.InsertTicketSQL,
		ticket.OrderID, ticket.TicketNumber, ticket.Priority, ticket.Notes,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to insert kitchen ticket: %w", err)
	}
	return nil
}

func (p *Postgres) GetTicketByOrder(ctx context.Context, orderID int64) (*models.KitchenTicket, error) {
	ticket := &models.KitchenTicket{}
	err := p.q.QueryRow(ctx, database.GetTicketByOrderSQL, orderID).Scan(
		&ticket.ID, &ticket.OrderID, &ticket.TicketNumber, &ticket.Priority,
		&ticket.PrintedAt, &ticket.StartedAt, &ticket.CompletedAt,
		&ticket.AssignedToID, &ticket.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kitchen ticket: %w", err)
	}
	return ticket, nil
}

func (p *Postgres) UpdateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	_, err := p.q.Exec(ctx, database.UpdateTicketSQL,
		ticket.ID, ticket.Priority, ticket.PrintedAt, ticket.StartedAt,
		ticket.CompletedAt, ticket.AssignedToID, ticket.Notes)
	if err != nil {
		return fmt.Errorf("failed to update kitchen ticket: %w", err)
	}
	return nil
}

func (p *Postgres) NextTicketSequence(ctx context.Context, day time.Time) (int, error) {
	var seq int
	err := p.q.QueryRow(ctx, database.NextTicketSequenceSQL, day.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate ticket sequence: %w", err)
	}
	return seq, nil
}

func (p *Postgres) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	table := &models.Table{}
	err := p.q.QueryRow(ctx, database.GetTableSQL, id).Scan(
		&table.ID, &table.UUID, &table.OutletID, &table.Number, &table.Name,
		&table.Capacity, &table.Status, &table.IsActive, &table.CreatedAt, &table.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return table, nil
}

func (p *Postgres) SetTableStatus(ctx context.Context, id int64, status models.TableStatus) error {
	if _, err := p.q.Exec(ctx, database.SetTableStatusSQL, id, status); err != nil {
		return fmt.Errorf("failed to set table status: %w", err)
	}
	return nil
}

func (p *Postgres) GetOutlet(ctx context.Context, id int64) (*models.Outlet, error) {
	outlet := &models.Outlet{}
	err := p.q.QueryRow(ctx, database.GetOutletSQL, id).Scan(
		&outlet.ID, &outlet.Name, &outlet.Code, &outlet.OrderPrefix, &outlet.AutoAcceptOrders,
		&outlet.TaxEnabled, &outlet.CGSTRate, &outlet.SGSTRate,
		&outlet.ServiceChargeEnabled, &outlet.ServiceChargeRate,
		&outlet.IsActive, &outlet.CreatedAt, &outlet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outlet: %w", err)
	}
	return outlet, nil
}

func (p *Postgres) GetTaxSettings(ctx context.Context) (models.TaxSettings, error) {
	var settings models.TaxSettings
	err := p.q.QueryRow(ctx, database.GetTaxSettingsSQL).Scan(
		&settings.CGSTRate, &settings.SGSTRate,
		&settings.ServiceChargeEnabled, &settings.ServiceChargeRate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TaxSettings{}, ErrNotFound
	}
	if err != nil {
		return models.TaxSettings{}, fmt.Errorf("failed to get tax settings: %w", err)
	}
	return settings, nil
}

func (p *Postgres) GetOrderSettings(ctx context.Context) (models.OrderSettings, error) {
	var settings models.OrderSettings
	err := p.q.QueryRow(ctx, database.GetOrderSettingsSQL).Scan(
		&settings.AutoAcceptOrders, &settings.DefaultPrepTime, &settings.OrderNumberPrefix,
		&settings.AllowQROrdering, &settings.RequirePhoneTakeout,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OrderSettings{}, ErrNotFound
	}
	if err != nil {
		return models.OrderSettings{}, fmt.Errorf("failed to get order settings: %w", err)
	}
	return settings, nil
}

func (p *Postgres) LookupMenuItem(ctx context.Context, menuItemID int64, variantID *int64) (*models.CatalogItem, error) {
	item := &models.CatalogItem{}
	err := p.q.QueryRow(ctx, database.LookupMenuItemSQL, menuItemID).Scan(&item.Name, &item.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up menu item: %w", err)
	}

	if variantID != nil {
		var variantPrice decimal.Decimal
		err := p.q.QueryRow(ctx, database.LookupMenuVariantSQL, *variantID, menuItemID).Scan(&item.VariantName, &variantPrice)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up menu variant: %w", err)
		}
		item.UnitPrice = variantPrice
	}

	return item, nil
}
