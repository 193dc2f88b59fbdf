package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cafepos/internal/models"
)

// Memory is an in-memory Store. It backs the test suite and the embedded
// demo mode, and mirrors the Postgres store's semantics, including the
// duplicate-free daily sequences. Mutations inside WithTx are applied
// immediately; there is no rollback.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

type memMenuItem struct {
	name      string
	basePrice decimal.Decimal
	available bool
}

type memVariant struct {
	menuItemID int64
	name       string
	price      decimal.Decimal
}

type memState struct {
	orders   map[int64]*models.Order
	items    map[int64]*models.OrderItem
	payments map[int64]*models.Payment
	tickets  map[int64]*models.KitchenTicket
	tables   map[int64]*models.Table
	outlets  map[int64]*models.Outlet

	taxSettings   *models.TaxSettings
	orderSettings *models.OrderSettings

	menuItems map[int64]memMenuItem
	variants  map[int64]memVariant

	orderSeqs  map[string]int
	ticketSeqs map[string]int

	nextOrderID   int64
	nextItemID    int64
	nextPaymentID int64
	nextTicketID  int64
	nextTableID   int64
	nextOutletID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{state: &memState{
		orders:     make(map[int64]*models.Order),
		items:      make(map[int64]*models.OrderItem),
		payments:   make(map[int64]*models.Payment),
		tickets:    make(map[int64]*models.KitchenTicket),
		tables:     make(map[int64]*models.Table),
		outlets:    make(map[int64]*models.Outlet),
		menuItems:  make(map[int64]memMenuItem),
		variants:   make(map[int64]memVariant),
		orderSeqs:  make(map[string]int),
		ticketSeqs: make(map[string]int),
	}}
}

// WithTx serializes fn against the store's single lock.
func (m *Memory) WithTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{state: m.state})
}

func (m *Memory) tx() *memTx { return &memTx{state: m.state} }

func (m *Memory) CreateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().CreateOrder(ctx, order)
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetOrder(ctx, id)
}

func (m *Memory) UpdateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().UpdateOrder(ctx, order)
}

func (m *Memory) DeleteOrder(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().DeleteOrder(ctx, id)
}

func (m *Memory) NextOrderSequence(ctx context.Context, outletID int64, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().NextOrderSequence(ctx, outletID, day)
}

func (m *Memory) CountActiveClaims(ctx context.Context, tableID, excludeOrderID int64, statuses []models.OrderStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().CountActiveClaims(ctx, tableID, excludeOrderID, statuses)
}

func (m *Memory) AddOrderItem(ctx context.Context, item *models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().AddOrderItem(ctx, item)
}

func (m *Memory) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().UpdateOrderItem(ctx, item)
}

func (m *Memory) DeleteOrderItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().DeleteOrderItem(ctx, id)
}

func (m *Memory) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().CreatePayment(ctx, payment)
}

func (m *Memory) ListPayments(ctx context.Context, orderID int64) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().ListPayments(ctx, orderID)
}

func (m *Memory) SumCompletedPayments(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().SumCompletedPayments(ctx, orderID)
}

func (m *Memory) CreateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().CreateTicket(ctx, ticket)
}

func (m *Memory) GetTicketByOrder(ctx context.Context, orderID int64) (*models.KitchenTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetTicketByOrder(ctx, orderID)
}

func (m *Memory) UpdateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().UpdateTicket(ctx, ticket)
}

func (m *Memory) NextTicketSequence(ctx context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().NextTicketSequence(ctx, day)
}

func (m *Memory) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetTable(ctx, id)
}

func (m *Memory) SetTableStatus(ctx context.Context, id int64, status models.TableStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().SetTableStatus(ctx, id, status)
}

func (m *Memory) GetOutlet(ctx context.Context, id int64) (*models.Outlet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetOutlet(ctx, id)
}

func (m *Memory) GetTaxSettings(ctx context.Context) (models.TaxSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetTaxSettings(ctx)
}

func (m *Memory) GetOrderSettings(ctx context.Context) (models.OrderSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().GetOrderSettings(ctx)
}

func (m *Memory) LookupMenuItem(ctx context.Context, menuItemID int64, variantID *int64) (*models.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().LookupMenuItem(ctx, menuItemID, variantID)
}

// SeedOutlet inserts an outlet, assigning an id when absent.
func (m *Memory) SeedOutlet(outlet *models.Outlet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if outlet.ID == 0 {
		m.state.nextOutletID++
		outlet.ID = m.state.nextOutletID
	}
	cp := *outlet
	m.state.outlets[outlet.ID] = &cp
}

// SeedTable inserts a table, assigning an id when absent.
func (m *Memory) SeedTable(table *models.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if table.ID == 0 {
		m.state.nextTableID++
		table.ID = m.state.nextTableID
	}
	if table.Status == "" {
		table.Status = models.TableVacant
	}
	cp := *table
	m.state.tables[table.ID] = &cp
}

// SeedMenuItem inserts a catalog item.
func (m *Memory) SeedMenuItem(id int64, name string, price decimal.Decimal, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.menuItems[id] = memMenuItem{name: name, basePrice: price, available: available}
}

// SeedMenuVariant inserts a catalog item variant.
func (m *Memory) SeedMenuVariant(id, menuItemID int64, name string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.variants[id] = memVariant{menuItemID: menuItemID, name: name, price: price}
}

// SeedTaxSettings sets the global tax settings row.
func (m *Memory) SeedTaxSettings(settings models.TaxSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.taxSettings = &settings
}

// SeedOrderSettings sets the global order settings row.
func (m *Memory) SeedOrderSettings(settings models.OrderSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.orderSettings = &settings
}

// memTx is the unlocked implementation all Memory methods delegate to.
// Inside WithTx it is handed to the callback directly.
type memTx struct {
	state *memState
}

func (t *memTx) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.CombinedTableIDs = append([]int64(nil), o.CombinedTableIDs...)
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func (t *memTx) CreateOrder(ctx context.Context, order *models.Order) error {
	t.state.nextOrderID++
	order.ID = t.state.nextOrderID
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	cp := copyOrder(order)
	cp.Items = nil
	t.state.orders[order.ID] = cp
	return nil
}

func (t *memTx) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	stored, ok := t.state.orders[id]
	if !ok {
		return nil, ErrNotFound
	}

	order := copyOrder(stored)
	order.Items = t.orderItems(id)
	return order, nil
}

func (t *memTx) orderItems(orderID int64) []models.OrderItem {
	var items []models.OrderItem
	for _, item := range t.state.items {
		if item.OrderID == orderID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (t *memTx) UpdateOrder(ctx context.Context, order *models.Order) error {
	stored, ok := t.state.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	order.UpdatedAt = time.Now().UTC()
	order.CreatedAt = stored.CreatedAt

	cp := copyOrder(order)
	cp.Items = nil
	t.state.orders[order.ID] = cp
	return nil
}

func (t *memTx) DeleteOrder(ctx context.Context, id int64) error {
	delete(t.state.orders, id)
	for itemID, item := range t.state.items {
		if item.OrderID == id {
			delete(t.state.items, itemID)
		}
	}
	for payID, pay := range t.state.payments {
		if pay.OrderID == id {
			delete(t.state.payments, payID)
		}
	}
	for ticketID, ticket := range t.state.tickets {
		if ticket.OrderID == id {
			delete(t.state.tickets, ticketID)
		}
	}
	return nil
}

func (t *memTx) NextOrderSequence(ctx context.Context, outletID int64, day time.Time) (int, error) {
	key := fmt.Sprintf("%d|%s", outletID, day.Format("2006-01-02"))
	t.state.orderSeqs[key]++
	return t.state.orderSeqs[key], nil
}

func (t *memTx) CountActiveClaims(ctx context.Context, tableID, excludeOrderID int64, statuses []models.OrderStatus) (int, error) {
	active := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		active[s] = true
	}

	count := 0
	for _, order := range t.state.orders {
		if order.ID == excludeOrderID || !active[order.Status] {
			continue
		}
		if order.TableID != nil && *order.TableID == tableID {
			count++
			continue
		}
		for _, combined := range order.CombinedTableIDs {
			if combined == tableID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (t *memTx) AddOrderItem(ctx context.Context, item *models.OrderItem) error {
	t.state.nextItemID++
	item.ID = t.state.nextItemID
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	cp := *item
	t.state.items[item.ID] = &cp
	return nil
}

func (t *memTx) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	if _, ok := t.state.items[item.ID]; !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	cp := *item
	t.state.items[item.ID] = &cp
	return nil
}

func (t *memTx) DeleteOrderItem(ctx context.Context, id int64) error {
	delete(t.state.items, id)
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	t.state.nextPaymentID++
	payment.ID = t.state.nextPaymentID
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	cp := *payment
	t.state.payments[payment.ID] = &cp
	return nil
}

func (t *memTx) ListPayments(ctx context.Context, orderID int64) ([]models.Payment, error) {
	var payments []models.Payment
	for _, pay := range t.state.payments {
		if pay.OrderID == orderID {
			payments = append(payments, *pay)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (t *memTx) SumCompletedPayments(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, pay := range t.state.payments {
		if pay.OrderID == orderID && pay.Status == models.PaymentCompleted {
			sum = sum.Add(pay.Amount)
		}
	}
	return sum, nil
}

func (t *memTx) CreateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	t.state.nextTicketID++
	ticket.ID = t.state.nextTicketID

	cp := *ticket
	t.state.tickets[ticket.ID] = &cp
	return nil
}

func (t *memTx) GetTicketByOrder(ctx context.Context, orderID int64) (*models.KitchenTicket, error) {
	for _, ticket := range t.state.tickets {
		if ticket.OrderID == orderID {
			cp := *ticket
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) UpdateTicket(ctx context.Context, ticket *models.KitchenTicket) error {
	if _, ok := t.state.tickets[ticket.ID]; !ok {
		return ErrNotFound
	}
	cp := *ticket
	t.state.tickets[ticket.ID] = &cp
	return nil
}

func (t *memTx) NextTicketSequence(ctx context.Context, day time.Time) (int, error) {
	key := day.Format("2006-01-02")
	t.state.ticketSeqs[key]++
	return t.state.ticketSeqs[key], nil
}

func (t *memTx) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	table, ok := t.state.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *table
	return &cp, nil
}

func (t *memTx) SetTableStatus(ctx context.Context, id int64, status models.TableStatus) error {
	table, ok := t.state.tables[id]
	if !ok {
		return ErrNotFound
	}
	table.Status = status
	table.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) GetOutlet(ctx context.Context, id int64) (*models.Outlet, error) {
	outlet, ok := t.state.outlets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *outlet
	return &cp, nil
}

func (t *memTx) GetTaxSettings(ctx context.Context) (models.TaxSettings, error) {
	if t.state.taxSettings == nil {
		return models.TaxSettings{}, ErrNotFound
	}
	return *t.state.taxSettings, nil
}

func (t *memTx) GetOrderSettings(ctx context.Context) (models.OrderSettings, error) {
	if t.state.orderSettings == nil {
		return models.OrderSettings{}, ErrNotFound
	}
	return *t.state.orderSettings, nil
}

func (t *memTx) LookupMenuItem(ctx context.Context, menuItemID int64, variantID *int64) (*models.CatalogItem, error) {
	menuItem, ok := t.state.menuItems[menuItemID]
	if !ok || !menuItem.available {
		return nil, ErrNotFound
	}

	item := &models.CatalogItem{Name: menuItem.name, UnitPrice: menuItem.basePrice}

	if variantID != nil {
		variant, ok := t.state.variants[*variantID]
		if !ok || variant.menuItemID != menuItemID {
			return nil, ErrNotFound
		}
		item.VariantName = variant.name
		item.UnitPrice = variant.price
	}

	return item, nil
}
