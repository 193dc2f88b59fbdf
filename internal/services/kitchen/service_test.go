package kitchen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafepos/internal/logger"
	"cafepos/internal/models"
	"cafepos/internal/storage"
)

// capturePublisher records every broadcast event for assertions.
type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(ctx context.Context, event interface{}) error {
	p.events = append(p.events, event.(Event))
	return nil
}

func (p *capturePublisher) last(t *testing.T) Event {
	t.Helper()
	require.NotEmpty(t, p.events)
	return p.events[len(p.events)-1]
}

type fixture struct {
	store *storage.Memory
	pub   *capturePublisher
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemory()
	store.SeedTable(&models.Table{ID: 1, Number: "T1", IsActive: true})

	pub := &capturePublisher{}
	log := logger.NewNop()
	return &fixture{
		store: store,
		pub:   pub,
		svc:   NewService(store, NewDispatcher(pub, store, log), log),
	}
}

func (f *fixture) seedOrder(t *testing.T, status models.OrderStatus) *models.Order {
	t.Helper()
	ctx := context.Background()
	tableID := int64(1)
	order := &models.Order{
		Number:  "CC2608230001",
		TableID: &tableID,
		Status:  status,
		Type:    models.DineIn,
	}
	require.NoError(t, f.store.CreateOrder(ctx, order))
	require.NoError(t, f.store.CreateTicket(ctx, &models.KitchenTicket{
		OrderID:      order.ID,
		TicketNumber: "K001",
		Priority:     models.PriorityNormal,
	}))
	return order
}

func (f *fixture) orderStatus(t *testing.T, id int64) models.OrderStatus {
	t.Helper()
	order, err := f.store.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return order.Status
}

func (f *fixture) ticket(t *testing.T, orderID int64) *models.KitchenTicket {
	t.Helper()
	ticket, err := f.store.GetTicketByOrder(context.Background(), orderID)
	require.NoError(t, err)
	return ticket
}

func TestStartPreparing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusConfirmed)
	cook := int64(9)

	ok, msg := f.svc.StartPreparing(ctx, order.ID, &cook, "Asha")

	require.True(t, ok, msg)
	assert.Equal(t, "Order moved to preparing", msg)
	assert.Equal(t, models.StatusPreparing, f.orderStatus(t, order.ID))

	ticket := f.ticket(t, order.ID)
	require.NotNil(t, ticket.StartedAt)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, cook, *ticket.AssignedToID)

	event := f.pub.last(t)
	assert.Equal(t, EventStatusChanged, event.Type)
	assert.Equal(t, "confirmed", event.OldStatus)
	assert.Equal(t, "preparing", event.NewStatus)
	assert.Equal(t, "Asha", event.ChangedBy)
}

func TestStartPreparingGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPending)

	ok, msg := f.svc.StartPreparing(ctx, order.ID, nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Order is not in confirmed status", msg)
	// A guard failure must leave the order untouched.
	assert.Equal(t, models.StatusPending, f.orderStatus(t, order.ID))
	assert.Empty(t, f.pub.events)
}

func TestBump(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPreparing)

	ok, msg := f.svc.Bump(ctx, order.ID, nil, "Asha")

	require.True(t, ok, msg)
	assert.Equal(t, models.StatusReady, f.orderStatus(t, order.ID))
	require.NotNil(t, f.ticket(t, order.ID).CompletedAt)

	updated, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PreparedAt)

	event := f.pub.last(t)
	assert.Equal(t, EventOrderBumped, event.Type)
	assert.Equal(t, "Asha", event.BumpedBy)
}

func TestBumpGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusServed)

	ok, msg := f.svc.Bump(ctx, order.ID, nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Order is not in preparing status", msg)
	assert.Equal(t, models.StatusServed, f.orderStatus(t, order.ID))
}

func TestRecallClearsReadyStamps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusConfirmed)

	ok, _ := f.svc.StartPreparing(ctx, order.ID, nil, "Asha")
	require.True(t, ok)
	ok, _ = f.svc.Bump(ctx, order.ID, nil, "Asha")
	require.True(t, ok)

	started := f.ticket(t, order.ID).StartedAt
	require.NotNil(t, started)

	ok, msg := f.svc.Recall(ctx, order.ID, nil, "Asha")

	require.True(t, ok)
	assert.Equal(t, "Order recalled to preparing", msg)
	assert.Equal(t, models.StatusPreparing, f.orderStatus(t, order.ID))

	updated, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.PreparedAt)

	ticket := f.ticket(t, order.ID)
	assert.Nil(t, ticket.CompletedAt)
	// The original prep start survives a recall.
	require.NotNil(t, ticket.StartedAt)
	assert.Equal(t, *started, *ticket.StartedAt)
}

func TestRecallGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPreparing)

	ok, msg := f.svc.Recall(ctx, order.ID, nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Order is not in ready status", msg)
}

func TestSetPriority(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPreparing)

	ok, msg := f.svc.SetPriority(ctx, order.ID, models.PriorityRush, nil, "Asha")

	require.True(t, ok)
	assert.Equal(t, "Priority changed to rush", msg)
	assert.Equal(t, models.PriorityRush, f.ticket(t, order.ID).Priority)

	event := f.pub.last(t)
	assert.Equal(t, EventPriorityChanged, event.Type)
	assert.Equal(t, "normal", event.OldPriority)
	assert.Equal(t, "rush", event.NewPriority)
}

func TestSetPriorityInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPreparing)

	ok, msg := f.svc.SetPriority(ctx, order.ID, "urgent", nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Invalid priority value", msg)
	assert.Equal(t, models.PriorityNormal, f.ticket(t, order.ID).Priority)
}

func TestSetPriorityWithoutTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order := &models.Order{Status: models.StatusPreparing, Type: models.Takeaway}
	require.NoError(t, f.store.CreateOrder(ctx, order))

	ok, msg := f.svc.SetPriority(ctx, order.ID, models.PriorityHigh, nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Order has no kitchen ticket", msg)
}

func TestOperationsOnUnknownOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ok, msg := f.svc.Bump(ctx, 404, nil, "Asha")

	assert.False(t, ok)
	assert.Equal(t, "Order not found", msg)
}

func TestBuildOrderSnapshot(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusConfirmed)
	order.Items = []models.OrderItem{{
		ItemName: "Masala Dosa",
		Quantity: 2,
		Status:   models.ItemPending,
		Addons:   []models.Addon{{Name: "Extra chutney"}},
	}}

	table, err := f.store.GetTable(context.Background(), 1)
	require.NoError(t, err)
	ticket := f.ticket(t, order.ID)

	snapshot := BuildOrderSnapshot(order, table, ticket, order.CreatedAt.Add(5*time.Minute))

	assert.Equal(t, order.Number, snapshot.OrderNumber)
	assert.Equal(t, "K001", snapshot.TicketNumber)
	assert.Equal(t, "T1", snapshot.Table)
	assert.Equal(t, 5, snapshot.ElapsedMinutes)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, []string{"Extra chutney"}, snapshot.Items[0].Addons)
}
