package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() TaxRates {
	return TaxRates{
		CGSTRate: decimal.NewFromFloat(2.5),
		SGSTRate: decimal.NewFromFloat(2.5),
	}
}

func lineItem(price int64, qty int) OrderItem {
	item := OrderItem{
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
	}
	item.RecalculateTotal()
	return item
}

func TestCalculateTotals(t *testing.T) {
	order := &Order{Items: []OrderItem{lineItem(100, 2)}}

	total := order.CalculateTotals(testRates())

	assert.Equal(t, "200.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", order.CGSTAmount.StringFixed(2))
	assert.Equal(t, "5.00", order.SGSTAmount.StringFixed(2))
	assert.Equal(t, "0.00", order.ServiceCharge.StringFixed(2))
	assert.Equal(t, "210.00", total.StringFixed(2))
}

func TestCalculateTotalsDiscountPercentage(t *testing.T) {
	order := &Order{
		Items:              []OrderItem{lineItem(100, 2)},
		DiscountPercentage: decimal.NewFromInt(10),
		// A manually entered amount must be overridden by the percentage.
		DiscountAmount: decimal.NewFromInt(50),
	}

	total := order.CalculateTotals(testRates())

	assert.Equal(t, "20.00", order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "4.50", order.CGSTAmount.StringFixed(2))
	assert.Equal(t, "4.50", order.SGSTAmount.StringFixed(2))
	assert.Equal(t, "189.00", total.StringFixed(2))
}

func TestCalculateTotalsDiscountAmount(t *testing.T) {
	order := &Order{
		Items:          []OrderItem{lineItem(100, 2)},
		DiscountAmount: decimal.NewFromInt(40),
	}

	total := order.CalculateTotals(testRates())

	assert.Equal(t, "40.00", order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "168.00", total.StringFixed(2))
}

func TestCalculateTotalsServiceCharge(t *testing.T) {
	rates := testRates()
	rates.ServiceChargeEnabled = true
	rates.ServiceChargeRate = decimal.NewFromInt(10)

	order := &Order{Items: []OrderItem{lineItem(100, 2)}}
	total := order.CalculateTotals(rates)

	assert.Equal(t, "20.00", order.ServiceCharge.StringFixed(2))
	assert.Equal(t, "230.00", total.StringFixed(2))
}

func TestCalculateTotalsIdempotent(t *testing.T) {
	order := &Order{
		Items:              []OrderItem{lineItem(333, 1)},
		DiscountPercentage: decimal.NewFromFloat(7.5),
	}

	first := order.CalculateTotals(testRates())
	second := order.CalculateTotals(testRates())

	assert.True(t, first.Equal(second), "recomputing must not drift: %s vs %s", first, second)
}

func TestCalculateTotalsEmptyOrder(t *testing.T) {
	order := &Order{}
	total := order.CalculateTotals(testRates())
	assert.Equal(t, "0.00", total.StringFixed(2))
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusPreparing, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusReady, StatusPreparing, true},
		{StatusReady, StatusCompleted, true},
		{StatusServed, StatusCompleted, true},
		{StatusServed, StatusReady, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	// Cancellation is legal from every non-terminal state.
	for _, from := range []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed} {
		assert.True(t, from.CanTransitionTo(StatusCancelled), "%s -> cancelled", from)
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	all := []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusServed, StatusCompleted, StatusCancelled}

	for _, terminal := range []OrderStatus{StatusCompleted, StatusCancelled} {
		require.True(t, terminal.Terminal())
		for _, to := range all {
			assert.False(t, terminal.CanTransitionTo(to), "%s -> %s", terminal, to)
		}
	}
}

func TestSetStatusStampsTimestamps(t *testing.T) {
	now := time.Now().UTC()
	waiter := int64(7)

	order := &Order{Status: StatusPending}

	order.SetStatus(StatusConfirmed, now, nil)
	require.NotNil(t, order.ConfirmedAt)

	order.SetStatus(StatusPreparing, now, nil)
	assert.Nil(t, order.PreparedAt)

	order.SetStatus(StatusReady, now, nil)
	require.NotNil(t, order.PreparedAt)

	order.SetStatus(StatusServed, now, &waiter)
	require.NotNil(t, order.ServedAt)
	require.NotNil(t, order.ServedByID)
	assert.Equal(t, waiter, *order.ServedByID)

	order.SetStatus(StatusCompleted, now, nil)
	require.NotNil(t, order.CompletedAt)
}

func TestIsPaidAndBalanceDue(t *testing.T) {
	order := &Order{
		TotalAmount: decimal.NewFromInt(210),
		PaidAmount:  decimal.NewFromInt(100),
	}
	assert.False(t, order.IsPaid())
	assert.Equal(t, "110.00", order.BalanceDue().StringFixed(2))

	order.PaidAmount = decimal.NewFromInt(250)
	assert.True(t, order.IsPaid())
	assert.Equal(t, "0.00", order.BalanceDue().StringFixed(2))
}

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "CC2608230042", FormatOrderNumber("CC", day, 42))
}

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "K007", FormatTicketNumber(7))
	assert.Equal(t, "K1234", FormatTicketNumber(1234))
}

func TestOutletNumberPrefix(t *testing.T) {
	outlet := &Outlet{OrderPrefix: "CAF", Code: "CC"}
	assert.Equal(t, "CAF", outlet.NumberPrefix("ORD"))

	outlet.OrderPrefix = ""
	assert.Equal(t, "CC", outlet.NumberPrefix("ORD"))

	outlet.Code = ""
	assert.Equal(t, "ORD", outlet.NumberPrefix("ORD"))
}

func TestRecalculateTotalWithAddons(t *testing.T) {
	item := OrderItem{
		UnitPrice: decimal.NewFromInt(40),
		Quantity:  2,
		Addons: []Addon{
			{Name: "Extra shot", Price: decimal.NewFromInt(30)},
			{Name: "Oat milk", Price: decimal.NewFromInt(20)},
		},
	}
	item.AddonsTotal = SumAddons(item.Addons)
	item.RecalculateTotal()

	assert.Equal(t, "50.00", item.AddonsTotal.StringFixed(2))
	assert.Equal(t, "130.00", item.TotalPrice.StringFixed(2))
}

func TestCalculateChange(t *testing.T) {
	tendered := decimal.NewFromInt(500)

	cash := &Payment{Method: MethodCash, Amount: decimal.NewFromInt(420), AmountTendered: &tendered}
	cash.CalculateChange()
	require.NotNil(t, cash.ChangeAmount)
	assert.Equal(t, "80.00", cash.ChangeAmount.StringFixed(2))

	card := &Payment{Method: MethodCard, Amount: decimal.NewFromInt(420)}
	card.CalculateChange()
	assert.Nil(t, card.ChangeAmount)
}

func TestAllTableIDs(t *testing.T) {
	primary := int64(3)
	order := &Order{TableID: &primary, CombinedTableIDs: []int64{4, 5}}
	assert.Equal(t, []int64{3, 4, 5}, order.AllTableIDs())

	takeaway := &Order{}
	assert.Empty(t, takeaway.AllTableIDs())
}
