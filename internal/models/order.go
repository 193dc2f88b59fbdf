package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderType represents how the order is fulfilled
type OrderType string

const (
	DineIn   OrderType = "dine_in"
	Takeaway OrderType = "takeaway"
	Delivery OrderType = "delivery"
)

// OrderSource represents where the order originated
type OrderSource string

const (
	SourcePOS    OrderSource = "pos"
	SourceQRCode OrderSource = "qr_code"
	SourceWaiter OrderSource = "waiter"
	SourceOnline OrderSource = "online"
)

var hundred = decimal.NewFromInt(100)

// statusTransitions is the legal transition graph. Cancellation is legal
// from every non-terminal state; ready goes back to preparing only via
// the kitchen recall path, and completes directly when the bill is
// settled before the order is marked served.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusPreparing, StatusCompleted, StatusCancelled},
	StatusServed:    {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusServed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	switch t {
	case DineIn, Takeaway, Delivery:
		return true
	}
	return false
}

// Valid reports whether s is a known order source.
func (s OrderSource) Valid() bool {
	switch s {
	case SourcePOS, SourceQRCode, SourceWaiter, SourceOnline:
		return true
	}
	return false
}

// Order is one customer/party's tab. It is the unit of persistence and
// concurrency: every mutation (items, status, payments) happens inside a
// single transaction scoped to the order.
type Order struct {
	ID     int64     `json:"id" db:"id"`
	UUID   uuid.UUID `json:"uuid" db:"uuid"`
	Number string    `json:"order_number" db:"number"`

	OutletID         int64   `json:"outlet_id" db:"outlet_id"`
	TableID          *int64  `json:"table_id,omitempty" db:"table_id"`
	CombinedTableIDs []int64 `json:"combined_table_ids,omitempty"`
	TableSessionID   *int64  `json:"table_session_id,omitempty" db:"table_session_id"`
	CreatedByID      *int64  `json:"created_by_id,omitempty" db:"created_by_id"`
	ServedByID       *int64  `json:"served_by_id,omitempty" db:"served_by_id"`

	Status OrderStatus `json:"status" db:"status"`
	Type   OrderType   `json:"order_type" db:"type"`
	Source OrderSource `json:"order_source" db:"source"`

	// PartyName disambiguates multiple simultaneous orders at one table,
	// e.g. "Seat 2" or "Party A".
	PartyName     string `json:"party_name,omitempty" db:"party_name"`
	CustomerName  string `json:"customer_name,omitempty" db:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty" db:"customer_phone"`

	Subtotal           decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	DiscountReason     string          `json:"discount_reason,omitempty" db:"discount_reason"`
	CGSTAmount         decimal.Decimal `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount         decimal.Decimal `json:"sgst_amount" db:"sgst_amount"`
	ServiceCharge      decimal.Decimal `json:"service_charge" db:"service_charge"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount" db:"paid_amount"`

	CustomerNotes string `json:"customer_notes,omitempty" db:"customer_notes"`
	KitchenNotes  string `json:"kitchen_notes,omitempty" db:"kitchen_notes"`

	// EstimatedPrepTime is in minutes.
	EstimatedPrepTime int `json:"estimated_prep_time" db:"estimated_prep_time"`

	Items []OrderItem `json:"items"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	PreparedAt  *time.Time `json:"prepared_at,omitempty" db:"prepared_at"`
	ServedAt    *time.Time `json:"served_at,omitempty" db:"served_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// IsPaid reports whether completed payments cover the order total.
func (o *Order) IsPaid() bool {
	return o.PaidAmount.GreaterThanOrEqual(o.TotalAmount)
}

// BalanceDue returns the remaining amount owed, never negative.
func (o *Order) BalanceDue() decimal.Decimal {
	balance := o.TotalAmount.Sub(o.PaidAmount)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// ItemCount returns the total quantity across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for i := range o.Items {
		count += o.Items[i].Quantity
	}
	return count
}

// AllTableIDs returns the primary table plus any combined tables.
// Together they define which tables this order claims.
func (o *Order) AllTableIDs() []int64 {
	ids := make([]int64, 0, len(o.CombinedTableIDs)+1)
	if o.TableID != nil {
		ids = append(ids, *o.TableID)
	}
	ids = append(ids, o.CombinedTableIDs...)
	return ids
}

// CalculateTotals recomputes all monetary fields from the live line items
// and the resolved tax rates. A discount percentage, when set, is
// authoritative over any manually entered discount amount. Amounts are
// rounded to 2 decimal places, so repeated calls are stable.
func (o *Order) CalculateTotals(rates TaxRates) decimal.Decimal {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].TotalPrice)
	}
	o.Subtotal = subtotal

	if o.DiscountPercentage.IsPositive() {
		o.DiscountAmount = subtotal.Mul(o.DiscountPercentage).Div(hundred).Round(2)
	}

	taxable := subtotal.Sub(o.DiscountAmount)

	o.CGSTAmount = taxable.Mul(rates.CGSTRate).Div(hundred).Round(2)
	o.SGSTAmount = taxable.Mul(rates.SGSTRate).Div(hundred).Round(2)

	if rates.ServiceChargeEnabled {
		o.ServiceCharge = taxable.Mul(rates.ServiceChargeRate).Div(hundred).Round(2)
	} else {
		o.ServiceCharge = decimal.Zero
	}

	o.TotalAmount = taxable.Add(o.CGSTAmount).Add(o.SGSTAmount).Add(o.ServiceCharge)
	return o.TotalAmount
}

// SetStatus moves the order to next and stamps the one timestamp owned by
// that transition. Callers validate the transition with CanTransitionTo
// first; servedBy is recorded only on the served transition.
func (o *Order) SetStatus(next OrderStatus, now time.Time, servedBy *int64) {
	o.Status = next

	switch next {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusPreparing:
		// no timestamp owned by this transition
	case StatusReady:
		o.PreparedAt = &now
	case StatusServed:
		o.ServedAt = &now
		if servedBy != nil {
			o.ServedByID = servedBy
		}
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
}

// FormatOrderNumber builds the human order identifier:
// outlet prefix + YYMMDD + zero-padded daily sequence.
func FormatOrderNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", prefix, day.Format("060102"), seq)
}
