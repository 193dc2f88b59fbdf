package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus tracks kitchen prep at line-item granularity, independently
// of the order status.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemServed    ItemStatus = "served"
	ItemCancelled ItemStatus = "cancelled"
)

// Addon is an extra attached to a line item (e.g. "Extra shot").
type Addon struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem is one line within an order. Name, variant and unit price are
// snapshots taken when the item is added: later menu changes must never
// alter existing orders.
type OrderItem struct {
	ID      int64 `json:"id" db:"id"`
	OrderID int64 `json:"order_id" db:"order_id"`

	MenuItemID int64  `json:"menu_item_id" db:"menu_item_id"`
	VariantID  *int64 `json:"variant_id,omitempty" db:"variant_id"`

	// SeatNumber is used for split billing (1, 2, 3...).
	SeatNumber *int `json:"seat_number,omitempty" db:"seat_number"`

	ItemName    string          `json:"item_name" db:"item_name"`
	VariantName string          `json:"variant_name,omitempty" db:"variant_name"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`

	Addons      []Addon         `json:"addons,omitempty"`
	AddonsTotal decimal.Decimal `json:"addons_total" db:"addons_total"`

	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`

	Status              ItemStatus `json:"status" db:"status"`
	SpecialInstructions string     `json:"special_instructions,omitempty" db:"special_instructions"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecalculateTotal refreshes the line total from unit price, quantity and
// add-ons. Called on every quantity change.
func (i *OrderItem) RecalculateTotal() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Add(i.AddonsTotal)
}

// SumAddons returns the total price of the given add-ons.
func SumAddons(addons []Addon) decimal.Decimal {
	total := decimal.Zero
	for _, a := range addons {
		total = total.Add(a.Price)
	}
	return total
}

// CatalogItem is the menu snapshot returned by a catalog lookup at the
// moment an item is added to an order. It is never re-queried afterward.
type CatalogItem struct {
	Name        string
	VariantName string
	UnitPrice   decimal.Decimal
}
