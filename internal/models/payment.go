package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was settled
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodUPI    PaymentMethod = "upi"
	MethodWallet PaymentMethod = "wallet"
	MethodSplit  PaymentMethod = "split"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI, MethodWallet, MethodSplit:
		return true
	}
	return false
}

// Payment is one settlement event against an order. Completed payments
// are append-only evidence: corrections are recorded as new payments
// (refunds), never as edits to a historical amount.
type Payment struct {
	ID      int64     `json:"id" db:"id"`
	UUID    uuid.UUID `json:"uuid" db:"uuid"`
	OrderID int64     `json:"order_id" db:"order_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Method PaymentMethod   `json:"method" db:"method"`
	Status PaymentStatus   `json:"status" db:"status"`

	TransactionID   string `json:"transaction_id,omitempty" db:"transaction_id"`
	ReferenceNumber string `json:"reference_number,omitempty" db:"reference_number"`

	// Cash handling: tendered is what the customer handed over, change is
	// derived from it. Both are nil for non-cash methods.
	AmountTendered *decimal.Decimal `json:"amount_tendered,omitempty" db:"amount_tendered"`
	ChangeAmount   *decimal.Decimal `json:"change_amount,omitempty" db:"change_amount"`

	ProcessedByID *int64 `json:"processed_by_id,omitempty" db:"processed_by_id"`
	Notes         string `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CalculateChange derives the change returned to the customer for cash
// payments with a tendered amount. No-op otherwise.
func (p *Payment) CalculateChange() {
	if p.Method != MethodCash || p.AmountTendered == nil {
		return
	}
	change := p.AmountTendered.Sub(p.Amount)
	p.ChangeAmount = &change
}
