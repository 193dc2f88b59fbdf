package models

import (
	"fmt"
	"time"
)

// TicketPriority is the manual time-pressure signal on a kitchen ticket
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
	PriorityRush   TicketPriority = "rush"
)

// Valid reports whether p is a known priority value.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityRush:
		return true
	}
	return false
}

// KitchenTicket (KOT) is the kitchen-facing work unit tied 1:1 to an
// order, created at order-creation time. Its ticket number comes from a
// daily sequence independent of order numbers.
type KitchenTicket struct {
	ID      int64 `json:"id" db:"id"`
	OrderID int64 `json:"order_id" db:"order_id"`

	TicketNumber string         `json:"ticket_number" db:"ticket_number"`
	Priority     TicketPriority `json:"priority" db:"priority"`

	// Kitchen workflow. StartedAt is stamped once when prep begins;
	// CompletedAt is stamped on bump and cleared again on recall.
	PrintedAt   *time.Time `json:"printed_at,omitempty" db:"printed_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	AssignedToID *int64 `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	Notes        string `json:"notes,omitempty" db:"notes"`
}

// FormatTicketNumber builds the short kitchen ticket identifier from the
// daily sequence, e.g. K042.
func FormatTicketNumber(seq int) string {
	return fmt.Sprintf("K%03d", seq)
}
