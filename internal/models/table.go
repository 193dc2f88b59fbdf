package models

import (
	"time"

	"github.com/google/uuid"
)

// TableStatus represents the occupancy state of a physical table
type TableStatus string

const (
	TableVacant   TableStatus = "vacant"
	TableOccupied TableStatus = "occupied"
	TableBilled   TableStatus = "billed"
	TableCleaning TableStatus = "cleaning"
	TableReserved TableStatus = "reserved"
)

// Table is a physical seating unit. Its status is derived from the set of
// orders currently claiming it and must never be toggled independently of
// that set.
type Table struct {
	ID       int64     `json:"id" db:"id"`
	UUID     uuid.UUID `json:"uuid" db:"uuid"`
	OutletID int64     `json:"outlet_id" db:"outlet_id"`

	Number   string      `json:"number" db:"number"`
	Name     string      `json:"name,omitempty" db:"name"`
	Capacity int         `json:"capacity" db:"capacity"`
	Status   TableStatus `json:"status" db:"status"`
	IsActive bool        `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the custom name if set, else the table number.
func (t *Table) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Number
}
