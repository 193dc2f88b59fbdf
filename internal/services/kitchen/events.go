package kitchen

import (
	"time"

	"cafepos/internal/models"
)

// Event types pushed to the kitchen display fanout.
const (
	EventNewOrder        = "new_order"
	EventOrderUpdated    = "order_updated"
	EventStatusChanged   = "order_status_changed"
	EventOrderBumped     = "order_bumped"
	EventPriorityChanged = "priority_changed"
)

// Event is the envelope published to kitchen displays. Only the fields
// relevant to the event type are populated.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Order *OrderSnapshot `json:"order,omitempty"`

	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status,omitempty"`
	ChangedBy string `json:"changed_by,omitempty"`
	BumpedBy  string `json:"bumped_by,omitempty"`

	OldPriority string `json:"old_priority,omitempty"`
	NewPriority string `json:"new_priority,omitempty"`
}

// OrderSnapshot is everything a kitchen display needs to render one
// ticket without querying back.
type OrderSnapshot struct {
	OrderID      int64  `json:"order_id"`
	OrderUUID    string `json:"order_uuid"`
	OrderNumber  string `json:"order_number"`
	TicketNumber string `json:"ticket_number,omitempty"`

	Table        string `json:"table,omitempty"`
	OrderType    string `json:"order_type"`
	Status       string `json:"status"`
	Priority     string `json:"priority,omitempty"`
	PartyName    string `json:"party_name,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	AssignedToID *int64 `json:"assigned_to_id,omitempty"`

	KitchenNotes      string     `json:"kitchen_notes,omitempty"`
	EstimatedPrepTime int        `json:"estimated_prep_time"`
	PlacedAt          time.Time  `json:"placed_at"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	ElapsedMinutes    int        `json:"elapsed_minutes"`

	ItemCount int            `json:"item_count"`
	Items     []ItemSnapshot `json:"items"`
}

// ItemSnapshot is one line of a kitchen ticket.
type ItemSnapshot struct {
	Name                string   `json:"name"`
	Variant             string   `json:"variant,omitempty"`
	Quantity            int      `json:"quantity"`
	Addons              []string `json:"addons,omitempty"`
	SeatNumber          *int     `json:"seat_number,omitempty"`
	Status              string   `json:"status"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

// BuildOrderSnapshot flattens an order, its table and its ticket into the
// display payload. table and ticket may be nil.
func BuildOrderSnapshot(order *models.Order, table *models.Table, ticket *models.KitchenTicket, now time.Time) *OrderSnapshot {
	snapshot := &OrderSnapshot{
		OrderID:           order.ID,
		OrderUUID:         order.UUID.String(),
		OrderNumber:       order.Number,
		OrderType:         string(order.Type),
		Status:            string(order.Status),
		PartyName:         order.PartyName,
		CustomerName:      order.CustomerName,
		KitchenNotes:      order.KitchenNotes,
		EstimatedPrepTime: order.EstimatedPrepTime,
		PlacedAt:          order.CreatedAt,
		ElapsedMinutes:    int(now.Sub(order.CreatedAt).Minutes()),
		ItemCount:         order.ItemCount(),
		Items:             make([]ItemSnapshot, 0, len(order.Items)),
	}

	if table != nil {
		snapshot.Table = table.DisplayName()
	}
	if ticket != nil {
		snapshot.TicketNumber = ticket.TicketNumber
		snapshot.Priority = string(ticket.Priority)
		snapshot.StartedAt = ticket.StartedAt
		snapshot.AssignedToID = ticket.AssignedToID
	}

	for i := range order.Items {
		item := &order.Items[i]
		is := ItemSnapshot{
			Name:                item.ItemName,
			Variant:             item.VariantName,
			Quantity:            item.Quantity,
			SeatNumber:          item.SeatNumber,
			Status:              string(item.Status),
			SpecialInstructions: item.SpecialInstructions,
		}
		for _, addon := range item.Addons {
			is.Addons = append(is.Addons, addon.Name)
		}
		snapshot.Items = append(snapshot.Items, is)
	}

	return snapshot
}
