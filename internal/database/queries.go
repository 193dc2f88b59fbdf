package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (uuid, number, outlet_id, table_id, table_session_id, created_by_id,
			status, type, source, party_name, customer_name, customer_phone,
			subtotal, discount_amount, discount_percentage, discount_reason,
			cgst_amount, sgst_amount, service_charge, total_amount, paid_amount,
			customer_notes, kitchen_notes, estimated_prep_time, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`

	UpdateOrderSQL = `
		UPDATE orders SET
			table_id = $2, served_by_id = $3, status = $4, party_name = $5,
			subtotal = $6, discount_amount = $7, discount_percentage = $8, discount_reason = $9,
			cgst_amount = $10, sgst_amount = $11, service_charge = $12,
			total_amount = $13, paid_amount = $14,
			customer_notes = $15, kitchen_notes = $16, estimated_prep_time = $17,
			confirmed_at = $18, prepared_at = $19, served_at = $20, completed_at = $21, cancelled_at = $22,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	GetOrderSQL = `
		SELECT id, uuid, number, outlet_id, table_id, table_session_id, created_by_id, served_by_id,
			status, type, source, party_name, customer_name, customer_phone,
			subtotal, discount_amount, discount_percentage, discount_reason,
			cgst_amount, sgst_amount, service_charge, total_amount, paid_amount,
			customer_notes, kitchen_notes, estimated_prep_time,
			created_at, updated_at, confirmed_at, prepared_at, served_at, completed_at, cancelled_at
		FROM orders WHERE id = $1`

	DeleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	GetCombinedTablesSQL    = `SELECT table_id FROM order_tables WHERE order_id = $1 ORDER BY table_id`
	InsertCombinedTableSQL  = `INSERT INTO order_tables (order_id, table_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	DeleteCombinedTablesSQL = `DELETE FROM order_tables WHERE order_id = $1`

	// NextOrderSequenceSQL allocates the next daily per-outlet sequence
	// under row-level locking, so concurrent creates never collide.
	NextOrderSequenceSQL = `
		INSERT INTO order_day_sequences (outlet_id, day, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (outlet_id, day)
		DO UPDATE SET last_seq = order_day_sequences.last_seq + 1
		RETURNING last_seq`

	// CountActiveClaimsSQL counts other orders in the given statuses that
	// claim a table, as primary or combined.
	CountActiveClaimsSQL = `
		SELECT COUNT(*) FROM orders o
		WHERE o.id <> $2
		  AND o.status = ANY($3)
		  AND (o.table_id = $1
		       OR EXISTS (SELECT 1 FROM order_tables ot WHERE ot.order_id = o.id AND ot.table_id = $1))`
)

// Order item queries
const (
	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, variant_id, seat_number,
			item_name, variant_name, unit_price, quantity, addons, addons_total,
			total_price, status, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	UpdateOrderItemSQL = `
		UPDATE order_items SET quantity = $2, total_price = $3, status = $4,
			seat_number = $5, special_instructions = $6, updated_at = NOW()
		WHERE id = $1`

	DeleteOrderItemSQL = `DELETE FROM order_items WHERE id = $1`

	ListOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, variant_id, seat_number,
			item_name, variant_name, unit_price, quantity, addons, addons_total,
			total_price, status, special_instructions, created_at, updated_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`
)

// Payment queries
const (
	InsertPaymentSQL = `
		INSERT INTO payments (uuid, order_id, amount, method, status,
			transaction_id, reference_number, amount_tendered, change_amount,
			processed_by_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	ListPaymentsSQL = `
		SELECT id, uuid, order_id, amount, method, status,
			transaction_id, reference_number, amount_tendered, change_amount,
			processed_by_id, notes, created_at, updated_at
		FROM payments WHERE order_id = $1 ORDER BY created_at, id`

	SumCompletedPaymentsSQL = `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE order_id = $1 AND status = 'completed'`
)

// Kitchen ticket queries
const (
	InsertTicketSQL = `
		INSERT INTO kitchen_tickets (order_id, ticket_number, priority, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	UpdateTicketSQL = `
		UPDATE kitchen_tickets SET priority = $2, printed_at = $3, started_at = $4,
			completed_at = $5, assigned_to_id = $6, notes = $7
		WHERE id = $1`

	GetTicketByOrderSQL = `
		SELECT id, order_id, ticket_number, priority, printed_at, started_at,
			completed_at, assigned_to_id, notes
		FROM kitchen_tickets WHERE order_id = $1`

	NextTicketSequenceSQL = `
		INSERT INTO ticket_day_sequences (day, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (day)
		DO UPDATE SET last_seq = ticket_day_sequences.last_seq + 1
		RETURNING last_seq`
)

// Table queries
const (
	GetTableSQL = `
		SELECT id, uuid, outlet_id, number, name, capacity, status, is_active, created_at, updated_at
		FROM tables WHERE id = $1`

	SetTableStatusSQL = `UPDATE tables SET status = $2, updated_at = NOW() WHERE id = $1`
)

// Outlet and settings queries
const (
	GetOutletSQL = `
		SELECT id, name, code, order_prefix, auto_accept_orders,
			tax_enabled, cgst_rate, sgst_rate, service_charge_enabled, service_charge_rate,
			is_active, created_at, updated_at
		FROM outlets WHERE id = $1`

	GetTaxSettingsSQL = `
		SELECT cgst_rate, sgst_rate, service_charge_enabled, service_charge_rate
		FROM tax_settings WHERE id = 1`

	GetOrderSettingsSQL = `
		SELECT auto_accept_orders, default_preparation_time, order_number_prefix,
			allow_qr_ordering, require_phone_takeaway
		FROM order_settings WHERE id = 1`
)

// Catalog queries
const (
	LookupMenuItemSQL = `
		SELECT name, base_price FROM menu_items WHERE id = $1 AND is_available`

	LookupMenuVariantSQL = `
		SELECT name, price FROM menu_item_variants WHERE id = $1 AND menu_item_id = $2`
)
