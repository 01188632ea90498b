package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/picking/model"
	"warehouse-picking-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresPickingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPickingRepository(pool *pgxpool.Pool) PickingRepository {
	return &postgresPickingRepository{pool: pool}
}

func (r *postgresPickingRepository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return database.WithTransaction(ctx, r.pool, fn)
}

func (r *postgresPickingRepository) WithSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return database.WithSerializableTransaction(ctx, r.pool, fn)
}

// =====================================================
// PICK LIST
// =====================================================

func (r *postgresPickingRepository) ListPickRows(ctx context.Context) ([]model.PickRow, error) {
	// Lines outside the order's current shipment wait for a later batch and
	// are not pickable yet.
	query := `
		SELECT l.sku,
		       p.title, p.category, p.subcategory, p.vendor_name,
		       p.variation_details, p.image_url, p.price, p.store_quantity_available,
		       SUM(l.qty_ordered)  AS needed,
		       SUM(l.qty_picked)   AS picked,
		       SUM(l.qty_short)    AS short,
		       SUM(l.qty_ordered - l.qty_picked - l.qty_short) AS remaining,
		       COUNT(DISTINCT o.id) AS order_count
		FROM order_lines l
		JOIN orders o   ON o.id = l.order_id
		JOIN products p ON p.id = l.product_id
		WHERE o.status NOT IN ('packed', 'cancelled')
		  AND l.shipment_batch = o.current_shipment
		GROUP BY l.sku, p.title, p.category, p.subcategory, p.vendor_name,
		         p.variation_details, p.image_url, p.price, p.store_quantity_available
		HAVING SUM(l.qty_ordered - l.qty_picked - l.qty_short) > 0
		ORDER BY p.category, l.sku
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pick rows: %w", err)
	}
	defer rows.Close()

	var result []model.PickRow
	for rows.Next() {
		var p model.PickRow
		if err := rows.Scan(
			&p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.VendorName,
			&p.VariationDetails, &p.ImageURL, &p.Price, &p.StoreQuantityAvailable,
			&p.Needed, &p.Picked, &p.Short, &p.Remaining, &p.OrderCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pick row: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresPickingRepository) PickListStats(ctx context.Context) (*model.PickListStats, error) {
	query := `
		SELECT COUNT(DISTINCT l.sku) FILTER (WHERE l.qty_ordered - l.qty_picked - l.qty_short > 0),
		       COALESCE(SUM(l.qty_ordered - l.qty_picked - l.qty_short), 0),
		       COALESCE(SUM(l.qty_picked), 0),
		       COALESCE(SUM(l.qty_short), 0),
		       COUNT(DISTINCT o.id) FILTER (WHERE o.status = 'open'),
		       COUNT(DISTINCT o.id) FILTER (WHERE o.status = 'picking')
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.status NOT IN ('packed', 'cancelled')
		  AND l.shipment_batch = o.current_shipment
	`

	var s model.PickListStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalSKUs, &s.TotalRemaining, &s.TotalPicked, &s.TotalShort,
		&s.OpenOrders, &s.PickingOrders,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load pick list stats: %w", err)
	}
	return &s, nil
}

func (r *postgresPickingRepository) ListOrdersForSKU(ctx context.Context, sku string) ([]model.SKUOrder, error) {
	query := `
		SELECT l.id, o.id, o.number, o.customer_name, o.created_at,
		       l.qty_ordered, l.qty_picked, l.qty_short,
		       l.qty_ordered - l.qty_picked - l.qty_short AS remaining
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.sku = $1
		  AND o.status NOT IN ('packed', 'cancelled')
		  AND l.shipment_batch = o.current_shipment
		  AND l.qty_picked + l.qty_short < l.qty_ordered
		ORDER BY o.created_at, o.id
	`

	rows, err := r.pool.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for sku %s: %w", sku, err)
	}
	defer rows.Close()

	var result []model.SKUOrder
	for rows.Next() {
		var so model.SKUOrder
		if err := rows.Scan(
			&so.LineID, &so.OrderID, &so.OrderNumber, &so.CustomerName, &so.OrderedAt,
			&so.QtyOrdered, &so.QtyPicked, &so.QtyShort, &so.Remaining,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sku order: %w", err)
		}
		result = append(result, so)
	}
	return result, rows.Err()
}

// =====================================================
// ROW LOCKING
// =====================================================

// The lock order (o.created_at, o.id) is the deadlock-avoidance contract:
// every mutating path acquires line and order locks in this sequence.
func (r *postgresPickingRepository) LockLinesForSKU(ctx context.Context, tx pgx.Tx, sku string) ([]model.AllocationLine, error) {
	query := `
		SELECT l.id, o.id, l.qty_ordered - l.qty_picked - l.qty_short AS remaining
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.sku = $1
		  AND o.status NOT IN ('packed', 'cancelled')
		  AND l.shipment_batch = o.current_shipment
		  AND l.qty_picked + l.qty_short < l.qty_ordered
		ORDER BY o.created_at, o.id
		FOR UPDATE OF l, o
	`

	rows, err := tx.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lines for sku %s: %w", sku, err)
	}
	defer rows.Close()

	var result []model.AllocationLine
	for rows.Next() {
		var al model.AllocationLine
		if err := rows.Scan(&al.LineID, &al.OrderID, &al.Remaining); err != nil {
			return nil, fmt.Errorf("failed to scan allocation line: %w", err)
		}
		result = append(result, al)
	}
	return result, rows.Err()
}

const lineColumns = `
	l.id, l.order_id, l.product_id, l.sku, l.title, l.category, l.image_url,
	l.qty_ordered, l.qty_picked, l.qty_short, l.shipment_batch, l.created_at, l.updated_at
`

func scanLine(row pgx.Row) (*ordermodel.OrderLine, error) {
	var l ordermodel.OrderLine
	err := row.Scan(
		&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.Title, &l.Category, &l.ImageURL,
		&l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order line: %w", err)
	}
	return &l, nil
}

func (r *postgresPickingRepository) LockLinesForOrders(ctx context.Context, tx pgx.Tx, sku string, orderIDs []int64) ([]ordermodel.OrderLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.sku = $1 AND l.order_id = ANY($2)
		  AND o.status NOT IN ('packed', 'cancelled')
		  AND l.shipment_batch = o.current_shipment
		ORDER BY o.created_at, o.id
		FOR UPDATE OF l, o
	`

	rows, err := tx.Query(ctx, query, sku, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lines for orders: %w", err)
	}
	defer rows.Close()

	var result []ordermodel.OrderLine
	for rows.Next() {
		var l ordermodel.OrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.Title, &l.Category, &l.ImageURL,
			&l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (r *postgresPickingRepository) GetLineForUpdateTx(ctx context.Context, tx pgx.Tx, lineID int64) (*ordermodel.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines l WHERE l.id = $1 FOR UPDATE`
	return scanLine(tx.QueryRow(ctx, query, lineID))
}

// =====================================================
// MUTATIONS
// =====================================================

func (r *postgresPickingRepository) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, lineID int64, pickedDelta, shortDelta int) error {
	// The table CHECK constraint backstops the service-level validation.
	query := `
		UPDATE order_lines
		SET qty_picked = qty_picked + $2,
		    qty_short = qty_short + $3,
		    updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, lineID, pickedDelta, shortDelta); err != nil {
		return fmt.Errorf("failed to apply delta to line %d: %w", lineID, err)
	}
	return nil
}

func (r *postgresPickingRepository) InsertPickEventTx(ctx context.Context, tx pgx.Tx, event *model.PickEvent) error {
	query := `
		INSERT INTO pick_events (order_line_id, delta_qty, kind, user_id, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		event.OrderLineID, event.DeltaQty, event.Kind, event.UserID, event.Notes,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pick event: %w", err)
	}
	return nil
}

// =====================================================
// DERIVE SUPPORT
// =====================================================

func (r *postgresPickingRepository) GetOrderForUpdateTx(ctx context.Context, tx pgx.Tx, orderID int64) (*ordermodel.Order, error) {
	query := `
		SELECT id, external_id, number, customer_name, status, ready_to_pack,
		       total_shipments, current_shipment, customer_message, email_sent,
		       packed_at, packed_by, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var o ordermodel.Order
	err := tx.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack,
		&o.TotalShipments, &o.CurrentShipment, &o.CustomerMessage, &o.EmailSent,
		&o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ordermodel.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	return &o, nil
}

func (r *postgresPickingRepository) ListLinesInBatchTx(ctx context.Context, tx pgx.Tx, orderID int64, batch int) ([]ordermodel.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines l WHERE l.order_id = $1 AND l.shipment_batch = $2 ORDER BY l.id`

	rows, err := tx.Query(ctx, query, orderID, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch lines: %w", err)
	}
	defer rows.Close()

	var result []ordermodel.OrderLine
	for rows.Next() {
		var l ordermodel.OrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.Title, &l.Category, &l.ImageURL,
			&l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (r *postgresPickingRepository) UpdateOrderDerivedTx(ctx context.Context, tx pgx.Tx, order *ordermodel.Order) error {
	query := `
		UPDATE orders
		SET status = $2, ready_to_pack = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, order.ID, order.Status, order.ReadyToPack); err != nil {
		return fmt.Errorf("failed to update derived state: %w", err)
	}
	return nil
}

// =====================================================
// PICKED ITEMS / EVENTS
// =====================================================

func (r *postgresPickingRepository) ListPickedItems(ctx context.Context, filter model.PickedItemFilter) ([]model.PickedItem, error) {
	conditions := []string{
		`o.status NOT IN ('packed', 'cancelled')`,
		`l.shipment_batch = o.current_shipment`,
		`l.qty_picked > 0`,
	}
	args := []interface{}{}
	argN := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(l.sku ILIKE $%d OR l.title ILIKE $%d OR o.number ILIKE $%d)`, argN, argN, argN))
		args = append(args, "%"+filter.Search+"%")
		argN++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf(`p.category = $%d`, argN))
		args = append(args, filter.Category)
		argN++
	}
	if filter.Subcategory != "" {
		conditions = append(conditions, fmt.Sprintf(`p.subcategory = $%d`, argN))
		args = append(args, filter.Subcategory)
		argN++
	}

	col := "ev.created_at"
	switch filter.SortBy {
	case "sku":
		col = "l.sku"
	case "order_number":
		col = "o.number"
	}
	dir := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		dir = "DESC"
	}
	orderBy := col + " " + dir
	if col == "ev.created_at" {
		orderBy += " NULLS LAST"
	}

	query := fmt.Sprintf(`
		SELECT l.id, o.id, o.number, o.customer_name,
		       l.sku, l.title, p.category, p.subcategory, l.image_url,
		       l.qty_ordered, l.qty_picked, l.qty_short,
		       ev.created_at, COALESCE(u.username, '')
		FROM order_lines l
		JOIN orders o   ON o.id = l.order_id
		JOIN products p ON p.id = l.product_id
		LEFT JOIN LATERAL (
			SELECT e.created_at, e.user_id
			FROM pick_events e
			WHERE e.order_line_id = l.id AND e.kind = 'pick'
			ORDER BY e.created_at DESC
			LIMIT 1
		) ev ON TRUE
		LEFT JOIN users u ON u.id = ev.user_id
		WHERE %s
		ORDER BY %s
	`, strings.Join(conditions, " AND "), orderBy)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list picked items: %w", err)
	}
	defer rows.Close()

	var result []model.PickedItem
	for rows.Next() {
		var pi model.PickedItem
		if err := rows.Scan(
			&pi.LineID, &pi.OrderID, &pi.OrderNumber, &pi.CustomerName,
			&pi.SKU, &pi.Title, &pi.Category, &pi.Subcategory, &pi.ImageURL,
			&pi.QtyOrdered, &pi.QtyPicked, &pi.QtyShort,
			&pi.LastPickedAt, &pi.LastPickedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan picked item: %w", err)
		}
		result = append(result, pi)
	}
	return result, rows.Err()
}

func (r *postgresPickingRepository) ListPickEvents(ctx context.Context, filter model.PickEventFilter) ([]model.PickEventRow, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argN := 1

	if filter.SKU != "" {
		conditions = append(conditions, fmt.Sprintf(`l.sku = $%d`, argN))
		args = append(args, filter.SKU)
		argN++
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf(`e.kind = $%d`, argN))
		args = append(args, filter.Kind)
		argN++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf(`e.created_at >= $%d`, argN))
		args = append(args, *filter.DateFrom)
		argN++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf(`e.created_at < $%d`, argN))
		args = append(args, *filter.DateTo)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.order_line_id, e.delta_qty, e.kind, e.user_id, e.notes, e.created_at,
		       l.sku, o.number, COALESCE(u.username, '')
		FROM pick_events e
		JOIN order_lines l ON l.id = e.order_line_id
		JOIN orders o      ON o.id = l.order_id
		LEFT JOIN users u  ON u.id = e.user_id
		WHERE %s
		ORDER BY e.created_at DESC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), argN)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pick events: %w", err)
	}
	defer rows.Close()

	var result []model.PickEventRow
	for rows.Next() {
		var ev model.PickEventRow
		if err := rows.Scan(
			&ev.ID, &ev.OrderLineID, &ev.DeltaQty, &ev.Kind, &ev.UserID, &ev.Notes, &ev.CreatedAt,
			&ev.SKU, &ev.OrderNumber, &ev.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pick event: %w", err)
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

// DeleteEventsBefore prunes aged events, but only for orders that reached a
// terminal status. Live orders keep their full event trail so picked
// quantities always reconcile against it.
func (r *postgresPickingRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM pick_events pe
		USING order_lines l, orders o
		WHERE pe.order_line_id = l.id
		  AND l.order_id = o.id
		  AND o.status IN ('packed', 'cancelled')
		  AND pe.created_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old pick events: %w", err)
	}
	return tag.RowsAffected(), nil
}
