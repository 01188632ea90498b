package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{pool: pool}
}

func (r *postgresOrderRepository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return database.WithTransaction(ctx, r.pool, fn)
}

const orderColumns = `
	id, external_id, number, customer_name, status, ready_to_pack,
	total_shipments, current_shipment, customer_message, email_sent,
	packed_at, packed_by, created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack,
		&o.TotalShipments, &o.CurrentShipment, &o.CustomerMessage, &o.EmailSent,
		&o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// =====================================================
// GET ORDER
// =====================================================

func (r *postgresOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresOrderRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, query, id))
}

// =====================================================
// ORDER LINES
// =====================================================

const lineColumns = `
	id, order_id, product_id, sku, title, category, image_url,
	qty_ordered, qty_picked, qty_short, shipment_batch, created_at, updated_at
`

func scanLines(rows pgx.Rows) ([]model.OrderLine, error) {
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.Title, &l.Category, &l.ImageURL,
			&l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresOrderRepository) ListLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	return scanLines(rows)
}

func (r *postgresOrderRepository) ListLinesTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]model.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	return scanLines(rows)
}

func (r *postgresOrderRepository) ListLinesInBatchTx(ctx context.Context, tx pgx.Tx, orderID int64, batch int) ([]model.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE order_id = $1 AND shipment_batch = $2 ORDER BY id`
	rows, err := tx.Query(ctx, query, orderID, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch lines: %w", err)
	}
	return scanLines(rows)
}

// =====================================================
// STATE UPDATES
// =====================================================

func (r *postgresOrderRepository) UpdateDerivedTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
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

func (r *postgresOrderRepository) UpdatePackStateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, ready_to_pack = $3, current_shipment = $4,
		    packed_at = $5, packed_by = $6, updated_at = now()
		WHERE id = $1
	`
	_, err := tx.Exec(ctx, query,
		order.ID, order.Status, order.ReadyToPack, order.CurrentShipment,
		order.PackedAt, order.PackedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update pack state: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) UpdateShipmentsTx(ctx context.Context, tx pgx.Tx, orderID int64, total, current int) error {
	query := `
		UPDATE orders
		SET total_shipments = $2, current_shipment = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, orderID, total, current); err != nil {
		return fmt.Errorf("failed to update shipments: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) UpdateLineBatchTx(ctx context.Context, tx pgx.Tx, lineID int64, batch int) error {
	query := `UPDATE order_lines SET shipment_batch = $2, updated_at = now() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, lineID, batch); err != nil {
		return fmt.Errorf("failed to update line batch: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) ResetLineBatchesTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	query := `UPDATE order_lines SET shipment_batch = 1, updated_at = now() WHERE order_id = $1`
	if _, err := tx.Exec(ctx, query, orderID); err != nil {
		return fmt.Errorf("failed to reset line batches: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) UpdateMessage(ctx context.Context, orderID int64, message *string, emailSent *bool) (*model.Order, error) {
	query := `
		UPDATE orders
		SET customer_message = COALESCE($2, customer_message),
		    email_sent = COALESCE($3, email_sent),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	return scanOrder(r.pool.QueryRow(ctx, query, orderID, message, emailSent))
}

// =====================================================
// LISTINGS
// =====================================================

const statusRowQuery = `
	SELECT o.id, o.external_id, o.number, o.customer_name, o.status, o.ready_to_pack,
	       o.total_shipments, o.current_shipment, o.customer_message, o.email_sent,
	       o.packed_at, o.packed_by, o.created_at, o.updated_at,
	       COUNT(l.id) AS total_lines,
	       COUNT(l.id) FILTER (WHERE l.qty_picked + l.qty_short = l.qty_ordered) AS done_lines,
	       COALESCE(SUM(l.qty_ordered), 0) AS total_qty,
	       COALESCE(SUM(l.qty_picked), 0) AS picked_qty,
	       COALESCE(SUM(l.qty_short), 0) AS short_qty
	FROM orders o
	LEFT JOIN order_lines l ON l.order_id = o.id AND l.shipment_batch = o.current_shipment
`

func scanStatusRows(rows pgx.Rows) ([]model.StatusRow, error) {
	defer rows.Close()

	var result []model.StatusRow
	for rows.Next() {
		var s model.StatusRow
		if err := rows.Scan(
			&s.ID, &s.ExternalID, &s.Number, &s.CustomerName, &s.Status, &s.ReadyToPack,
			&s.TotalShipments, &s.CurrentShipment, &s.CustomerMessage, &s.EmailSent,
			&s.PackedAt, &s.PackedBy, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalLines, &s.DoneLines, &s.TotalQty, &s.PickedQty, &s.ShortQty,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *postgresOrderRepository) ListStatusBoard(ctx context.Context) ([]model.StatusRow, error) {
	query := statusRowQuery + `
		WHERE o.status NOT IN ('packed', 'cancelled')
		GROUP BY o.id
		ORDER BY o.created_at, o.id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list status board: %w", err)
	}
	return scanStatusRows(rows)
}

func (r *postgresOrderRepository) ListReadyToPack(ctx context.Context) ([]model.StatusRow, error) {
	query := statusRowQuery + `
		WHERE o.ready_to_pack = TRUE AND o.status NOT IN ('packed', 'cancelled')
		GROUP BY o.id
		ORDER BY o.created_at, o.id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready to pack: %w", err)
	}
	return scanStatusRows(rows)
}

func (r *postgresOrderRepository) ListPacked(ctx context.Context, filter model.PackedFilter) ([]model.StatusRow, int, error) {
	conditions := []string{`o.status = 'packed'`}
	args := []interface{}{}
	argN := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(o.number ILIKE $%d OR o.customer_name ILIKE $%d)`, argN, argN))
		args = append(args, "%"+filter.Search+"%")
		argN++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf(`o.packed_at >= $%d`, argN))
		args = append(args, *filter.DateFrom)
		argN++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf(`o.packed_at < $%d`, argN))
		args = append(args, *filter.DateTo)
		argN++
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count packed orders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := statusRowQuery + where + fmt.Sprintf(`
		GROUP BY o.id
		ORDER BY o.packed_at DESC
		LIMIT $%d OFFSET $%d
	`, argN, argN+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list packed orders: %w", err)
	}

	result, err := scanStatusRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
