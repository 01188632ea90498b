package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-picking-backend/internal/domains/importer/model"
	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresImporterRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresImporterRepository(pool *pgxpool.Pool) ImporterRepository {
	return &postgresImporterRepository{pool: pool}
}

func (r *postgresImporterRepository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return database.WithTransaction(ctx, r.pool, fn)
}

// =====================================================
// SYNC LOGS
// =====================================================

const syncLogColumns = `
	id, started_at, completed_at, status,
	orders_fetched, orders_created, orders_updated, orders_packed,
	products_created, products_updated, lines_created, lines_updated,
	warnings, error_message, triggered_by
`

func scanSyncLog(row pgx.Row) (*model.SyncLog, error) {
	var l model.SyncLog
	err := row.Scan(
		&l.ID, &l.StartedAt, &l.CompletedAt, &l.Status,
		&l.OrdersFetched, &l.OrdersCreated, &l.OrdersUpdated, &l.OrdersPacked,
		&l.ProductsCreated, &l.ProductsUpdated, &l.LinesCreated, &l.LinesUpdated,
		&l.Warnings, &l.ErrorMessage, &l.TriggeredBy,
	)
	if err != nil {
		return nil, err
	}
	if l.Warnings == nil {
		l.Warnings = []string{}
	}
	return &l, nil
}

func (r *postgresImporterRepository) RecoverStaleSyncs(ctx context.Context, staleAfter time.Duration) (int, error) {
	query := `
		UPDATE sync_logs
		SET status = 'error',
		    completed_at = now(),
		    error_message = 'timed out, recovered by a later sync'
		WHERE status = 'in_progress'
		  AND started_at < now() - $1::interval
	`
	tag, err := r.pool.Exec(ctx, query, staleAfter)
	if err != nil {
		return 0, fmt.Errorf("failed to recover stale syncs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *postgresImporterRepository) HasActiveSync(ctx context.Context) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sync_logs WHERE status = 'in_progress')`,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to check active sync: %w", err)
	}
	return active, nil
}

func (r *postgresImporterRepository) CreateSyncLog(ctx context.Context, log *model.SyncLog) error {
	query := `
		INSERT INTO sync_logs (status, triggered_by)
		VALUES ('in_progress', $1)
		RETURNING id, started_at
	`
	err := r.pool.QueryRow(ctx, query, log.TriggeredBy).Scan(&log.ID, &log.StartedAt)
	if isUniqueViolation(err) {
		// Partial unique index on status='in_progress': another sync won the
		// insert between our existence check and now.
		return model.ErrSyncBusy
	}
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	log.Status = model.SyncStatusInProgress
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *postgresImporterRepository) FinishSyncLog(ctx context.Context, log *model.SyncLog) error {
	query := `
		UPDATE sync_logs
		SET completed_at     = now(),
		    status           = $2,
		    orders_fetched   = $3,
		    orders_created   = $4,
		    orders_updated   = $5,
		    orders_packed    = $6,
		    products_created = $7,
		    products_updated = $8,
		    lines_created    = $9,
		    lines_updated    = $10,
		    warnings         = $11,
		    error_message    = $12
		WHERE id = $1
		RETURNING completed_at
	`
	warnings := log.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		log.ID, log.Status,
		log.OrdersFetched, log.OrdersCreated, log.OrdersUpdated, log.OrdersPacked,
		log.ProductsCreated, log.ProductsUpdated, log.LinesCreated, log.LinesUpdated,
		warnings, log.ErrorMessage,
	).Scan(&log.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrSyncLogNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to finish sync log %d: %w", log.ID, err)
	}
	return nil
}

func (r *postgresImporterRepository) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	query := `SELECT ` + syncLogColumns + ` FROM sync_logs ORDER BY started_at DESC, id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.SyncLog, 0, limit)
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (r *postgresImporterRepository) LatestSyncLog(ctx context.Context) (*model.SyncLog, error) {
	query := `SELECT ` + syncLogColumns + ` FROM sync_logs ORDER BY started_at DESC, id DESC LIMIT 1`

	l, err := scanSyncLog(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSyncLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync log: %w", err)
	}
	return l, nil
}

// =====================================================
// FEED UPSERTS
// =====================================================

func (r *postgresImporterRepository) GetOrdersByExternalIDsTx(ctx context.Context, tx pgx.Tx, externalIDs []string) (map[string]*ordermodel.Order, error) {
	if len(externalIDs) == 0 {
		return map[string]*ordermodel.Order{}, nil
	}

	query := `
		SELECT id, external_id, number, customer_name, status, ready_to_pack,
		       total_shipments, current_shipment, customer_message, email_sent,
		       packed_at, packed_by, created_at, updated_at
		FROM orders
		WHERE external_id = ANY($1)
	`

	rows, err := tx.Query(ctx, query, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by external ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*ordermodel.Order, len(externalIDs))
	for rows.Next() {
		var o ordermodel.Order
		if err := rows.Scan(
			&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack,
			&o.TotalShipments, &o.CurrentShipment, &o.CustomerMessage, &o.EmailSent,
			&o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result[o.ExternalID] = &o
	}
	return result, rows.Err()
}

func (r *postgresImporterRepository) CreateOrderTx(ctx context.Context, tx pgx.Tx, order *ordermodel.Order) error {
	// created_at comes from the feed so the pick queue keeps the upstream
	// order of arrival.
	query := `
		INSERT INTO orders (external_id, number, customer_name, customer_message, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		RETURNING id, status, ready_to_pack, total_shipments, current_shipment,
		          email_sent, created_at, updated_at
	`

	var createdAt *time.Time
	if !order.CreatedAt.IsZero() {
		createdAt = &order.CreatedAt
	}

	err := tx.QueryRow(ctx, query,
		order.ExternalID, order.Number, order.CustomerName, order.CustomerMessage, createdAt,
	).Scan(
		&order.ID, &order.Status, &order.ReadyToPack, &order.TotalShipments,
		&order.CurrentShipment, &order.EmailSent, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.ExternalID, err)
	}
	return nil
}

func (r *postgresImporterRepository) UpdateOrderHeaderTx(ctx context.Context, tx pgx.Tx, orderID int64, number, customerName string) error {
	query := `
		UPDATE orders
		SET number = $2, customer_name = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, orderID, number, customerName); err != nil {
		return fmt.Errorf("failed to update order %d header: %w", orderID, err)
	}
	return nil
}

func (r *postgresImporterRepository) ListLinesByOrderIDsTx(ctx context.Context, tx pgx.Tx, orderIDs []int64) (map[int64][]ordermodel.OrderLine, error) {
	if len(orderIDs) == 0 {
		return map[int64][]ordermodel.OrderLine{}, nil
	}

	query := `
		SELECT id, order_id, product_id, sku, title, category, image_url,
		       qty_ordered, qty_picked, qty_short, shipment_batch,
		       created_at, updated_at
		FROM order_lines
		WHERE order_id = ANY($1)
	`

	rows, err := tx.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines by order ids: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]ordermodel.OrderLine, len(orderIDs))
	for rows.Next() {
		var l ordermodel.OrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductID, &l.SKU, &l.Title, &l.Category, &l.ImageURL,
			&l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	return result, rows.Err()
}

func (r *postgresImporterRepository) CreateLineTx(ctx context.Context, tx pgx.Tx, line *ordermodel.OrderLine) error {
	query := `
		INSERT INTO order_lines (
			order_id, product_id, sku, title, category, image_url,
			qty_ordered, shipment_batch
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING id, qty_picked, qty_short, shipment_batch, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		line.OrderID, line.ProductID, line.SKU, line.Title, line.Category,
		line.ImageURL, line.QtyOrdered,
	).Scan(&line.ID, &line.QtyPicked, &line.QtyShort, &line.ShipmentBatch, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create line %s on order %d: %w", line.SKU, line.OrderID, err)
	}
	return nil
}

func (r *postgresImporterRepository) UpdateLineQtyTx(ctx context.Context, tx pgx.Tx, lineID int64, qtyOrdered int) error {
	query := `UPDATE order_lines SET qty_ordered = $2, updated_at = now() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, lineID, qtyOrdered); err != nil {
		return fmt.Errorf("failed to update line %d quantity: %w", lineID, err)
	}
	return nil
}

func (r *postgresImporterRepository) AutoPackAbsentTx(ctx context.Context, tx pgx.Tx, presentExternalIDs []string, at time.Time) (int, error) {
	// packed_by stays NULL: nobody packed these, the feed dropped them.
	query := `
		UPDATE orders
		SET status = 'packed',
		    ready_to_pack = false,
		    packed_at = $2,
		    packed_by = NULL,
		    updated_at = now()
		WHERE status NOT IN ('packed', 'cancelled')
		  AND NOT (external_id = ANY($1))
	`
	tag, err := tx.Exec(ctx, query, presentExternalIDs, at)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-pack absent orders: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
