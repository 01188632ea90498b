package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-picking-backend/internal/domains/stockexception/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresStockExceptionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStockExceptionRepository(pool *pgxpool.Pool) StockExceptionRepository {
	return &postgresStockExceptionRepository{pool: pool}
}

const excColumns = `
	e.id, e.sku, e.product_title, e.category, e.qty_short, e.order_numbers,
	e.reported_by, COALESCE(u.username, ''), e.resolved, e.ordered_from_company,
	e.na_cancel, e.notes, e.created_at
`

func scanException(row pgx.Row) (*model.StockException, error) {
	var e model.StockException
	err := row.Scan(
		&e.ID, &e.SKU, &e.ProductTitle, &e.Category, &e.QtyShort, &e.OrderNumbers,
		&e.ReportedBy, &e.ReportedByUsername, &e.Resolved, &e.OrderedFromCompany,
		&e.NaCancel, &e.Notes, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock exception: %w", err)
	}
	return &e, nil
}

func (r *postgresStockExceptionRepository) CreateTx(ctx context.Context, tx pgx.Tx, exc *model.StockException) error {
	query := `
		INSERT INTO stock_exceptions (
			sku, product_title, category, qty_short, order_numbers,
			reported_by, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		exc.SKU, exc.ProductTitle, exc.Category, exc.QtyShort, exc.OrderNumbers,
		exc.ReportedBy, exc.Notes,
	).Scan(&exc.ID, &exc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stock exception: %w", err)
	}
	return nil
}

func (r *postgresStockExceptionRepository) GetByID(ctx context.Context, id int64) (*model.StockException, error) {
	query := `
		SELECT ` + excColumns + `
		FROM stock_exceptions e
		LEFT JOIN users u ON u.id = e.reported_by
		WHERE e.id = $1
	`
	return scanException(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresStockExceptionRepository) List(ctx context.Context, filter model.Filter) ([]model.StockException, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argN := 1

	if filter.Resolved != nil {
		conditions = append(conditions, fmt.Sprintf(`e.resolved = $%d`, argN))
		args = append(args, *filter.Resolved)
		argN++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(e.sku ILIKE $%d OR e.product_title ILIKE $%d
			  OR e.order_numbers::text ILIKE $%d
			  OR EXISTS (
				SELECT 1 FROM products p
				WHERE p.sku = e.sku AND p.vendor_name ILIKE $%d
			  ))`, argN, argN, argN, argN))
		args = append(args, "%"+filter.Search+"%")
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

	col := "e.created_at"
	switch filter.SortBy {
	case "sku":
		col = "e.sku"
	case "qty_short":
		col = "e.qty_short"
	case "vendor":
		col = "(SELECT p.vendor_name FROM products p WHERE p.sku = e.sku)"
	}
	dir := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT `+excColumns+`
		FROM stock_exceptions e
		LEFT JOIN users u ON u.id = e.reported_by
		WHERE %s
		ORDER BY %s %s
	`, strings.Join(conditions, " AND "), col, dir)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock exceptions: %w", err)
	}
	return scanExceptions(rows)
}

func scanExceptions(rows pgx.Rows) ([]model.StockException, error) {
	defer rows.Close()

	var result []model.StockException
	for rows.Next() {
		var e model.StockException
		if err := rows.Scan(
			&e.ID, &e.SKU, &e.ProductTitle, &e.Category, &e.QtyShort, &e.OrderNumbers,
			&e.ReportedBy, &e.ReportedByUsername, &e.Resolved, &e.OrderedFromCompany,
			&e.NaCancel, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock exception: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *postgresStockExceptionRepository) ListUnresolved(ctx context.Context) ([]model.StockException, error) {
	query := `
		SELECT ` + excColumns + `
		FROM stock_exceptions e
		LEFT JOIN users u ON u.id = e.reported_by
		WHERE e.resolved = FALSE
		ORDER BY e.created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved exceptions: %w", err)
	}
	return scanExceptions(rows)
}

func (r *postgresStockExceptionRepository) Aggregate(ctx context.Context) ([]model.AggregateRow, error) {
	query := `
		SELECT sku, MAX(product_title), MAX(category),
		       SUM(qty_short), COUNT(*), MAX(created_at)
		FROM stock_exceptions
		WHERE resolved = FALSE
		GROUP BY sku
		ORDER BY MAX(created_at) DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stock exceptions: %w", err)
	}
	defer rows.Close()

	var result []model.AggregateRow
	for rows.Next() {
		var a model.AggregateRow
		if err := rows.Scan(
			&a.SKU, &a.ProductTitle, &a.Category,
			&a.TotalShort, &a.Reports, &a.LastReported,
		); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *postgresStockExceptionRepository) SetResolved(ctx context.Context, id int64) (*model.StockException, error) {
	return r.updateFlags(ctx, id, `resolved = TRUE`)
}

func (r *postgresStockExceptionRepository) ToggleOrderedFromCompany(ctx context.Context, id int64) (*model.StockException, error) {
	return r.updateFlags(ctx, id, `ordered_from_company = NOT ordered_from_company`)
}

func (r *postgresStockExceptionRepository) ToggleNaCancel(ctx context.Context, id int64) (*model.StockException, error) {
	return r.updateFlags(ctx, id, `na_cancel = NOT na_cancel`)
}

func (r *postgresStockExceptionRepository) updateFlags(ctx context.Context, id int64, set string) (*model.StockException, error) {
	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE stock_exceptions SET %s WHERE id = $1
			RETURNING *
		)
		SELECT e.id, e.sku, e.product_title, e.category, e.qty_short, e.order_numbers,
		       e.reported_by, COALESCE(u.username, ''), e.resolved, e.ordered_from_company,
		       e.na_cancel, e.notes, e.created_at
		FROM updated e
		LEFT JOIN users u ON u.id = e.reported_by
	`, set)
	return scanException(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresStockExceptionRepository) OrderIDsByNumbers(ctx context.Context, numbers []string) ([]int64, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM orders WHERE number = ANY($1)`, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order numbers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
