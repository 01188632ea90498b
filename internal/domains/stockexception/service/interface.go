package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/stockexception/model"
)

// ShortageParams is what the pick engine hands over when an operator reports
// a shortage.
type ShortageParams struct {
	SKU          string
	ProductTitle string
	Category     string
	QtyShort     int
	OrderNumbers []string
	ReportedBy   *int64
	Notes        string
}

type StockExceptionService interface {
	// RecordShortageTx snapshots a shortage inside the caller's transaction.
	RecordShortageTx(ctx context.Context, tx pgx.Tx, params ShortageParams) (*model.StockException, error)

	Get(ctx context.Context, id int64) (*model.StockException, error)
	List(ctx context.Context, filter model.Filter) ([]model.StockException, error)
	Aggregate(ctx context.Context) ([]model.AggregateRow, error)

	Resolve(ctx context.Context, id int64) (*model.StockException, error)
	ToggleOrderedFromCompany(ctx context.Context, id int64) (*model.StockException, error)
	ToggleNaCancel(ctx context.Context, id int64) (*model.StockException, error)

	ExportCSV(ctx context.Context, filter model.Filter) ([]byte, error)
	ExportXLSX(ctx context.Context, filter model.Filter) ([]byte, error)
}
