package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/stockexception/model"
)

type StockExceptionRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, exc *model.StockException) error
	GetByID(ctx context.Context, id int64) (*model.StockException, error)
	List(ctx context.Context, filter model.Filter) ([]model.StockException, error)
	ListUnresolved(ctx context.Context) ([]model.StockException, error)
	Aggregate(ctx context.Context) ([]model.AggregateRow, error)

	SetResolved(ctx context.Context, id int64) (*model.StockException, error)
	ToggleOrderedFromCompany(ctx context.Context, id int64) (*model.StockException, error)
	ToggleNaCancel(ctx context.Context, id int64) (*model.StockException, error)

	// OrderIDsByNumbers resolves the snapshot order numbers back to live
	// order ids for the na_cancel re-derivation.
	OrderIDsByNumbers(ctx context.Context, numbers []string) ([]int64, error)
}
