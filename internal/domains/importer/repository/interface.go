package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/importer/model"
	ordermodel "warehouse-picking-backend/internal/domains/order/model"
)

// ImporterRepository owns the sync_logs table plus the feed-shaped reads and
// writes against orders and order_lines. Catalog writes go through the
// product repository so both sides share one upsert.
type ImporterRepository interface {
	// WithTx runs fn inside a transaction.
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error

	// Sync log lifecycle. These run outside the import transaction so a
	// concurrent sync can see the in_progress row immediately.

	// RecoverStaleSyncs marks in_progress runs older than staleAfter as
	// errored and returns how many it closed.
	RecoverStaleSyncs(ctx context.Context, staleAfter time.Duration) (int, error)
	HasActiveSync(ctx context.Context) (bool, error)
	CreateSyncLog(ctx context.Context, log *model.SyncLog) error
	FinishSyncLog(ctx context.Context, log *model.SyncLog) error
	ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)
	LatestSyncLog(ctx context.Context) (*model.SyncLog, error)

	// Feed upserts.

	GetOrdersByExternalIDsTx(ctx context.Context, tx pgx.Tx, externalIDs []string) (map[string]*ordermodel.Order, error)
	CreateOrderTx(ctx context.Context, tx pgx.Tx, order *ordermodel.Order) error
	// UpdateOrderHeaderTx refreshes the feed-owned columns only; everything
	// authored locally (status, batches, message, pack state) is untouched.
	UpdateOrderHeaderTx(ctx context.Context, tx pgx.Tx, orderID int64, number, customerName string) error
	ListLinesByOrderIDsTx(ctx context.Context, tx pgx.Tx, orderIDs []int64) (map[int64][]ordermodel.OrderLine, error)
	CreateLineTx(ctx context.Context, tx pgx.Tx, line *ordermodel.OrderLine) error
	UpdateLineQtyTx(ctx context.Context, tx pgx.Tx, lineID int64, qtyOrdered int) error
	// AutoPackAbsentTx packs every open order the feed no longer mentions and
	// returns how many it closed.
	AutoPackAbsentTx(ctx context.Context, tx pgx.Tx, presentExternalIDs []string, at time.Time) (int, error)
}
