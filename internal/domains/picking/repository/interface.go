package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/picking/model"
)

// PickingRepository owns the allocation-side SQL: pick list aggregation,
// FIFO row locking, line deltas, pick events, and the derive helpers the
// pick engine needs on the orders it touches.
type PickingRepository interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
	// WithSerializableTx is used by Pick so concurrent allocations against
	// the same SKU cannot interleave.
	WithSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error

	ListPickRows(ctx context.Context) ([]model.PickRow, error)
	PickListStats(ctx context.Context) (*model.PickListStats, error)
	ListOrdersForSKU(ctx context.Context, sku string) ([]model.SKUOrder, error)

	// LockLinesForSKU locks every allocatable line for sku in FIFO order
	// (order created_at, order id) along with its order row.
	LockLinesForSKU(ctx context.Context, tx pgx.Tx, sku string) ([]model.AllocationLine, error)
	// LockLinesForOrders locks the sku lines of specific orders, still in
	// FIFO order so contending pickers take row locks in the same sequence.
	LockLinesForOrders(ctx context.Context, tx pgx.Tx, sku string, orderIDs []int64) ([]ordermodel.OrderLine, error)
	GetLineForUpdateTx(ctx context.Context, tx pgx.Tx, lineID int64) (*ordermodel.OrderLine, error)

	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, lineID int64, pickedDelta, shortDelta int) error
	InsertPickEventTx(ctx context.Context, tx pgx.Tx, event *model.PickEvent) error

	GetOrderForUpdateTx(ctx context.Context, tx pgx.Tx, orderID int64) (*ordermodel.Order, error)
	ListLinesInBatchTx(ctx context.Context, tx pgx.Tx, orderID int64, batch int) ([]ordermodel.OrderLine, error)
	UpdateOrderDerivedTx(ctx context.Context, tx pgx.Tx, order *ordermodel.Order) error

	ListPickedItems(ctx context.Context, filter model.PickedItemFilter) ([]model.PickedItem, error)
	ListPickEvents(ctx context.Context, filter model.PickEventFilter) ([]model.PickEventRow, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
