package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/order/model"
)

// OrderRepository owns all SQL against orders and order_lines for the
// state-machine side. The pick engine has its own repository for the
// allocation queries.
type OrderRepository interface {
	// WithTx runs fn inside a transaction.
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error

	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetByIDForUpdateTx locks the order row for the rest of the transaction.
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)

	ListLines(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	ListLinesTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]model.OrderLine, error)
	ListLinesInBatchTx(ctx context.Context, tx pgx.Tx, orderID int64, batch int) ([]model.OrderLine, error)

	// UpdateDerivedTx persists status and ready_to_pack after a Derive call.
	UpdateDerivedTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	// UpdatePackStateTx persists the pack-related columns in one statement.
	UpdatePackStateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	UpdateShipmentsTx(ctx context.Context, tx pgx.Tx, orderID int64, total, current int) error
	UpdateLineBatchTx(ctx context.Context, tx pgx.Tx, lineID int64, batch int) error
	ResetLineBatchesTx(ctx context.Context, tx pgx.Tx, orderID int64) error

	UpdateMessage(ctx context.Context, orderID int64, message *string, emailSent *bool) (*model.Order, error)

	ListStatusBoard(ctx context.Context) ([]model.StatusRow, error)
	ListReadyToPack(ctx context.Context) ([]model.StatusRow, error)
	ListPacked(ctx context.Context, filter model.PackedFilter) ([]model.StatusRow, int, error)
}

// Clock lets tests pin packed_at timestamps.
type Clock func() time.Time
