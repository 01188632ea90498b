package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	ordermodel "warehouse-picking-backend/internal/domains/order/model"
	"warehouse-picking-backend/internal/domains/picking/model"
	"warehouse-picking-backend/internal/domains/picking/repository"
)

// filteredLockRepo emulates the lock query dropping lines that are not
// allocatable: wrong batch, or an order already packed or cancelled.
type filteredLockRepo struct {
	repository.PickingRepository
	lockable []ordermodel.OrderLine
}

func (f *filteredLockRepo) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

func (f *filteredLockRepo) LockLinesForOrders(_ context.Context, _ pgx.Tx, sku string, orderIDs []int64) ([]ordermodel.OrderLine, error) {
	requested := make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		requested[id] = struct{}{}
	}

	var result []ordermodel.OrderLine
	for _, line := range f.lockable {
		if _, ok := requested[line.OrderID]; ok && line.SKU == sku {
			result = append(result, line)
		}
	}
	return result, nil
}

func TestMarkShortRejectsNonAllocatableOrders(t *testing.T) {
	// Order 2's line sits in a future shipment batch, so the lock query
	// never returns it.
	svc := &pickingService{
		repo: &filteredLockRepo{
			lockable: []ordermodel.OrderLine{
				{ID: 10, OrderID: 1, SKU: "PLUSH-1", QtyOrdered: 2},
			},
		},
	}

	_, err := svc.MarkShort(context.Background(), model.MarkShortRequest{
		SKU: "PLUSH-1",
		Allocations: []model.ShortAllocation{
			{OrderID: 1, QtyShort: 1},
			{OrderID: 2, QtyShort: 1},
		},
	}, 7)

	assert.ErrorIs(t, err, model.ErrLineNotFound)
}

func TestMarkShortRejectsDuplicateOrders(t *testing.T) {
	svc := &pickingService{repo: &filteredLockRepo{}}

	_, err := svc.MarkShort(context.Background(), model.MarkShortRequest{
		SKU: "PLUSH-1",
		Allocations: []model.ShortAllocation{
			{OrderID: 1, QtyShort: 1},
			{OrderID: 1, QtyShort: 2},
		},
	}, 7)

	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}
