package service

import (
	"context"

	"warehouse-picking-backend/internal/domains/picking/model"
)

type PickingService interface {
	PickList(ctx context.Context) ([]model.PickRow, error)
	PickListStats(ctx context.Context) (*model.PickListStats, error)
	OrdersForSKU(ctx context.Context, sku string) ([]model.SKUOrder, error)

	Pick(ctx context.Context, req model.PickRequest, userID int64) (*model.PickResult, error)
	MarkShort(ctx context.Context, req model.MarkShortRequest, userID int64) (*model.ShortResult, error)

	PickedItems(ctx context.Context, filter model.PickedItemFilter) ([]model.PickedItem, error)
	RevertPickedItem(ctx context.Context, lineID int64, qty *int, userID int64) (*model.RevertResult, error)

	PickEvents(ctx context.Context, filter model.PickEventFilter) ([]model.PickEventRow, error)
	CleanupEvents(ctx context.Context, retentionDays int) (int64, error)
}
