package service

import (
	"context"

	"warehouse-picking-backend/internal/domains/order/model"
)

type OrderService interface {
	GetDetail(ctx context.Context, id int64) (*model.Detail, error)
	StatusBoard(ctx context.Context) ([]model.StatusRow, error)
	ReadyToPack(ctx context.Context) ([]model.StatusRow, error)
	Packed(ctx context.Context, filter model.PackedFilter) ([]model.StatusRow, int, error)

	MarkPacked(ctx context.Context, orderID, userID int64) (*model.Order, error)
	RevertToPicking(ctx context.Context, orderID int64) (*model.Order, error)
	ChangeState(ctx context.Context, orderID, userID int64, target string) (*model.Order, error)
	UpdateMessage(ctx context.Context, orderID int64, req model.UpdateMessageRequest) (*model.Order, error)
	Split(ctx context.Context, orderID int64, req model.SplitRequest) (*model.Order, error)
	Unsplit(ctx context.Context, orderID int64) (*model.Order, error)
}
