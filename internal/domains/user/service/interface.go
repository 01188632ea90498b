package service

import (
	"context"

	"warehouse-picking-backend/internal/domains/user/model"
)

type UserService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error

	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, req model.ResetPasswordRequest) error
}
