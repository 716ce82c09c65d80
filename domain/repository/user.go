package repository

import (
	"context"

	"content-studio/domain/model"
)

// IUser persists application accounts.
type IUser interface {
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
}
