package persistence

import (
	"context"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"

	"gorm.io/gorm"
)

// UserRepositoryMySQL implements the user store on MySQL via GORM, used in
// environments without PostgreSQL.
type UserRepositoryMySQL struct{ db *gorm.DB }

func NewUserRepositoryMySQL(db *gorm.DB) repository.IUser {
	return &UserRepositoryMySQL{db: db}
}

func (r *UserRepositoryMySQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Table("users").Where("user_name = ?", userName).First(&user).Error
	return user, err
}

func (r *UserRepositoryMySQL) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return r.db.WithContext(ctx).Table("users").Create(&user).Error
}
