package persistence

import (
	"context"
	"database/sql"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
)

// UserRepository implements the user store on PostgreSQL.
type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()
	row := stmt.QueryRowContext(ctx, userName)
	err = row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO public.user (name, user_name, password, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`,
		user.Name, user.UserName, user.Password, now)
	return err
}
