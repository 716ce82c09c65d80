package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User represents an application account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserClaims is the JWT claim set issued on login.
type UserClaims struct {
	UserName string `json:"user_name"`
	Name     string `json:"name"`
	jwt.StandardClaims
}

// ReqLogin represents a login request body.
type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ReqRegister represents a registration request body.
type ReqRegister struct {
	Name     string `json:"name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
