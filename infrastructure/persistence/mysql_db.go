package persistence

import (
	"fmt"

	"content-studio/infrastructure/configuration"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQLDB opens the local MySQL database through GORM. Used as the user
// store in environments without PostgreSQL.
func NewMySQLDB() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
