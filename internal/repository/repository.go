package repository

import (
	"errors"

	"go-pos-ws/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// AutoMigrate creates or updates every table and index. It is safe to run
// on every start: existing tables and indexes are left as they are.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockMovement{},
		&model.FinanceTransaction{},
		&model.StockReconciliation{},
	)
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// ClampLimit bounds a page size, falling back to def for non-positive input.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func page(db *gorm.DB, skip, limit int) *gorm.DB {
	if skip < 0 {
		skip = 0
	}
	return db.Offset(skip).Limit(ClampLimit(limit, defaultLimit, maxLimit))
}
