package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementFilter struct {
	ProductID *uuid.UUID
	Type      model.MovementType
	Skip      int
	Limit     int
}

type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	List(ctx context.Context, f MovementFilter) ([]model.StockMovement, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

func (r *stockMovementRepo) List(ctx context.Context, f MovementFilter) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	err := page(q.Order("created_at DESC"), f.Skip, f.Limit).Find(&movements).Error
	return movements, translate(err)
}
