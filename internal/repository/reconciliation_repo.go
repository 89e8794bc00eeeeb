package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	Create(ctx context.Context, rec *model.StockReconciliation) error
	List(ctx context.Context, includeResolved bool, skip, limit int) ([]model.StockReconciliation, error)
	Resolve(ctx context.Context, id uuid.UUID, by string, at time.Time) error
}

type reconciliationRepo struct {
	db *gorm.DB
}

func NewReconciliationRepo(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepo{db}
}

func (r *reconciliationRepo) Create(ctx context.Context, rec *model.StockReconciliation) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *reconciliationRepo) List(ctx context.Context, includeResolved bool, skip, limit int) ([]model.StockReconciliation, error) {
	var list []model.StockReconciliation
	q := r.db.WithContext(ctx).Model(&model.StockReconciliation{})
	if !includeResolved {
		q = q.Where("resolved_at IS NULL")
	}
	err := page(q.Order("created_at ASC"), skip, limit).Find(&list).Error
	return list, translate(err)
}

// Resolve marks an open row as handled. Resolving twice is ErrNotFound.
func (r *reconciliationRepo) Resolve(ctx context.Context, id uuid.UUID, by string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.StockReconciliation{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Updates(map[string]interface{}{
			"resolved_at": at,
			"resolved_by": by,
			"updated_by":  by,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
