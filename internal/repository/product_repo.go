package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search   string
	Category string
	LowStock bool
	Skip     int
	Limit    int
}

// ProductStats feeds the dashboard.
type ProductStats struct {
	TotalProducts int64 `json:"total_products"`
	TotalStock    int64 `json:"total_stock"`
	LowStockCount int64 `json:"low_stock_count"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	FindByNormalizedName(ctx context.Context, normalized string, excludeID uuid.UUID) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementStock(ctx context.Context, id uuid.UUID, delta int) error
	ClampStock(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*ProductStats, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs loads every product in ids with one query. Missing ids are
// simply absent from the result.
func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, translate(err)
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindByNormalizedName(ctx context.Context, normalized string, excludeID uuid.UUID) (*model.Product, error) {
	var product model.Product
	q := r.db.WithContext(ctx).Where("normalized_name = ?", normalized)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name ILIKE ? OR barcode ILIKE ? OR brand ILIKE ?", like, like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.LowStock {
		q = q.Where("stock <= min_stock")
	}
	err := page(q.Order("name ASC"), f.Skip, f.Limit).Find(&products).Error
	return products, translate(err)
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementStock adds delta to stock in a single UPDATE evaluated by the
// database, so concurrent callers never overwrite each other.
func (r *productRepo) IncrementStock(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClampStock sets stock to zero only if it is currently negative and
// reports whether it did.
func (r *productRepo) ClampStock(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock < 0", id).
		UpdateColumn("stock", 0)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) Stats(ctx context.Context) (*ProductStats, error) {
	var stats ProductStats
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select(`COUNT(*) AS total_products,
			COALESCE(SUM(stock), 0) AS total_stock,
			COALESCE(SUM(CASE WHEN stock <= min_stock THEN 1 ELSE 0 END), 0) AS low_stock_count`).
		Scan(&stats).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}
