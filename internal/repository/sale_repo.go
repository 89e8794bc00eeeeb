package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleFilter struct {
	Start     *time.Time
	End       *time.Time
	CashierID *uuid.UUID
	Skip      int
	Limit     int
}

// ProductSales is one product's sold units and revenue over a window.
type ProductSales struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Revenue     decimal.Decimal
}

// CashierSales is one cashier's sale count and revenue over a window.
type CashierSales struct {
	CashierID  uuid.UUID
	SalesCount int
	Revenue    decimal.Decimal
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]model.Sale, error)
	Between(ctx context.Context, start, end *time.Time) ([]model.Sale, error)
	Count(ctx context.Context) (int64, error)
	ProductTotals(ctx context.Context, start, end *time.Time, limit int) ([]ProductSales, error)
	CashierTotals(ctx context.Context, start, end *time.Time) ([]CashierSales, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create writes the sale and its items in one database transaction.
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(sale).Error
	}))
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (r *saleRepo) filtered(ctx context.Context, start, end *time.Time, cashierID *uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at < ?", *end)
	}
	if cashierID != nil {
		q = q.Where("cashier_id = ?", *cashierID)
	}
	return q
}

func (r *saleRepo) List(ctx context.Context, f SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.filtered(ctx, f.Start, f.End, f.CashierID).Preload("Items", orderedItems).Order("created_at DESC")
	err := page(q, f.Skip, f.Limit).Find(&sales).Error
	return sales, translate(err)
}

// Between returns every sale in [start, end), oldest first, for reports.
func (r *saleRepo) Between(ctx context.Context, start, end *time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.filtered(ctx, start, end, nil).
		Preload("Items", orderedItems).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, translate(err)
}

func (r *saleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Count(&n).Error
	return n, translate(err)
}

// ProductTotals sums sale lines per product in [start, end), most units
// first. The name is taken from the lines themselves.
func (r *saleRepo) ProductTotals(ctx context.Context, start, end *time.Time, limit int) ([]ProductSales, error) {
	q := r.db.WithContext(ctx).Table("sale_items").
		Select("sale_items.product_id AS product_id, MAX(sale_items.product_name) AS product_name, " +
			"SUM(sale_items.quantity) AS quantity, SUM(sale_items.line_total) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id")
	if start != nil {
		q = q.Where("sales.created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("sales.created_at < ?", *end)
	}

	var rows []ProductSales
	err := q.Group("sale_items.product_id").
		Order("quantity DESC, revenue DESC, product_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, translate(err)
}

// CashierTotals counts and sums sales per cashier in [start, end).
func (r *saleRepo) CashierTotals(ctx context.Context, start, end *time.Time) ([]CashierSales, error) {
	var rows []CashierSales
	err := r.filtered(ctx, start, end, nil).
		Select("cashier_id, COUNT(*) AS sales_count, SUM(total) AS revenue").
		Group("cashier_id").
		Scan(&rows).Error
	return rows, translate(err)
}
