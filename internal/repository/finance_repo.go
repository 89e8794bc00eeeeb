package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinanceFilter struct {
	Start  *time.Time
	End    *time.Time
	Type   model.FinanceType
	Search string
	Skip   int
	Limit  int
}

type FinanceRepository interface {
	Create(ctx context.Context, tx *model.FinanceTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FinanceTransaction, error)
	List(ctx context.Context, f FinanceFilter) ([]model.FinanceTransaction, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Totals(ctx context.Context, start, end *time.Time) (income, expense decimal.Decimal, err error)
}

type financeRepo struct {
	db *gorm.DB
}

func NewFinanceRepo(db *gorm.DB) FinanceRepository {
	return &financeRepo{db}
}

func (r *financeRepo) Create(ctx context.Context, tx *model.FinanceTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *financeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FinanceTransaction, error) {
	var tx model.FinanceTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *financeRepo) dateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	return q
}

func (r *financeRepo) List(ctx context.Context, f FinanceFilter) ([]model.FinanceTransaction, error) {
	var list []model.FinanceTransaction
	q := r.dateRange(r.db.WithContext(ctx).Model(&model.FinanceTransaction{}), f.Start, f.End)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("category ILIKE ? OR description ILIKE ? OR person ILIKE ? OR created_by_name ILIKE ?", like, like, like, like)
	}
	err := page(q.Order("date DESC"), f.Skip, f.Limit).Find(&list).Error
	return list, translate(err)
}

func (r *financeRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.FinanceTransaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *financeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.FinanceTransaction{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type financeTotalsRow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (r *financeRepo) Totals(ctx context.Context, start, end *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var row financeTotalsRow
	q := r.dateRange(r.db.WithContext(ctx).Model(&model.FinanceTransaction{}), start, end)
	err := q.Select(
		"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS income, "+
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expense",
		model.FinanceIncome, model.FinanceExpense,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, translate(err)
	}
	return row.Income, row.Expense, nil
}
