package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/tax"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateFinanceRequest struct {
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date,omitempty"`
	Category    string          `json:"category" validate:"max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Person      string          `json:"person" validate:"max=255"`
}

type FinanceQuery struct {
	Start  *time.Time
	End    *time.Time
	Type   string
	Search string
	Skip   int
	Limit  int
}

type FinanceSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

var financePatchKeys = []string{"type", "amount", "date", "category", "description", "person"}

type FinanceService interface {
	List(ctx context.Context, q FinanceQuery) ([]model.FinanceTransaction, error)
	Create(ctx context.Context, req *CreateFinanceRequest, actor Actor) (*model.FinanceTransaction, error)
	Update(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.FinanceTransaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, start, end *time.Time) (*FinanceSummary, error)
}

type financeService struct {
	repo repository.FinanceRepository
	now  func() time.Time
}

func NewFinanceService(repo repository.FinanceRepository) FinanceService {
	return &financeService{repo: repo, now: time.Now}
}

func (s *financeService) List(ctx context.Context, q FinanceQuery) ([]model.FinanceTransaction, error) {
	f := repository.FinanceFilter{
		Start:  q.Start,
		End:    q.End,
		Search: strings.TrimSpace(q.Search),
		Skip:   q.Skip,
		Limit:  repository.ClampLimit(q.Limit, 50, 1000),
	}
	if q.Type != "" && !strings.EqualFold(q.Type, "all") {
		t, err := model.ParseFinanceType(q.Type)
		if err != nil {
			return nil, invalid("%v", err)
		}
		f.Type = t
	}
	return s.repo.List(ctx, f)
}

func (s *financeService) Create(ctx context.Context, req *CreateFinanceRequest, actor Actor) (*model.FinanceTransaction, error) {
	if err := validator.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}
	t, err := model.ParseFinanceType(req.Type)
	if err != nil {
		return nil, invalid("%v", err)
	}
	amount := tax.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, invalid("amount must be greater than 0")
	}

	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	tx := &model.FinanceTransaction{
		Type:          t,
		Amount:        amount,
		Date:          date,
		Category:      strings.TrimSpace(req.Category),
		Description:   strings.TrimSpace(req.Description),
		Person:        strings.TrimSpace(req.Person),
		CreatedByName: actor.Name,
	}
	tx.CreatedBy = actor.UserID.String()
	tx.UpdatedBy = actor.UserID.String()

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Update applies a sparse patch; an empty patch returns the row unchanged.
func (s *financeService) Update(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.FinanceTransaction, error) {
	if unknown := patch.Unknown(financePatchKeys...); len(unknown) > 0 {
		return nil, invalid("unknown fields: %s", strings.Join(unknown, ", "))
	}

	fields := map[string]interface{}{}
	if patch.Has("type") {
		var raw string
		if err := patch.Decode("type", &raw); err != nil {
			return nil, invalid("%v", err)
		}
		t, err := model.ParseFinanceType(raw)
		if err != nil {
			return nil, invalid("%v", err)
		}
		fields["type"] = t
	}
	if patch.Has("amount") {
		var v decimal.Decimal
		if err := patch.Decode("amount", &v); err != nil || !tax.Round2(v).IsPositive() {
			return nil, invalid("amount must be greater than 0")
		}
		fields["amount"] = tax.Round2(v)
	}
	if patch.Has("date") {
		var v time.Time
		if err := patch.Decode("date", &v); err != nil {
			return nil, invalid("%v", err)
		}
		fields["date"] = v.UTC()
	}
	for _, key := range []string{"category", "description", "person"} {
		if !patch.Has(key) {
			continue
		}
		var v string
		if !patch.IsNull(key) {
			if err := patch.Decode(key, &v); err != nil {
				return nil, invalid("%v", err)
			}
		}
		fields[key] = strings.TrimSpace(v)
	}

	if len(fields) > 0 {
		fields["updated_by"] = actor.UserID.String()
		if err := s.repo.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrFinanceNotFound
			}
			return nil, err
		}
	}

	tx, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFinanceNotFound
	}
	return tx, err
}

func (s *financeService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFinanceNotFound
	}
	return err
}

func (s *financeService) Summary(ctx context.Context, start, end *time.Time) (*FinanceSummary, error) {
	income, expense, err := s.repo.Totals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	income = tax.Round2(income)
	expense = tax.Round2(expense)
	return &FinanceSummary{
		Income:  income,
		Expense: expense,
		Net:     tax.Round2(income.Sub(expense)),
	}, nil
}
