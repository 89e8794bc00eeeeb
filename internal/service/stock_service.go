package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/tax"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type MovementRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Type      string           `json:"type" validate:"required"`
	Quantity  int              `json:"quantity" validate:"min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Supplier  *string          `json:"supplier,omitempty" validate:"omitempty,max=255"`
	Note      *string          `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// MovementResult carries the stock after the movement. StockUnverified
// means the change landed but could not be re-read; NewStock is then
// derived from the stock seen before the movement.
type MovementResult struct {
	Movement        *model.StockMovement `json:"movement"`
	NewStock        int                  `json:"new_stock"`
	StockUnverified bool                 `json:"stock_unverified,omitempty"`
}

type MovementQuery struct {
	ProductID *uuid.UUID
	Type      string
	Skip      int
	Limit     int
}

// Actor identifies who performs a write.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   model.Role
}

type StockService interface {
	RecordMovement(ctx context.Context, req *MovementRequest, actor Actor) (*MovementResult, error)
	ListMovements(ctx context.Context, q MovementQuery) ([]model.StockMovement, error)
	LowStock(ctx context.Context) ([]model.Product, error)
}

type stockService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	adjuster  *StockAdjuster
	reconcile ReconciliationService
	events    EventPublisher
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewStockService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	adjuster *StockAdjuster,
	reconcile ReconciliationService,
	events EventPublisher,
	log *zap.Logger,
	m *metrics.Metrics,
) StockService {
	return &stockService{
		products:  products,
		movements: movements,
		adjuster:  adjuster,
		reconcile: reconcile,
		events:    events,
		log:       log,
		metrics:   m,
	}
}

// RecordMovement stores a manual in/out entry and applies it to stock.
// Unlike sales, a failed adjustment is reported to the caller; the
// movement row stays and a reconciliation row is opened for it. An
// adjustment that landed but could not be verified is not an error.
func (s *stockService) RecordMovement(ctx context.Context, req *MovementRequest, actor Actor) (*MovementResult, error) {
	// 1. Validate
	if err := validator.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}
	movementType, err := model.ParseMovementType(req.Type)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, invalid("unit_price must not be negative")
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// 2. Persist the movement
	movement := &model.StockMovement{
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        movementType,
		Quantity:    req.Quantity,
		Supplier:    req.Supplier,
		Note:        req.Note,
		UserID:      actor.UserID,
	}
	if req.UnitPrice != nil {
		unit := tax.Round2(*req.UnitPrice)
		movement.UnitPrice = decimal.NewNullDecimal(unit)
		movement.TotalPrice = decimal.NewNullDecimal(tax.Round2(unit.Mul(decimal.NewFromInt(int64(req.Quantity)))))
	}
	movement.ID = uuid.New()
	if err := s.movements.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("save movement: %w", err)
	}
	s.metrics.StockMovementsPosted.WithLabelValues(string(movementType)).Inc()

	// 3. Apply to stock
	delta := movementType.Delta(req.Quantity)
	updated, err := s.adjuster.Adjust(ctx, product.ID, delta)
	if err != nil {
		applied := adjustApplied(err)
		outcome, msg := "failed", "stock adjustment failed for movement"
		if applied {
			outcome, msg = "unverified", "stock adjusted for movement but could not be verified"
		}
		s.metrics.StockAdjustments.WithLabelValues(string(model.SourceMovement), outcome).Inc()
		s.log.Warn(msg,
			zap.String("movement_id", movement.ID.String()),
			zap.String("product_id", product.ID.String()),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		s.reconcile.Record(context.WithoutCancel(ctx), FailedAdjustment{
			ProductID: product.ID,
			Source:    model.SourceMovement,
			SourceID:  movement.ID,
			Delta:     delta,
			Applied:   applied,
			Cause:     err,
		})
		if applied {
			estimate := product.Stock + delta
			if estimate < 0 {
				estimate = 0
			}
			return &MovementResult{Movement: movement, NewStock: estimate, StockUnverified: true}, nil
		}
		if errors.Is(err, ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrStockAdjustment, ErrProductNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrStockAdjustment, err)
	}
	s.metrics.StockAdjustments.WithLabelValues(string(model.SourceMovement), "applied").Inc()

	// 4. Broadcast
	verb := "added"
	if movementType == model.MovementOut {
		verb = "removed"
	}
	s.events.Publish(ws.Event{
		Type:   ws.TypeStock,
		Action: "movement_recorded",
		Data: map[string]interface{}{
			"movement_id": movement.ID,
			"product_id":  product.ID,
			"name":        product.Name,
			"type":        movementType,
			"quantity":    req.Quantity,
			"old_stock":   product.Stock,
			"new_stock":   updated.Stock,
			"user_id":     actor.UserID,
		},
		Message: fmt.Sprintf("%s %s %d units of '%s'", actor.Name, verb, req.Quantity, product.Name),
	})
	if movementType == model.MovementOut && updated.IsLowStock() {
		s.events.Publish(ws.Event{
			Type:   ws.TypeLowStock,
			Action: "threshold_reached",
			Data: map[string]interface{}{
				"product_id": updated.ID,
				"name":       updated.Name,
				"stock":      updated.Stock,
				"min_stock":  updated.MinStock,
			},
			Message: fmt.Sprintf("'%s' is low on stock (%d left)", updated.Name, updated.Stock),
		})
	}

	return &MovementResult{Movement: movement, NewStock: updated.Stock}, nil
}

func (s *stockService) ListMovements(ctx context.Context, q MovementQuery) ([]model.StockMovement, error) {
	f := repository.MovementFilter{
		ProductID: q.ProductID,
		Skip:      q.Skip,
		Limit:     repository.ClampLimit(q.Limit, 100, 1000),
	}
	if q.Type != "" && q.Type != "all" {
		t, err := model.ParseMovementType(q.Type)
		if err != nil {
			return nil, invalid("%v", err)
		}
		f.Type = t
	}
	return s.movements.List(ctx, f)
}

func (s *stockService) LowStock(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx, repository.ProductFilter{LowStock: true, Limit: 1000})
}
