package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockStore is the storage side of a stock adjustment.
type StockStore interface {
	IncrementStock(ctx context.Context, id uuid.UUID, delta int) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ClampStock(ctx context.Context, id uuid.UUID) (bool, error)
}

// AdjustError is returned by StockAdjuster.Adjust. Applied reports whether
// the increment committed before the failure; when it did, the stock
// already reflects Delta and must not be adjusted again by hand.
type AdjustError struct {
	ProductID uuid.UUID
	Delta     int
	Applied   bool
	Err       error
}

func (e *AdjustError) Error() string {
	return fmt.Sprintf("adjust %s: %v", e.ProductID, e.Err)
}

func (e *AdjustError) Unwrap() error { return e.Err }

// adjustApplied reports whether err came from an adjustment whose
// increment had already committed.
func adjustApplied(err error) bool {
	var ae *AdjustError
	return errors.As(err, &ae) && ae.Applied
}

// StockAdjuster is the only writer of Product.stock after creation.
// It never holds a lock: the increment is evaluated by the store and a
// negative result is pulled back to zero afterwards.
type StockAdjuster struct {
	store   StockStore
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewStockAdjuster(store StockStore, log *zap.Logger, m *metrics.Metrics) *StockAdjuster {
	return &StockAdjuster{store: store, log: log, metrics: m}
}

// Adjust adds delta (negative to remove) to a product's stock and returns
// the product as re-read after the change. Two concurrent removals that
// together exceed the stock both succeed and leave the stock at zero.
func (a *StockAdjuster) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*model.Product, error) {
	fail := func(applied bool, err error) (*model.Product, error) {
		return nil, &AdjustError{ProductID: productID, Delta: delta, Applied: applied, Err: err}
	}

	// 1. Atomic increment
	if err := a.store.IncrementStock(ctx, productID, delta); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(false, ErrProductNotFound)
		}
		return fail(false, fmt.Errorf("increment: %w", err))
	}

	// 2. Re-read
	product, err := a.store.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(true, fmt.Errorf("reload: %w", ErrProductNotFound))
		}
		return fail(true, fmt.Errorf("reload: %w", err))
	}
	if product.Stock >= 0 {
		return product, nil
	}

	// 3. Clamp to zero
	clamped, err := a.store.ClampStock(ctx, productID)
	if err != nil {
		return fail(true, fmt.Errorf("clamp: %w", err))
	}
	if clamped {
		a.metrics.StockClamps.Inc()
		a.log.Info("stock clamped to zero",
			zap.String("product_id", productID.String()),
			zap.Int("delta", delta),
			zap.Int("computed_stock", product.Stock),
		)
	}
	product.Stock = 0
	return product, nil
}
