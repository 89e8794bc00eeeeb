package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FailedAdjustment describes a stock change that did not complete.
// Applied is set when the increment committed and only the follow-up
// re-read or clamp failed; such rows are stored with a zero delta.
type FailedAdjustment struct {
	ProductID uuid.UUID
	Source    model.ReconciliationSource
	SourceID  uuid.UUID
	Delta     int
	Applied   bool
	Cause     error
}

type ReconciliationService interface {
	// Record stores a failed adjustment. It never returns an error: a
	// failure to record is logged with every identifier instead.
	Record(ctx context.Context, f FailedAdjustment)
	List(ctx context.Context, includeResolved bool, skip, limit int) ([]model.StockReconciliation, error)
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy string) error
}

type reconciliationService struct {
	repo    repository.ReconciliationRepository
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewReconciliationService(repo repository.ReconciliationRepository, log *zap.Logger, m *metrics.Metrics) ReconciliationService {
	return &reconciliationService{repo: repo, log: log, metrics: m, now: time.Now}
}

func (s *reconciliationService) Record(ctx context.Context, f FailedAdjustment) {
	reason := ""
	if f.Cause != nil {
		reason = f.Cause.Error()
	}
	delta := f.Delta
	if f.Applied {
		reason = fmt.Sprintf("applied %+d; verify stock: %s", f.Delta, reason)
		delta = 0
	}
	rec := &model.StockReconciliation{
		ProductID: f.ProductID,
		Source:    f.Source,
		SourceID:  f.SourceID,
		Delta:     delta,
		Applied:   f.Applied,
		Reason:    reason,
	}
	rec.CreatedBy = "system"

	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Error("could not record failed stock adjustment",
			zap.String("product_id", f.ProductID.String()),
			zap.String("source", string(f.Source)),
			zap.String("source_id", f.SourceID.String()),
			zap.Int("delta", f.Delta),
			zap.Bool("applied", f.Applied),
			zap.String("cause", reason),
			zap.Error(err),
		)
		return
	}
	s.metrics.ReconciliationsOpen.Inc()
}

func (s *reconciliationService) List(ctx context.Context, includeResolved bool, skip, limit int) ([]model.StockReconciliation, error) {
	return s.repo.List(ctx, includeResolved, skip, limit)
}

func (s *reconciliationService) Resolve(ctx context.Context, id uuid.UUID, resolvedBy string) error {
	err := s.repo.Resolve(ctx, id, resolvedBy, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrReconcileNotFound
	}
	return err
}
