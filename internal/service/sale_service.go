package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/tax"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// postCommitTimeout bounds the stock adjustments that follow a sale.
const postCommitTimeout = 15 * time.Second

// EventPublisher pushes realtime events to connected registers.
type EventPublisher interface {
	Publish(event ws.Event)
}

// Viewer is the authenticated caller of a read operation.
type Viewer struct {
	UserID uuid.UUID
	Role   model.Role
}

type CreateSaleRequest struct {
	Items         []CartItem `json:"items"`
	PaymentMethod string     `json:"payment_method"`
}

type SaleQuery struct {
	Start     *time.Time
	End       *time.Time
	CashierID *uuid.UUID
	Skip      int
	Limit     int
}

type SaleService interface {
	PostSale(ctx context.Context, req *CreateSaleRequest, cashierID uuid.UUID) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID, viewer Viewer) (*model.Sale, error)
	ListSales(ctx context.Context, q SaleQuery, viewer Viewer) ([]model.Sale, error)
}

type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

type saleService struct {
	products  ProductLookup
	sales     repository.SaleRepository
	adjuster  *StockAdjuster
	reconcile ReconciliationService
	events    EventPublisher
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewSaleService(
	products ProductLookup,
	sales repository.SaleRepository,
	adjuster *StockAdjuster,
	reconcile ReconciliationService,
	events EventPublisher,
	log *zap.Logger,
	m *metrics.Metrics,
) SaleService {
	return &saleService{
		products:  products,
		sales:     sales,
		adjuster:  adjuster,
		reconcile: reconcile,
		events:    events,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// PostSale validates the cart, prices it, stores the sale and then takes
// the sold units out of stock. Only validation and the sale insert can
// fail the call; stock adjustment problems are logged and queued for
// reconciliation.
func (s *saleService) PostSale(ctx context.Context, req *CreateSaleRequest, cashierID uuid.UUID) (*model.Sale, error) {
	paymentMethod, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, invalid("%v", err)
	}

	// 1. Validate against one snapshot
	snapshot, err := s.products.FindByIDs(ctx, cartProductIDs(req.Items))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
	}
	if err := ValidateCart(req.Items, byID); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.SaleRejections.WithLabelValues(string(verr.Rule)).Inc()
		}
		return nil, err
	}

	// 2. Price every line
	sale := &model.Sale{
		ID:            uuid.New(),
		CreatedAt:     s.now().UTC(),
		CashierID:     cashierID,
		PaymentMethod: paymentMethod,
		Items:         make([]model.SaleItem, 0, len(req.Items)),
	}
	lines := make([]tax.Line, 0, len(req.Items))
	for i, it := range req.Items {
		p := byID[uuid.MustParse(it.ProductID)]
		price := tax.Round2(it.UnitPrice)
		line := tax.Calculate(it.Quantity, price, p.TaxRate)
		lines = append(lines, line)
		sale.Items = append(sale.Items, model.SaleItem{
			SaleID:      sale.ID,
			Position:    i,
			ProductID:   p.ID,
			Barcode:     p.Barcode,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   price,
			TaxRate:     p.TaxRate,
			NetAmount:   line.Net,
			TaxAmount:   line.Tax,
			LineTotal:   line.Gross,
		})
	}

	// 3. Totals
	totals := tax.Aggregate(lines)
	sale.Subtotal = totals.Subtotal
	sale.TaxAmount = totals.TaxAmount
	sale.Total = totals.Total

	// 4. Commit point
	if err := s.sales.Create(ctx, sale); err != nil {
		s.log.Error("sale insert failed",
			zap.String("sale_id", sale.ID.String()),
			zap.String("cashier_id", cashierID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("save sale: %w", err)
	}
	s.metrics.SalesPosted.Inc()
	s.metrics.SalesRevenue.Add(sale.Total.InexactFloat64())

	s.events.Publish(ws.Event{
		Type:   ws.TypeSale,
		Action: "sale_created",
		Data: map[string]interface{}{
			"id":         sale.ID,
			"cashier_id": sale.CashierID,
			"total":      sale.Total,
			"items":      sale.ItemCount(),
		},
		Message: fmt.Sprintf("Sale %s completed: %s", sale.ID, sale.Total.StringFixed(2)),
	})

	// 5. Best-effort stock decrements. The sale is already final, so a
	// cancelled request must not stop them.
	adjustCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()
	for _, item := range sale.Items {
		s.decrement(adjustCtx, sale, item, byID[item.ProductID])
	}

	return sale, nil
}

func (s *saleService) decrement(ctx context.Context, sale *model.Sale, item model.SaleItem, before model.Product) {
	delta := -item.Quantity
	product, err := s.adjuster.Adjust(ctx, item.ProductID, delta)
	if err != nil {
		applied := adjustApplied(err)
		outcome, msg := "failed", "stock adjustment failed after sale"
		if applied {
			outcome, msg = "unverified", "stock adjusted after sale but could not be verified"
		}
		s.metrics.StockAdjustments.WithLabelValues(string(model.SourceSale), outcome).Inc()
		s.log.Warn(msg,
			zap.String("sale_id", sale.ID.String()),
			zap.String("product_id", item.ProductID.String()),
			zap.String("product_name", item.ProductName),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		s.reconcile.Record(ctx, FailedAdjustment{
			ProductID: item.ProductID,
			Source:    model.SourceSale,
			SourceID:  sale.ID,
			Delta:     delta,
			Applied:   applied,
			Cause:     err,
		})
		return
	}
	s.metrics.StockAdjustments.WithLabelValues(string(model.SourceSale), "applied").Inc()

	s.events.Publish(ws.Event{
		Type:   ws.TypeStock,
		Action: "sale_adjusted",
		Data: map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
			"old_stock":  before.Stock,
			"new_stock":  product.Stock,
			"sale_id":    sale.ID,
		},
	})
	if product.IsLowStock() {
		s.events.Publish(ws.Event{
			Type:   ws.TypeLowStock,
			Action: "threshold_reached",
			Data: map[string]interface{}{
				"product_id": product.ID,
				"name":       product.Name,
				"stock":      product.Stock,
				"min_stock":  product.MinStock,
			},
			Message: fmt.Sprintf("'%s' is low on stock (%d left)", product.Name, product.Stock),
		})
	}
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID, viewer Viewer) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if !viewer.Role.IsAdmin() && sale.CashierID != viewer.UserID {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// ListSales lists newest first. Cashiers always see only their own sales.
func (s *saleService) ListSales(ctx context.Context, q SaleQuery, viewer Viewer) ([]model.Sale, error) {
	f := repository.SaleFilter{
		Start:     q.Start,
		End:       q.End,
		CashierID: q.CashierID,
		Skip:      q.Skip,
		Limit:     repository.ClampLimit(q.Limit, 50, 1000),
	}
	if !viewer.Role.IsAdmin() {
		own := viewer.UserID
		f.CashierID = &own
	}
	return s.sales.List(ctx, f)
}
