package service

import (
	"context"
	"sort"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/tax"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const unknownCashier = "Bilinmiyor"

type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	TotalStock     int64           `json:"total_stock"`
	DailyRevenue   decimal.Decimal `json:"daily_revenue"`
	LowStockCount  int64           `json:"low_stock_count"`
	DailyItemsSold int             `json:"daily_items_sold"`
	TotalSales     int64           `json:"total_sales"`
}

type DailyStats struct {
	Date           string          `json:"date"`
	TotalSales     int             `json:"total_sales"`
	DailyRevenue   decimal.Decimal `json:"daily_revenue"`
	DailyItemsSold int             `json:"daily_items_sold"`
}

type TopProduct struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CashierPerformance struct {
	CashierID    uuid.UUID       `json:"cashier_id"`
	CashierName  string          `json:"cashier_name"`
	SalesCount   int             `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}

type ReportService interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	DailyStats(ctx context.Context, day time.Time) (*DailyStats, error)
	TopProducts(ctx context.Context, limit int, start, end *time.Time) ([]TopProduct, error)
	CashierPerformance(ctx context.Context, start, end *time.Time) ([]CashierPerformance, error)
}

type reportService struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	users    repository.UserRepository
	loc      *time.Location
	now      func() time.Time
}

// NewReportService builds the reports. Days are cut at midnight in loc.
func NewReportService(products repository.ProductRepository, sales repository.SaleRepository, users repository.UserRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{products: products, sales: sales, users: users, loc: loc, now: time.Now}
}

func (s *reportService) dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(s.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *reportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	ps, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.sales.Count(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.DailyStats(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalProducts:  ps.TotalProducts,
		TotalStock:     ps.TotalStock,
		DailyRevenue:   today.DailyRevenue,
		LowStockCount:  ps.LowStockCount,
		DailyItemsSold: today.DailyItemsSold,
		TotalSales:     total,
	}, nil
}

func (s *reportService) DailyStats(ctx context.Context, day time.Time) (*DailyStats, error) {
	start, end := s.dayBounds(day)
	sales, err := s.sales.Between(ctx, &start, &end)
	if err != nil {
		return nil, err
	}
	stats := SummarizeDay(sales)
	stats.Date = start.Format("2006-01-02")
	return &stats, nil
}

func (s *reportService) TopProducts(ctx context.Context, limit int, start, end *time.Time) ([]TopProduct, error) {
	limit = clampTop(limit)
	rows, err := s.sales.ProductTotals(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	return RankProducts(rows, limit), nil
}

func (s *reportService) CashierPerformance(ctx context.Context, start, end *time.Time) ([]CashierPerformance, error) {
	rows, err := s.sales.CashierTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, row := range rows {
		if row.CashierID != uuid.Nil {
			ids = append(ids, row.CashierID)
		}
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}

	return SummarizeCashiers(rows, names), nil
}

// SummarizeDay totals a day's sales.
func SummarizeDay(sales []model.Sale) DailyStats {
	stats := DailyStats{TotalSales: len(sales), DailyRevenue: decimal.Zero}
	for i := range sales {
		stats.DailyRevenue = stats.DailyRevenue.Add(sales[i].Total)
		stats.DailyItemsSold += sales[i].ItemCount()
	}
	stats.DailyRevenue = tax.Round2(stats.DailyRevenue)
	return stats
}

func clampTop(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 20 {
		return 20
	}
	return limit
}

// RankProducts orders per-product totals, most units first. Ties keep
// the higher revenue first, then the name. limit is clamped to 1..20.
func RankProducts(rows []repository.ProductSales, limit int) []TopProduct {
	limit = clampTop(limit)

	out := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProduct{
			ProductID:    row.ProductID,
			Name:         row.ProductName,
			QuantitySold: row.Quantity,
			Revenue:      tax.Round2(row.Revenue),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SummarizeCashiers names per-cashier totals, highest revenue first.
// Unknown ids fall back to the raw id; sales without a cashier are
// reported under "Bilinmiyor".
func SummarizeCashiers(rows []repository.CashierSales, names map[uuid.UUID]string) []CashierPerformance {
	out := make([]CashierPerformance, 0, len(rows))
	for _, row := range rows {
		name, known := names[row.CashierID]
		switch {
		case row.CashierID == uuid.Nil:
			name = unknownCashier
		case !known || name == "":
			name = row.CashierID.String()
		}
		cp := CashierPerformance{
			CashierID:    row.CashierID,
			CashierName:  name,
			SalesCount:   row.SalesCount,
			TotalRevenue: tax.Round2(row.Revenue),
			AverageSale:  decimal.Zero,
		}
		if row.SalesCount > 0 {
			cp.AverageSale = tax.Round2(row.Revenue.Div(decimal.NewFromInt(int64(row.SalesCount))))
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	return out
}
