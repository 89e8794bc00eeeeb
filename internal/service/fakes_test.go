package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProducts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Product
}

func newFakeProducts(products ...*model.Product) *fakeProducts {
	f := &fakeProducts{rows: map[uuid.UUID]*model.Product{}}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.NormalizedName == "" {
			p.NormalizedName = model.NormalizeName(p.Name)
		}
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProducts) stock(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Stock
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Barcode == p.Barcode || r.NormalizedName == p.NormalizedName {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) FindByNormalizedName(_ context.Context, normalized string, excludeID uuid.UUID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.NormalizedName == normalized && p.ID != excludeID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, p := range f.rows {
		if filter.LowStock && !p.IsLowStock() {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProducts) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "barcode":
			p.Barcode = v.(string)
		case "name":
			p.Name = v.(string)
		case "normalized_name":
			p.NormalizedName = v.(string)
		case "category":
			p.Category = v.(string)
		case "brand":
			p.Brand = v.(string)
		case "min_stock":
			p.MinStock = v.(int)
		case "tax_rate":
			p.TaxRate = v.(int)
		case "buy_price":
			p.BuyPrice = v.(decimal.Decimal)
		case "sell_price":
			p.SellPrice = v.(decimal.Decimal)
		case "supplier":
			if v == nil {
				p.Supplier = nil
			} else {
				s := v.(string)
				p.Supplier = &s
			}
		case "updated_by":
			p.UpdatedBy = v.(string)
		}
	}
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProducts) IncrementStock(_ context.Context, id uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += delta
	return nil
}

func (f *fakeProducts) ClampStock(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.Stock >= 0 {
		return false, nil
	}
	p.Stock = 0
	return true, nil
}

func (f *fakeProducts) Stats(_ context.Context) (*repository.ProductStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repository.ProductStats{}
	for _, p := range f.rows {
		stats.TotalProducts++
		stats.TotalStock += int64(p.Stock)
		if p.IsLowStock() {
			stats.LowStockCount++
		}
	}
	return stats, nil
}

// failingStore fails the increment for one product and passes the rest through.
type failingStore struct {
	*fakeProducts
	failFor uuid.UUID
}

func (s failingStore) IncrementStock(ctx context.Context, id uuid.UUID, delta int) error {
	if id == s.failFor {
		return errors.New("connection reset by peer")
	}
	return s.fakeProducts.IncrementStock(ctx, id, delta)
}

// reloadFailingStore lets the increment through but fails the re-read
// that follows it for one product.
type reloadFailingStore struct {
	*fakeProducts
	failFor uuid.UUID
}

func (s reloadFailingStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if id == s.failFor {
		return nil, errors.New("read timeout")
	}
	return s.fakeProducts.FindByID(ctx, id)
}

type fakeSales struct {
	mu        sync.Mutex
	rows      []model.Sale
	createErr error
}

func (f *fakeSales) Create(_ context.Context, sale *model.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *sale)
	return nil
}

func (f *fakeSales) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			s := f.rows[i]
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSales) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Sale
	for _, s := range f.rows {
		if filter.CashierID != nil && s.CashierID != *filter.CashierID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSales) Between(_ context.Context, start, end *time.Time) ([]model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Sale
	for _, s := range f.rows {
		if start != nil && s.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && !s.CreatedAt.Before(*end) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// ProductTotals groups like the SQL query does, including its ordering.
func (f *fakeSales) ProductTotals(ctx context.Context, start, end *time.Time, limit int) ([]repository.ProductSales, error) {
	sales, _ := f.Between(ctx, start, end)
	byProduct := map[uuid.UUID]*repository.ProductSales{}
	var out []repository.ProductSales
	var order []uuid.UUID
	for _, sale := range sales {
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &repository.ProductSales{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				byProduct[item.ProductID] = row
				order = append(order, item.ProductID)
			}
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.LineTotal)
		}
	}
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSales) CashierTotals(ctx context.Context, start, end *time.Time) ([]repository.CashierSales, error) {
	sales, _ := f.Between(ctx, start, end)
	byCashier := map[uuid.UUID]*repository.CashierSales{}
	var out []repository.CashierSales
	var order []uuid.UUID
	for _, sale := range sales {
		row, ok := byCashier[sale.CashierID]
		if !ok {
			row = &repository.CashierSales{CashierID: sale.CashierID, Revenue: decimal.Zero}
			byCashier[sale.CashierID] = row
			order = append(order, sale.CashierID)
		}
		row.SalesCount++
		row.Revenue = row.Revenue.Add(sale.Total)
	}
	for _, id := range order {
		out = append(out, *byCashier[id])
	}
	return out, nil
}

func (f *fakeSales) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeMovements struct {
	mu   sync.Mutex
	rows []model.StockMovement
}

func (f *fakeMovements) Create(_ context.Context, m *model.StockMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMovements) List(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StockMovement
	for _, m := range f.rows {
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fakeReconciliations struct {
	mu   sync.Mutex
	rows []model.StockReconciliation
}

func (f *fakeReconciliations) Create(_ context.Context, rec *model.StockReconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.rows = append(f.rows, *rec)
	return nil
}

func (f *fakeReconciliations) List(_ context.Context, includeResolved bool, _, _ int) ([]model.StockReconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StockReconciliation
	for _, r := range f.rows {
		if !includeResolved && r.IsResolved() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReconciliations) Resolve(_ context.Context, id uuid.UUID, by string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && !f.rows[i].IsResolved() {
			f.rows[i].ResolvedAt = &at
			f.rows[i].ResolvedBy = by
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeReconciliations) all() []model.StockReconciliation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.StockReconciliation(nil), f.rows...)
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := f.rows[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.rows {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			u.FullName = v.(string)
		case "role":
			u.Role = v.(model.Role)
		case "is_active":
			u.IsActive = v.(bool)
		case "password":
			u.Password = v.(string)
		case "updated_by":
			u.UpdatedBy = v.(string)
		}
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	return f.Update(context.Background(), id, map[string]interface{}{"password": hashed})
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.rows[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type fakeFinance struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.FinanceTransaction
}

func newFakeFinance() *fakeFinance {
	return &fakeFinance{rows: map[uuid.UUID]*model.FinanceTransaction{}}
}

func (f *fakeFinance) Create(_ context.Context, tx *model.FinanceTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	cp := *tx
	f.rows[tx.ID] = &cp
	return nil
}

func (f *fakeFinance) FindByID(_ context.Context, id uuid.UUID) (*model.FinanceTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeFinance) List(_ context.Context, filter repository.FinanceFilter) ([]model.FinanceTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FinanceTransaction
	for _, tx := range f.rows {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, *tx)
	}
	return out, nil
}

func (f *fakeFinance) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "type":
			tx.Type = v.(model.FinanceType)
		case "amount":
			tx.Amount = v.(decimal.Decimal)
		case "date":
			tx.Date = v.(time.Time)
		case "category":
			tx.Category = v.(string)
		case "description":
			tx.Description = v.(string)
		case "person":
			tx.Person = v.(string)
		case "updated_by":
			tx.UpdatedBy = v.(string)
		}
	}
	return nil
}

func (f *fakeFinance) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeFinance) Totals(_ context.Context, start, end *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range f.rows {
		if start != nil && tx.Date.Before(*start) {
			continue
		}
		if end != nil && !tx.Date.Before(*end) {
			continue
		}
		if tx.Type == model.FinanceIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(e ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type + "/" + e.Action
	}
	return out
}

// posFixture wires the sale and stock services over in-memory stores.
type posFixture struct {
	products  *fakeProducts
	sales     *fakeSales
	movements *fakeMovements
	recs      *fakeReconciliations
	events    *recordingPublisher
	logs      *observer.ObservedLogs
	metrics   *metrics.Metrics
	saleSvc   SaleService
	stockSvc  StockService
}

func newPOSFixture(t *testing.T, store StockStore, products *fakeProducts) *posFixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	m := metrics.NewNoop()
	if store == nil {
		store = products
	}

	f := &posFixture{
		products:  products,
		sales:     &fakeSales{},
		movements: &fakeMovements{},
		recs:      &fakeReconciliations{},
		events:    &recordingPublisher{},
		logs:      logs,
		metrics:   m,
	}
	adjuster := NewStockAdjuster(store, log, m)
	reconcile := NewReconciliationService(f.recs, log, m)
	f.saleSvc = NewSaleService(products, f.sales, adjuster, reconcile, f.events, log, m)
	f.stockSvc = NewStockService(products, f.movements, adjuster, reconcile, f.events, log, m)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
