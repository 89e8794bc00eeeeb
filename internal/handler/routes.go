package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every REST handler mounted under /api/v1.
type Handlers struct {
	Auth      *AuthHandler
	Product   *ProductHandler
	Sale      *SaleHandler
	Stock     *StockHandler
	Finance   *FinanceHandler
	Dashboard *DashboardHandler
	User      *UserHandler
}

// Mount registers the routes on api. requireAuth guards everything but login.
func (h *Handlers) Mount(api fiber.Router, requireAuth fiber.Handler) {
	priv := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)
	protected.Get("/auth/me", h.Auth.Me)
	protected.Post("/auth/change-password", h.Auth.ChangePassword)

	// Catalog
	protected.Get("/products", priv(model.PrivProductView), h.Product.GetProducts)
	protected.Get("/products/generate-barcode", priv(model.PrivProductManage), h.Product.GenerateBarcode)
	protected.Get("/products/barcode/:barcode", priv(model.PrivProductView), h.Product.GetByBarcode)
	protected.Get("/products/:id", priv(model.PrivProductView), h.Product.GetProduct)
	protected.Post("/products", priv(model.PrivProductManage), h.Product.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductManage), h.Product.UpdateProduct)
	protected.Patch("/products/:id", priv(model.PrivProductManage), h.Product.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductManage), h.Product.DeleteProduct)

	// Sales
	protected.Post("/sales", priv(model.PrivSaleCreate), h.Sale.CreateSale)
	protected.Get("/sales", priv(model.PrivSaleView), h.Sale.GetSales)
	protected.Get("/sales/:id", priv(model.PrivSaleView), h.Sale.GetSale)

	// Stock
	protected.Get("/stock/low", priv(model.PrivStockView), h.Stock.GetLowStock)
	protected.Get("/stock/movements", priv(model.PrivStockView), h.Stock.GetMovements)
	protected.Post("/stock/movements", priv(model.PrivStockMove), h.Stock.CreateMovement)
	protected.Get("/stock/reconciliations", priv(model.PrivReconcile), h.Stock.GetReconciliations)
	protected.Post("/stock/reconciliations/:id/resolve", priv(model.PrivReconcile), h.Stock.ResolveReconciliation)

	// Finance
	protected.Get("/finance", priv(model.PrivFinanceView), h.Finance.GetTransactions)
	protected.Get("/finance/summary", priv(model.PrivFinanceView), h.Finance.GetSummary)
	protected.Post("/finance", priv(model.PrivFinanceManage), h.Finance.CreateTransaction)
	protected.Patch("/finance/:id", priv(model.PrivFinanceManage), h.Finance.UpdateTransaction)
	protected.Delete("/finance/:id", priv(model.PrivFinanceManage), h.Finance.DeleteTransaction)

	// Reports
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/daily", priv(model.PrivDashboardView), h.Dashboard.GetDailyStats)
	protected.Get("/dashboard/top-products", priv(model.PrivSaleViewAll), h.Dashboard.GetTopProducts)
	protected.Get("/dashboard/cashiers", priv(model.PrivSaleViewAll), h.Dashboard.GetCashierPerformance)

	// Users
	protected.Get("/users", priv(model.PrivUserManage), h.User.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserManage), h.User.GetUser)
	protected.Post("/users", priv(model.PrivUserManage), h.User.CreateUser)
	protected.Patch("/users/:id", priv(model.PrivUserManage), h.User.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserManage), h.User.DeleteUser)
}
