package handler

import (
	"time"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	service service.ReportService
	loc     *time.Location
	log     *zap.Logger
}

func NewDashboardHandler(s service.ReportService, loc *time.Location, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, loc: loc, log: log}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(stats)
}

// GetDailyStats reports one business day, today by default.
// Query params: date (YYYY-MM-DD)
func (h *DashboardHandler) GetDailyStats(c *fiber.Ctx) error {
	day := time.Now().In(h.loc)
	if s := c.Query("date"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, h.loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = t
	}
	stats, err := h.service.DailyStats(c.UserContext(), day)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(stats)
}

// Query params: limit (default 5, max 20), start, end
func (h *DashboardHandler) GetTopProducts(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	top, err := h.service.TopProducts(c.UserContext(), c.QueryInt("limit", 5), start, end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(top)
}

// Query params: start, end
func (h *DashboardHandler) GetCashierPerformance(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	perf, err := h.service.CashierPerformance(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(perf)
}
