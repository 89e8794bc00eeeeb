package handler

import (
	"time"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SaleHandler struct {
	service service.SaleService
	loc     *time.Location
	log     *zap.Logger
}

func NewSaleHandler(s service.SaleService, loc *time.Location, log *zap.Logger) *SaleHandler {
	return &SaleHandler{service: s, loc: loc, log: log}
}

// CreateSale posts a cart as the authenticated cashier.
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	sale, err := h.service.PostSale(c.UserContext(), &req, getActor(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

// GET /api/v1/sales?start=&end=&cashier_id=&skip=&limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	q := service.SaleQuery{
		Start: start,
		End:   end,
		Skip:  c.QueryInt("skip"),
		Limit: c.QueryInt("limit"),
	}
	if s := c.Query("cashier_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return badID(c, "cashier")
		}
		q.CashierID = &id
	}

	sales, err := h.service.ListSales(c.UserContext(), q, getViewer(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "sale")
	}
	sale, err := h.service.GetSale(c.UserContext(), id, getViewer(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sale)
}
