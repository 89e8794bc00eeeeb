package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StockHandler struct {
	service   service.StockService
	reconcile service.ReconciliationService
	log       *zap.Logger
}

func NewStockHandler(s service.StockService, reconcile service.ReconciliationService, log *zap.Logger) *StockHandler {
	return &StockHandler{service: s, reconcile: reconcile, log: log}
}

// POST /api/v1/stock/movements
func (h *StockHandler) CreateMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	res, err := h.service.RecordMovement(c.UserContext(), &req, getActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock movement recorded", "data": res})
}

// GET /api/v1/stock/movements?product_id=&type=&skip=&limit=
func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	q := service.MovementQuery{
		Type:  c.Query("type"),
		Skip:  c.QueryInt("skip"),
		Limit: c.QueryInt("limit"),
	}
	if s := c.Query("product_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return badID(c, "product")
		}
		q.ProductID = &id
	}
	movements, err := h.service.ListMovements(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(movements)
}

// GET /api/v1/stock/low
func (h *StockHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(products)
}

// GET /api/v1/stock/reconciliations?all=true
func (h *StockHandler) GetReconciliations(c *fiber.Ctx) error {
	recs, err := h.reconcile.List(c.UserContext(), c.QueryBool("all"), c.QueryInt("skip"), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(recs)
}

// ResolveReconciliation marks a queued adjustment as handled by hand.
// POST /api/v1/stock/reconciliations/:id/resolve
func (h *StockHandler) ResolveReconciliation(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "reconciliation")
	}
	actor := getActor(c)
	if err := h.reconcile.Resolve(c.UserContext(), id, actor.UserID.String()); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Reconciliation resolved"})
}
