package handler

import (
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FinanceHandler struct {
	service service.FinanceService
	loc     *time.Location
	log     *zap.Logger
}

func NewFinanceHandler(s service.FinanceService, loc *time.Location, log *zap.Logger) *FinanceHandler {
	return &FinanceHandler{service: s, loc: loc, log: log}
}

// GET /api/v1/finance?start=&end=&type=&search=&skip=&limit=
func (h *FinanceHandler) GetTransactions(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	txs, err := h.service.List(c.UserContext(), service.FinanceQuery{
		Start:  start,
		End:    end,
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Skip:   c.QueryInt("skip"),
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(txs)
}

// GET /api/v1/finance/summary?start=&end=
func (h *FinanceHandler) GetSummary(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.loc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	sum, err := h.service.Summary(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sum)
}

// POST /api/v1/finance
func (h *FinanceHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CreateFinanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	tx, err := h.service.Create(c.UserContext(), &req, getActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction recorded", "data": tx})
}

// PATCH /api/v1/finance/:id
func (h *FinanceHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "transaction")
	}
	var patch model.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	tx, err := h.service.Update(c.UserContext(), id, patch, getActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": tx})
}

// DELETE /api/v1/finance/:id
func (h *FinanceHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "transaction")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
