package handler

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service service.ProductService
	log     *zap.Logger
}

func NewProductHandler(s service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{service: s, log: log}
}

// GetProducts lists the catalog.
// GET /api/v1/products?search=&category=&low_stock=true&skip=&limit=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		LowStock: c.QueryBool("low_stock"),
		Skip:     c.QueryInt("skip"),
		Limit:    c.QueryInt("limit"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "product")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(product)
}

// GetByBarcode is the register's scan lookup.
// GET /api/v1/products/barcode/:barcode
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	product, err := h.service.GetByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	req := service.CreateProductRequest{TaxRate: 18}
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	product, err := h.service.CreateProduct(c.UserContext(), &req, getActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct applies a sparse patch; PUT and PATCH behave the same.
// PATCH /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "product")
	}
	var patch model.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, patch, getActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badID(c, "product")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GenerateBarcode suggests an unused EAN-13 code.
// GET /api/v1/products/generate-barcode
func (h *ProductHandler) GenerateBarcode(c *fiber.Ctx) error {
	code, err := h.service.GenerateBarcode(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"barcode": code})
}
