package service

import (
	"fmt"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/tax"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one requested sale line as sent by the register.
type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     *int            `json:"tax_rate,omitempty"`
}

// label names a line for error messages using what the client sent.
func (c CartItem) label() string {
	switch {
	case c.ProductName != "" && c.Barcode != "":
		return fmt.Sprintf("%s (%s)", c.ProductName, c.Barcode)
	case c.ProductName != "":
		return c.ProductName
	case c.Barcode != "":
		return c.Barcode
	default:
		return c.ProductID
	}
}

// cartProductIDs returns the distinct parseable product ids of a cart.
func cartProductIDs(items []CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ValidateCart checks a cart against one product snapshot. Rules run in
// order (empty cart, quantity, unit price, product exists, stock) and the
// first violation is returned as a *ValidationError. Lines for the same
// product are checked against their running total.
func ValidateCart(items []CartItem, products map[uuid.UUID]model.Product) error {
	if len(items) == 0 {
		return &ValidationError{Rule: RuleEmptyCart, Line: -1, Message: "empty cart"}
	}

	for i, it := range items {
		if it.Quantity < 1 {
			return &ValidationError{
				Rule:    RuleInvalidQuantity,
				Line:    i,
				Message: fmt.Sprintf("invalid quantity for %s: %d", it.label(), it.Quantity),
			}
		}
	}

	for i, it := range items {
		if !tax.Round2(it.UnitPrice).IsPositive() {
			return &ValidationError{
				Rule:    RuleInvalidUnitPrice,
				Line:    i,
				Message: fmt.Sprintf("invalid unit price for %s: %s", it.label(), it.UnitPrice.String()),
			}
		}
	}

	resolved := make([]model.Product, len(items))
	for i, it := range items {
		id, err := uuid.Parse(it.ProductID)
		p, ok := products[id]
		if err != nil || !ok {
			return &ValidationError{
				Rule:    RuleProductNotFound,
				Line:    i,
				Message: fmt.Sprintf("product not found: %s", it.label()),
			}
		}
		resolved[i] = p
	}

	requested := make(map[uuid.UUID]int, len(items))
	for i, it := range items {
		p := resolved[i]
		requested[p.ID] += it.Quantity
		if requested[p.ID] > p.Stock {
			return &ValidationError{
				Rule: RuleInsufficientStock,
				Line: i,
				Message: fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
					p.Name, p.Stock, requested[p.ID]),
			}
		}
	}

	return nil
}
