package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateBarcode  = errors.New("barcode already exists")
	ErrDuplicateName     = errors.New("a product with an equivalent name already exists")
	ErrDuplicateProduct  = errors.New("product already exists")
	ErrBarcodeExhausted  = errors.New("could not generate a unique barcode")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrForbidden         = errors.New("forbidden")
	ErrStockAdjustment   = errors.New("stock adjustment failed")
	ErrFinanceNotFound   = errors.New("finance transaction not found")
	ErrReconcileNotFound = errors.New("open reconciliation not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Rule names the cart check that rejected a sale.
type Rule string

const (
	RuleEmptyCart         Rule = "empty_cart"
	RuleInvalidQuantity   Rule = "invalid_quantity"
	RuleInvalidUnitPrice  Rule = "invalid_unit_price"
	RuleProductNotFound   Rule = "product_not_found"
	RuleInsufficientStock Rule = "insufficient_stock"
)

// ValidationError is a client-caused cart rejection. Line is the zero
// based cart index, or -1 when the whole cart is at fault.
type ValidationError struct {
	Rule    Rule   `json:"rule"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }
