package service

import (
	"errors"
	"testing"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRule(t *testing.T, err error, rule Rule, line int) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	assert.Equal(t, rule, verr.Rule)
	assert.Equal(t, line, verr.Line)
	return verr
}

func TestValidateCart(t *testing.T) {
	avize := model.Product{Name: "Kristal Avize", Stock: 3}
	avize.ID = uuid.New()
	products := map[uuid.UUID]model.Product{avize.ID: avize}
	id := avize.ID.String()

	t.Run("empty cart", func(t *testing.T) {
		verr := requireRule(t, ValidateCart(nil, products), RuleEmptyCart, -1)
		assert.Equal(t, "empty cart", verr.Message)
	})

	t.Run("zero and negative quantity", func(t *testing.T) {
		for _, q := range []int{0, -1} {
			err := ValidateCart([]CartItem{{ProductID: id, ProductName: "Avize", Quantity: q, UnitPrice: dec("10")}}, products)
			verr := requireRule(t, err, RuleInvalidQuantity, 0)
			assert.Contains(t, verr.Message, "invalid quantity for Avize")
		}
	})

	t.Run("quantity is checked before price on every line", func(t *testing.T) {
		err := ValidateCart([]CartItem{
			{ProductID: id, Quantity: 1, UnitPrice: dec("0")},
			{ProductID: id, Quantity: 0, UnitPrice: dec("10")},
		}, products)
		requireRule(t, err, RuleInvalidQuantity, 1)
	})

	t.Run("price that rounds to zero", func(t *testing.T) {
		err := ValidateCart([]CartItem{{ProductID: id, Barcode: "8690000000005", Quantity: 1, UnitPrice: dec("0.004")}}, products)
		verr := requireRule(t, err, RuleInvalidUnitPrice, 0)
		assert.Equal(t, "invalid unit price for 8690000000005: 0.004", verr.Message)
	})

	t.Run("unknown and unparseable product", func(t *testing.T) {
		missing := uuid.NewString()
		err := ValidateCart([]CartItem{{ProductID: missing, Quantity: 1, UnitPrice: dec("10")}}, products)
		verr := requireRule(t, err, RuleProductNotFound, 0)
		assert.Equal(t, "product not found: "+missing, verr.Message)

		err = ValidateCart([]CartItem{{ProductID: "abc", Quantity: 1, UnitPrice: dec("10")}}, products)
		requireRule(t, err, RuleProductNotFound, 0)
	})

	t.Run("stock is checked against the running total", func(t *testing.T) {
		err := ValidateCart([]CartItem{
			{ProductID: id, Quantity: 2, UnitPrice: dec("10")},
			{ProductID: id, Quantity: 2, UnitPrice: dec("10")},
		}, products)
		verr := requireRule(t, err, RuleInsufficientStock, 1)
		assert.Equal(t, "insufficient stock for Kristal Avize: available 3, requested 4", verr.Message)
	})

	t.Run("exact stock passes", func(t *testing.T) {
		assert.NoError(t, ValidateCart([]CartItem{
			{ProductID: id, Quantity: 1, UnitPrice: dec("10")},
			{ProductID: id, Quantity: 2, UnitPrice: dec("10")},
		}, products))
	})
}
