package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceService(t *testing.T) {
	svc := NewFinanceService(newFakeFinance())
	ctx := context.Background()
	actor := Actor{UserID: uuid.New(), Name: "Muhasebe"}
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, &CreateFinanceRequest{Type: "income", Amount: dec("0")}, actor)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, &CreateFinanceRequest{Type: "bonus", Amount: dec("5")}, actor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	income, err := svc.Create(ctx, &CreateFinanceRequest{Type: "gelir", Amount: dec("100"), Date: &day, Category: " Satış "}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Satış", income.Category)
	assert.Equal(t, "Muhasebe", income.CreatedByName)

	expense, err := svc.Create(ctx, &CreateFinanceRequest{Type: "expense", Amount: dec("40.505"), Date: &day, Description: "kira"}, actor)
	require.NoError(t, err)
	assert.Equal(t, "40.51", expense.Amount.StringFixed(2))

	sum, err := svc.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "100.00", sum.Income.StringFixed(2))
	assert.Equal(t, "40.51", sum.Expense.StringFixed(2))
	assert.Equal(t, "59.49", sum.Net.StringFixed(2))

	_, err = svc.Update(ctx, expense.ID, patchOf(t, `{"amount": -1}`), actor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.Update(ctx, expense.ID, patchOf(t, `{"description": null, "amount": "45"}`), actor)
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, "45.00", updated.Amount.StringFixed(2))

	list, err := svc.List(ctx, FinanceQuery{Type: "gider"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = svc.List(ctx, FinanceQuery{Type: "weird"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, expense.ID))
	assert.ErrorIs(t, svc.Delete(ctx, expense.ID), ErrFinanceNotFound)
	_, err = svc.Update(ctx, expense.ID, patchOf(t, `{"person": "x"}`), actor)
	assert.ErrorIs(t, err, ErrFinanceNotFound)
}
