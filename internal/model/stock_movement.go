package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// ParseMovementType maps historical spellings ("IN", "stock_in", "giriş",
// "ÇIKIŞ", ...) to the closed in/out set. Input is folded the same way as
// product names. Anything else is an error.
func ParseMovementType(s string) (MovementType, error) {
	switch NormalizeName(s) {
	case "in", "stockin", "giris":
		return MovementIn, nil
	case "out", "stockout", "cikis":
		return MovementOut, nil
	default:
		return "", fmt.Errorf("unknown movement type %q", s)
	}
}

// Delta is the signed stock change for quantity units.
func (t MovementType) Delta(quantity int) int {
	if t == MovementOut {
		return -quantity
	}
	return quantity
}

// StockMovement is a manual stock in/out entry. Rows are never updated.
type StockMovement struct {
	Record
	ProductID   uuid.UUID           `gorm:"type:uuid;index;not null" json:"product_id"`
	ProductName string              `gorm:"type:varchar(255)" json:"product_name"`
	Type        MovementType        `gorm:"type:varchar(8);index;not null" json:"type"`
	Quantity    int                 `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	TotalPrice  decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"total_price"`
	Supplier    *string             `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	Note        *string             `gorm:"type:text" json:"note,omitempty"`
	UserID      uuid.UUID           `gorm:"type:uuid;index;not null" json:"user_id"`
}
