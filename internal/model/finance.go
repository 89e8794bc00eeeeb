package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type FinanceType string

const (
	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"
)

// ParseFinanceType accepts the English and Turkish names, any case.
func ParseFinanceType(s string) (FinanceType, error) {
	switch NormalizeName(s) {
	case "income", "gelir", "in":
		return FinanceIncome, nil
	case "expense", "gider", "out":
		return FinanceExpense, nil
	default:
		return "", fmt.Errorf("unknown finance type %q", s)
	}
}

// FinanceTransaction is one cash-book line.
type FinanceTransaction struct {
	BaseModel
	Type          FinanceType     `gorm:"type:varchar(16);index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date          time.Time       `gorm:"index;not null" json:"date"`
	Category      string          `gorm:"type:varchar(100)" json:"category"`
	Description   string          `gorm:"type:text" json:"description"`
	Person        string          `gorm:"type:varchar(255)" json:"person"`
	CreatedByName string          `gorm:"type:varchar(255)" json:"created_by_name"`
}
