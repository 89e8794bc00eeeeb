package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// ParsePaymentMethod maps the spellings seen from older clients onto the
// closed set. An empty value means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch NormalizeName(s) {
	case "", "cash", "nakit":
		return PaymentCash, nil
	case "card", "kart", "creditcard", "kredikarti":
		return PaymentCard, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Sale is a completed checkout. Rows are written once and never updated.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt     time.Time       `gorm:"index;not null" json:"created_at"`
	CashierID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"cashier_id"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(16);not null" json:"payment_method"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// ItemCount is the number of units sold.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// SaleItem snapshots the product as it was at checkout.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"-"`
	SaleID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	Position    int             `gorm:"not null" json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	Barcode     string          `gorm:"type:varchar(64)" json:"barcode"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRate     int             `gorm:"not null" json:"tax_rate"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"net_amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"tax_amount"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
