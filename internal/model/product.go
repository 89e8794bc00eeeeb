package model

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Product struct {
	BaseModel
	Barcode        string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"barcode"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	NormalizedName string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Category       string          `gorm:"type:varchar(100);index" json:"category"`
	Brand          string          `gorm:"type:varchar(100)" json:"brand"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	MinStock       int             `gorm:"not null;default:0" json:"min_stock"`
	BuyPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"buy_price"`
	SellPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sell_price"`
	TaxRate        int             `gorm:"not null" json:"tax_rate"`
	Supplier       *string         `gorm:"type:varchar(255)" json:"supplier,omitempty"`
}

// IsLowStock reports stock at or under the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// NormalizeName folds a product name so that spelling variants collide:
// "Çay Bardağı", "cay-bardagi" and "CAY_BARDAGI" all map to "caybardagi".
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	// dotless ı has no decomposition
	s = strings.ReplaceAll(s, "ı", "i")

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, s)
}
