// Package tax converts sale lines into net, VAT and gross amounts.
package tax

import "github.com/shopspring/decimal"

// Convention says whether a unit price already contains VAT.
type Convention int

const (
	// GrossInclusive prices include VAT; net is derived by division.
	GrossInclusive Convention = iota
	// NetExclusive prices exclude VAT; tax is added on top.
	NetExclusive
)

// SystemConvention is the single convention used for every price in the
// system: catalog sell prices, cart unit prices and stored receipts.
const SystemConvention = GrossInclusive

func (c Convention) String() string {
	switch c {
	case GrossInclusive:
		return "gross_inclusive"
	case NetExclusive:
		return "net_exclusive"
	default:
		return "unknown"
	}
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Line is the outcome for one cart line.
type Line struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// Totals is the sale level aggregate of its lines.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Calculate applies the convention to quantity x unitPrice at ratePercent.
// Inputs are assumed validated: quantity >= 1, unitPrice > 0, rate >= 0.
func (c Convention) Calculate(quantity int, unitPrice decimal.Decimal, ratePercent int) Line {
	amount := Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	rate := decimal.NewFromInt(int64(ratePercent)).Div(hundred)

	if c == NetExclusive {
		tax := decimal.Zero
		if ratePercent > 0 {
			tax = Round2(amount.Mul(rate))
		}
		return Line{Net: amount, Tax: tax, Gross: Round2(amount.Add(tax))}
	}

	net := amount
	if ratePercent > 0 {
		net = Round2(amount.Div(one.Add(rate)))
	}
	return Line{Net: net, Tax: Round2(amount.Sub(net)), Gross: amount}
}

// Calculate uses SystemConvention.
func Calculate(quantity int, unitPrice decimal.Decimal, ratePercent int) Line {
	return SystemConvention.Calculate(quantity, unitPrice, ratePercent)
}

// Aggregate sums lines and re-rounds each total.
func Aggregate(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Net)
		t.TaxAmount = t.TaxAmount.Add(l.Tax)
		t.Total = t.Total.Add(l.Gross)
	}
	t.Subtotal = Round2(t.Subtotal)
	t.TaxAmount = Round2(t.TaxAmount)
	t.Total = Round2(t.Total)
	return t
}
