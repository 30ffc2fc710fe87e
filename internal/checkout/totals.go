package checkout

import (
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(50)
	flatShippingFee       = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// ComputeTotals derives order totals from cart lines. Shipping is free
// strictly above the threshold. Amounts stay at full precision; rounding
// to cents happens only when totals are displayed.
func ComputeTotals(lines []domain.CartLine) domain.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)

	return domain.Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}
