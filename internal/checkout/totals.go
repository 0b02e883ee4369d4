package checkout

import (
	"github.com/shopspring/decimal"
)

// TotalsInput carries the independent pricing components of one checkout.
type TotalsInput struct {
	Subtotal       decimal.Decimal
	CouponDiscount decimal.Decimal
	FreeShipping   bool
	PointsDiscount decimal.Decimal
	ShippingRate   decimal.Decimal
	TaxRate        decimal.Decimal
}

// Totals is the assembled order pricing.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals assembles the final order amounts. Tax is charged on the
// pre-discount subtotal; a shipping waiver zeroes the fee. The total never
// goes below zero, excess discount is forfeited rather than credited.
func ComputeTotals(input TotalsInput) Totals {
	shipping := input.ShippingRate
	if input.FreeShipping {
		shipping = decimal.Zero
	}

	discount := input.CouponDiscount.Add(input.PointsDiscount)
	tax := input.Subtotal.Mul(input.TaxRate).Round(2)

	total := input.Subtotal.Sub(discount).Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: input.Subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
	}
}
