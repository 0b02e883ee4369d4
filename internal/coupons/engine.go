package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Discount is the combined effect of the customer's applied coupons on a
// given subtotal.
type Discount struct {
	Amount       decimal.Decimal
	FreeShipping bool
}

// Eligible reports whether the coupon can reduce the given subtotal at the
// given instant. Expired, disabled and below-minimum coupons are not
// eligible; they contribute nothing rather than failing the computation.
func Eligible(coupon models.Coupon, subtotal decimal.Decimal, now time.Time) bool {
	if !coupon.IsApplicable {
		return false
	}
	if now.After(coupon.ValidUntil) {
		return false
	}
	if coupon.MinPurchase != nil && subtotal.LessThan(*coupon.MinPurchase) {
		return false
	}
	return true
}

// Amount returns the monetary value a single eligible coupon takes off the
// subtotal. Shipping coupons carry no amount; they waive the shipping fee
// instead.
func Amount(coupon models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.Type {
	case enums.CouponTypePercentage:
		amount := subtotal.Mul(coupon.Value).Div(oneHundred)
		if coupon.MaxDiscount != nil && amount.GreaterThan(*coupon.MaxDiscount) {
			amount = *coupon.MaxDiscount
		}
		return amount
	case enums.CouponTypeFixed:
		if coupon.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return coupon.Value
	default:
		return decimal.Zero
	}
}

// TotalDiscount folds every applied coupon over the subtotal. Ineligible
// coupons are skipped silently and the combined amount never exceeds the
// subtotal itself.
func TotalDiscount(subtotal decimal.Decimal, applied []models.Coupon, now time.Time) Discount {
	result := Discount{Amount: decimal.Zero}
	for _, coupon := range applied {
		if !Eligible(coupon, subtotal, now) {
			continue
		}
		if coupon.Type == enums.CouponTypeShipping {
			result.FreeShipping = true
			continue
		}
		result.Amount = result.Amount.Add(Amount(coupon, subtotal))
	}
	if result.Amount.GreaterThan(subtotal) {
		result.Amount = subtotal
	}
	return result
}
