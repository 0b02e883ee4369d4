package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotalsFullBreakdown(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:       dec("1000"),
		CouponDiscount: dec("100"),
		PointsDiscount: dec("50"),
		ShippingRate:   dec("40"),
		TaxRate:        dec("0.07"),
	})

	if !got.Tax.Equal(dec("70")) {
		t.Fatalf("tax = %s, want 70 on the pre-discount subtotal", got.Tax)
	}
	if !got.Discount.Equal(dec("150")) {
		t.Fatalf("discount = %s, want 150", got.Discount)
	}
	if !got.Total.Equal(dec("960")) {
		t.Fatalf("total = %s, want 960", got.Total)
	}
}

func TestComputeTotalsFreeShippingWaivesFee(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:     dec("500"),
		FreeShipping: true,
		ShippingRate: dec("40"),
		TaxRate:      dec("0.07"),
	})

	if !got.Shipping.IsZero() {
		t.Fatalf("shipping = %s, want 0 under waiver", got.Shipping)
	}
	if !got.Total.Equal(dec("535")) {
		t.Fatalf("total = %s, want 535", got.Total)
	}
}

func TestComputeTotalsTaxIgnoresDiscounts(t *testing.T) {
	discounted := ComputeTotals(TotalsInput{
		Subtotal:       dec("1000"),
		CouponDiscount: dec("900"),
		TaxRate:        dec("0.07"),
	})
	plain := ComputeTotals(TotalsInput{
		Subtotal: dec("1000"),
		TaxRate:  dec("0.07"),
	})

	if !discounted.Tax.Equal(plain.Tax) {
		t.Fatalf("tax changed with discount: %s vs %s", discounted.Tax, plain.Tax)
	}
}

func TestComputeTotalsClampsAtZero(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:       dec("100"),
		CouponDiscount: dec("100"),
		PointsDiscount: dec("500"),
		TaxRate:        dec("0"),
	})

	if !got.Total.IsZero() {
		t.Fatalf("total = %s, want clamp at 0", got.Total)
	}
}

func TestComputeTotalsRoundsTax(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal: dec("99.99"),
		TaxRate:  dec("0.07"),
	})

	if !got.Tax.Equal(dec("7.00")) {
		t.Fatalf("tax = %s, want 7.00 after rounding", got.Tax)
	}
}
