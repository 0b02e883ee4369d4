package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	"github.com/tanawat-dev/eventshop-backend/api/validators"
	checkoutsvc "github.com/tanawat-dev/eventshop-backend/internal/checkout"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

// CheckoutRequest submits the cart (or part of it) as an order.
type CheckoutRequest struct {
	VariantIDs []string          `json:"variant_ids"`
	Notes      *types.OrderNotes `json:"notes"`
	Tags       []string          `json:"tags"`
}

// CheckoutPreviewView is the priced breakdown before submission.
type CheckoutPreviewView struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	PointsDiscount decimal.Decimal `json:"points_discount"`
	PointsSelected int             `json:"points_selected"`
	Shipping       decimal.Decimal `json:"shipping"`
	FreeShipping   bool            `json:"free_shipping"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
}

func newCheckoutPreviewView(preview *checkoutsvc.Preview) CheckoutPreviewView {
	return CheckoutPreviewView{
		Subtotal:       preview.Totals.Subtotal,
		CouponDiscount: preview.CouponDiscount,
		PointsDiscount: preview.PointsDiscount,
		PointsSelected: preview.PointsSelected,
		Shipping:       preview.Totals.Shipping,
		FreeShipping:   preview.FreeShipping,
		ShippingMethod: preview.ShippingMethod,
		Tax:            preview.Totals.Tax,
		Total:          preview.Totals.Total,
		Currency:       preview.Currency,
	}
}

// CheckoutPreview prices the current cart without submitting.
func CheckoutPreview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantIDs := r.URL.Query()["variant_id"]
		if len(variantIDs) == 0 {
			variantIDs = nil
		}

		preview, err := svc.Preview(r.Context(), customerID, variantIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCheckoutPreviewView(preview))
	}
}

// Checkout places the order with the hosted backend.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), customerID, checkoutsvc.SubmitInput{
			VariantIDs: payload.VariantIDs,
			Notes:      payload.Notes,
			Tags:       payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderView(order))
	}
}
