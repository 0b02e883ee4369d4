package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	"github.com/tanawat-dev/eventshop-backend/api/validators"
	couponsvc "github.com/tanawat-dev/eventshop-backend/internal/coupons"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/pagination"
)

// ApplyCouponRequest selects a coupon for the next checkout, either by
// catalog id or by typing its public code.
type ApplyCouponRequest struct {
	CouponID uuid.UUID `json:"coupon_id" validate:"required_without=Code"`
	Code     string    `json:"code" validate:"required_without=CouponID"`
}

// CouponView is one catalog coupon as returned to clients.
type CouponView struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Description  string           `json:"description,omitempty"`
	Type         string           `json:"type"`
	Value        decimal.Decimal  `json:"value"`
	MinPurchase  *decimal.Decimal `json:"min_purchase,omitempty"`
	MaxDiscount  *decimal.Decimal `json:"max_discount,omitempty"`
	ValidUntil   time.Time        `json:"valid_until"`
	IsApplicable bool             `json:"is_applicable"`
}

// CouponListResponse is a cursor-paged coupon listing.
type CouponListResponse struct {
	Coupons    []CouponView `json:"coupons"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func newCouponView(coupon models.Coupon) CouponView {
	return CouponView{
		ID:           coupon.ID.String(),
		Code:         coupon.Code,
		Description:  coupon.Description,
		Type:         coupon.Type.String(),
		Value:        coupon.Value,
		MinPurchase:  coupon.MinPurchase,
		MaxDiscount:  coupon.MaxDiscount,
		ValidUntil:   coupon.ValidUntil,
		IsApplicable: coupon.IsApplicable,
	}
}

// CouponCatalog lists available coupons.
func CouponCatalog(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a number"))
				return
			}
			params.Limit = limit
		}

		page, err := svc.ListCatalog(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := CouponListResponse{
			Coupons:    make([]CouponView, 0, len(page.Coupons)),
			NextCursor: page.NextCursor,
		}
		for _, coupon := range page.Coupons {
			resp.Coupons = append(resp.Coupons, newCouponView(coupon))
		}
		responses.WriteSuccess(w, resp)
	}
}

// CouponApply adds a coupon to the customer's applied set.
func CouponApply(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ApplyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Code != "" {
			err = svc.ApplyByCode(r.Context(), customerID, payload.Code)
		} else {
			err = svc.Apply(r.Context(), customerID, payload.CouponID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeAppliedCoupons(w, r, svc, logg, customerID)
	}
}

// CouponRemove drops a coupon from the applied set.
func CouponRemove(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := uuidParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), customerID, couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeAppliedCoupons(w, r, svc, logg, customerID)
	}
}

// CouponApplied lists the customer's currently applied coupons.
func CouponApplied(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeAppliedCoupons(w, r, svc, logg, customerID)
	}
}

func writeAppliedCoupons(w http.ResponseWriter, r *http.Request, svc couponsvc.Service, logg *logger.Logger, customerID uuid.UUID) {
	applied, err := svc.ListApplied(r.Context(), customerID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	views := make([]CouponView, 0, len(applied))
	for _, coupon := range applied {
		views = append(views, newCouponView(coupon))
	}
	responses.WriteSuccess(w, map[string]any{"applied": views})
}
