package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	"github.com/tanawat-dev/eventshop-backend/api/validators"
	pointsvc "github.com/tanawat-dev/eventshop-backend/internal/points"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// SelectPointsRequest sets the redemption selection.
type SelectPointsRequest struct {
	SelectedPoints *int `json:"selected_points" validate:"required"`
}

// SyncPointsBalanceRequest pushes the balance from the loyalty source of
// record. Without this ingestion the account would stay at zero forever.
type SyncPointsBalanceRequest struct {
	AvailablePoints *int `json:"available_points" validate:"required,min=0"`
}

// PointsView reports the loyalty balance and the current selection's value.
type PointsView struct {
	AvailablePoints int             `json:"available_points"`
	SelectedPoints  int             `json:"selected_points"`
	Discount        decimal.Decimal `json:"discount"`
	Redeemable      bool            `json:"redeemable"`
}

// PointsFetch returns the loyalty account with its quoted discount.
func PointsFetch(svc pointsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.GetAccount(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := svc.Quote(account.SelectedPoints)
		responses.WriteSuccess(w, PointsView{
			AvailablePoints: account.AvailablePoints,
			SelectedPoints:  account.SelectedPoints,
			Discount:        quote.Discount,
			Redeemable:      quote.Valid,
		})
	}
}

// PointsSyncBalance overwrites the available balance from the loyalty
// source, clamping any selection that no longer fits.
func PointsSyncBalance(svc pointsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SyncPointsBalanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.SyncBalance(r.Context(), customerID, *payload.AvailablePoints)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := svc.Quote(account.SelectedPoints)
		responses.WriteSuccess(w, PointsView{
			AvailablePoints: account.AvailablePoints,
			SelectedPoints:  account.SelectedPoints,
			Discount:        quote.Discount,
			Redeemable:      quote.Valid,
		})
	}
}

// PointsSelect records how many points the customer wants to redeem.
func PointsSelect(svc pointsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SelectPointsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.SetSelectedPoints(r.Context(), customerID, *payload.SelectedPoints)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := svc.Quote(account.SelectedPoints)
		responses.WriteSuccess(w, PointsView{
			AvailablePoints: account.AvailablePoints,
			SelectedPoints:  account.SelectedPoints,
			Discount:        quote.Discount,
			Redeemable:      quote.Valid,
		})
	}
}
