package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	"github.com/tanawat-dev/eventshop-backend/api/validators"
	cartsvc "github.com/tanawat-dev/eventshop-backend/internal/cart"
	shippingsvc "github.com/tanawat-dev/eventshop-backend/internal/shipping"
	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// SelectShippingRequest picks one of the store's shipping methods.
type SelectShippingRequest struct {
	MethodID string `json:"method_id" validate:"required"`
}

// ShippingMethodView is one shipping choice as returned to clients.
type ShippingMethodView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	IsDefault bool            `json:"is_default"`
}

func newShippingMethodView(method shippingsvc.Method) ShippingMethodView {
	return ShippingMethodView{
		ID:        method.ID,
		Name:      method.Name,
		Rate:      method.Rate,
		IsDefault: method.IsDefault,
	}
}

// ShippingOptions lists the store's shipping methods.
func ShippingOptions(svc shippingsvc.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methods, err := svc.OptionsForStore(r.Context(), cfg.StoreName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]ShippingMethodView, 0, len(methods))
		for _, method := range methods {
			views = append(views, newShippingMethodView(method))
		}
		responses.WriteSuccess(w, map[string]any{"methods": views})
	}
}

// ShippingSelect persists a shipping method on the active cart.
func ShippingSelect(svc shippingsvc.Service, carts cartsvc.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SelectShippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := carts.GetActiveCart(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.SelectMethod(r.Context(), record.ID, cfg.StoreName, payload.MethodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newShippingMethodView(*method))
	}
}
