package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	"github.com/tanawat-dev/eventshop-backend/api/validators"
	cartsvc "github.com/tanawat-dev/eventshop-backend/internal/cart"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// AddCartItemRequest is the payload for adding a variant to the cart.
type AddCartItemRequest struct {
	VariantID   string            `json:"variant_id" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Image       string            `json:"image"`
	UnitPrice   decimal.Decimal   `json:"unit_price" validate:"required"`
	Quantity    int               `json:"quantity"`
	MaxQuantity int               `json:"max_quantity" validate:"required,min=1"`
	Options     map[string]string `json:"options"`
}

// UpdateCartItemRequest sets the quantity of an existing line. A pointer so
// zero and negative values reach the service, which treats them as a no-op.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartItemView is one cart line as returned to clients.
type CartItemView struct {
	VariantID   string            `json:"variant_id"`
	Name        string            `json:"name"`
	Image       string            `json:"image,omitempty"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	MaxQuantity int               `json:"max_quantity"`
	LineTotal   decimal.Decimal   `json:"line_total"`
	Options     map[string]string `json:"options,omitempty"`
}

// CartView is the active cart as returned to clients.
type CartView struct {
	ID             string          `json:"id"`
	Items          []CartItemView  `json:"items"`
	TotalItems     int             `json:"total_items"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
	ShippingRate   decimal.Decimal `json:"shipping_rate"`
}

func newCartView(svc cartsvc.Service, record *models.CartRecord) CartView {
	view := CartView{
		ID:           record.ID.String(),
		Items:        make([]CartItemView, 0, len(record.Items)),
		TotalItems:   svc.TotalItems(record, nil),
		TotalPrice:   svc.TotalPrice(record, nil),
		ShippingRate: decimal.Zero,
	}
	if record.ShippingMethodName != nil {
		view.ShippingMethod = *record.ShippingMethodName
	}
	if record.ShippingRate != nil {
		view.ShippingRate = *record.ShippingRate
	}
	for _, item := range record.Items {
		view.Items = append(view.Items, CartItemView{
			VariantID:   item.VariantID,
			Name:        item.Name,
			Image:       item.Image,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			MaxQuantity: item.MaxQuantity,
			LineTotal:   item.LineTotal(),
			Options:     item.Options,
		})
	}
	return view
}

// CartFetch returns the customer's active cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActiveCart(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc, record))
	}
}

// CartAddItem adds a variant to the cart, merging existing lines.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), customerID, cartsvc.AddItemInput{
			VariantID:   payload.VariantID,
			Name:        payload.Name,
			Image:       payload.Image,
			UnitPrice:   payload.UnitPrice,
			Quantity:    payload.Quantity,
			MaxQuantity: payload.MaxQuantity,
			Options:     payload.Options,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc, record))
	}
}

// CartUpdateItem changes the quantity of an existing line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID := chi.URLParam(r, "variantId")
		if variantID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required"))
			return
		}

		var payload UpdateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateQuantity(r.Context(), customerID, variantID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc, record))
	}
}

// CartRemoveItem deletes a line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID := chi.URLParam(r, "variantId")
		if variantID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required"))
			return
		}

		record, err := svc.RemoveItem(r.Context(), customerID, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc, record))
	}
}
