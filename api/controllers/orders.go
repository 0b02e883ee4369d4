package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/api/responses"
	ordersvc "github.com/tanawat-dev/eventshop-backend/internal/orders"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/pagination"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

// OrderLineView is one line of an order snapshot.
type OrderLineView struct {
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderView is a submitted order as returned to clients.
type OrderView struct {
	ID            string            `json:"id"`
	RemoteOrderID string            `json:"remote_order_id"`
	StoreName     string            `json:"store_name"`
	Status        string            `json:"status"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Discount      decimal.Decimal   `json:"discount"`
	Shipping      decimal.Decimal   `json:"shipping"`
	Tax           decimal.Decimal   `json:"tax"`
	Total         decimal.Decimal   `json:"total"`
	Notes         *types.OrderNotes `json:"notes,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Items         []OrderLineView   `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newOrderView(record *models.OrderRecord) OrderView {
	view := OrderView{
		ID:            record.ID.String(),
		RemoteOrderID: record.RemoteOrderID,
		StoreName:     record.StoreName,
		Status:        record.Status.String(),
		Subtotal:      record.Subtotal,
		Discount:      record.Discount,
		Shipping:      record.Shipping,
		Tax:           record.Tax,
		Total:         record.Total,
		Notes:         record.Notes,
		Tags:          record.Tags,
		Items:         make([]OrderLineView, 0, len(record.Items)),
		CreatedAt:     record.CreatedAt,
	}
	for _, item := range record.Items {
		view.Items = append(view.Items, OrderLineView{
			VariantID: item.VariantID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return view
}

// OrderList pages through the customer's order history.
func OrderList(repo ordersvc.OrderRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a number"))
				return
			}
			params.Limit = limit
		}

		records, err := repo.ListByCustomer(r.Context(), customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders"))
			return
		}

		limit := pagination.NormalizeLimit(params.Limit)
		nextCursor := ""
		if len(records) > limit {
			records = records[:limit]
			last := records[limit-1]
			nextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
		}

		views := make([]OrderView, 0, len(records))
		for i := range records {
			views = append(views, newOrderView(&records[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      views,
			"next_cursor": nextCursor,
		})
	}
}

// OrderDetail returns one order owned by the customer.
func OrderDetail(repo ordersvc.OrderRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := repo.FindByID(r.Context(), orderID, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order"))
			return
		}

		responses.WriteSuccess(w, newOrderView(record))
	}
}
