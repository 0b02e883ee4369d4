package orders

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

// PlaceOrderInput is the assembled order handed to the hosted backend.
type PlaceOrderInput struct {
	StoreName  string
	CustomerID uuid.UUID
	Status     string
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Notes      *types.OrderNotes
	Tags       []string
	Items      []PlaceOrderItem
}

// PlaceOrderItem is one line of the submission payload.
type PlaceOrderItem struct {
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PlaceOrderResult is the hosted backend's acknowledgement.
type PlaceOrderResult struct {
	OrderID string `json:"order_id"`
}

// Client submits orders to the hosted backend RPC.
type Client interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
}

// placeOrderRequest mirrors the RPC's parameter naming exactly. The remote
// procedure binds arguments by these p_ prefixed names.
type placeOrderRequest struct {
	StoreName  string            `json:"p_store_name"`
	CustomerID string            `json:"p_customer_id"`
	Status     string            `json:"p_status"`
	Subtotal   decimal.Decimal   `json:"p_subtotal"`
	Discount   decimal.Decimal   `json:"p_discount"`
	Shipping   decimal.Decimal   `json:"p_shipping"`
	Tax        decimal.Decimal   `json:"p_tax"`
	Total      decimal.Decimal   `json:"p_total"`
	Notes      *types.OrderNotes `json:"p_notes"`
	Tags       []string          `json:"p_tags"`
	Items      []PlaceOrderItem  `json:"p_items"`
}

type rpcErrorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds the order submission client. Submissions are never
// retried here; duplicate protection belongs to the idempotency layer above.
func NewHTTPClient(cfg config.OrdersConfig) (Client, error) {
	if cfg.RPCBaseURL == "" {
		return nil, stdErrors.New("orders: rpc base url is required")
	}
	if _, err := url.Parse(cfg.RPCBaseURL); err != nil {
		return nil, fmt.Errorf("orders: invalid rpc base url: %w", err)
	}
	return &httpClient{
		baseURL: cfg.RPCBaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *httpClient) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	body := placeOrderRequest{
		StoreName:  input.StoreName,
		CustomerID: input.CustomerID.String(),
		Status:     input.Status,
		Subtotal:   input.Subtotal,
		Discount:   input.Discount,
		Shipping:   input.Shipping,
		Tax:        input.Tax,
		Total:      input.Total,
		Notes:      input.Notes,
		Tags:       input.Tags,
		Items:      input.Items,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order payload")
	}

	endpoint := c.baseURL + "/rpc/place_order"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submitting order")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var envelope rpcErrorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Message != "" {
			return nil, pkgerrors.New(pkgerrors.CodeDependency,
				fmt.Sprintf("order rpc rejected submission: %s", envelope.Message))
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("order rpc returned %d", resp.StatusCode))
	}

	var result PlaceOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding order response")
	}
	if result.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order rpc returned no order id")
	}
	return &result, nil
}
