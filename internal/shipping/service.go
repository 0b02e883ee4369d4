package shipping

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// Method is a normalized shipping choice presented to the customer.
type Method struct {
	ID        string
	Name      string
	Rate      decimal.Decimal
	IsDefault bool
}

// FlatRateMethodID names the synthetic method used when the store runs a
// single flat rate instead of an option list.
const FlatRateMethodID = "flat-rate"

// cartWriter persists the selected method on the customer's cart.
type cartWriter interface {
	UpdateShipping(ctx context.Context, cartID uuid.UUID, methodID, methodName string, rate decimal.Decimal) error
}

// Service normalizes provider shipping configuration and records the
// customer's selection.
type Service interface {
	OptionsForStore(ctx context.Context, storeName string) ([]Method, error)
	DefaultMethod(methods []Method) *Method
	SelectMethod(ctx context.Context, cartID uuid.UUID, storeName, methodID string) (*Method, error)
}

type service struct {
	provider Provider
	carts    cartWriter
	log      *logger.Logger
}

// NewService wires a shipping service from its dependencies.
func NewService(provider Provider, carts cartWriter, log *logger.Logger) (Service, error) {
	if provider == nil {
		return nil, stdErrors.New("shipping: provider is required")
	}
	if carts == nil {
		return nil, stdErrors.New("shipping: cart writer is required")
	}
	if log == nil {
		return nil, stdErrors.New("shipping: logger is required")
	}
	return &service{provider: provider, carts: carts, log: log}, nil
}

// OptionsForStore fetches and normalizes the store's shipping setup. A store
// on flat rate yields exactly one synthetic default method.
func (s *service) OptionsForStore(ctx context.Context, storeName string) ([]Method, error) {
	payload, err := s.provider.FetchOptions(ctx, storeName)
	if err != nil {
		return nil, err
	}

	if payload.FlatRate != nil && payload.FlatRate.Enabled {
		return []Method{{
			ID:        FlatRateMethodID,
			Name:      "Standard shipping",
			Rate:      payload.FlatRate.Amount,
			IsDefault: true,
		}}, nil
	}

	methods := make([]Method, 0, len(payload.Options))
	for _, option := range payload.Options {
		methods = append(methods, Method{
			ID:        option.ID,
			Name:      option.Name,
			Rate:      option.Rate,
			IsDefault: option.IsDefault,
		})
	}
	return methods, nil
}

// DefaultMethod picks the provider-flagged default, falling back to the
// first method. Nil when the store offers nothing.
func (s *service) DefaultMethod(methods []Method) *Method {
	for i := range methods {
		if methods[i].IsDefault {
			return &methods[i]
		}
	}
	if len(methods) > 0 {
		return &methods[0]
	}
	return nil
}

// SelectMethod validates the method against the store's current setup and
// persists it on the cart.
func (s *service) SelectMethod(ctx context.Context, cartID uuid.UUID, storeName, methodID string) (*Method, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if methodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping method id is required")
	}

	methods, err := s.OptionsForStore(ctx, storeName)
	if err != nil {
		return nil, err
	}

	for i := range methods {
		if methods[i].ID != methodID {
			continue
		}
		selected := methods[i]
		if err := s.carts.UpdateShipping(ctx, cartID, selected.ID, selected.Name, selected.Rate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving shipping selection")
		}
		s.log.Info(s.log.WithCartID(ctx, cartID.String()), "shipping method selected")
		return &selected, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping method not offered by store")
}
