package checkout

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/internal/cart"
	"github.com/tanawat-dev/eventshop-backend/internal/coupons"
	"github.com/tanawat-dev/eventshop-backend/internal/orders"
	"github.com/tanawat-dev/eventshop-backend/internal/points"
	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/metrics"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

// txRunner executes a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// discounter evaluates the customer's applied coupons.
type discounter interface {
	DiscountFor(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal, now time.Time) (coupons.Discount, error)
}

// pointsQuoter reads the loyalty account and prices a redemption.
type pointsQuoter interface {
	GetAccount(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error)
	Quote(selected int) points.Quote
}

// SubmitInput carries the customer's checkout request.
type SubmitInput struct {
	// VariantIDs limits the submission to part of the cart. Nil submits
	// every line.
	VariantIDs []string
	Notes      *types.OrderNotes
	Tags       []string
}

// Preview is the priced breakdown shown before submission.
type Preview struct {
	Totals         Totals
	CouponDiscount decimal.Decimal
	PointsDiscount decimal.Decimal
	PointsSelected int
	FreeShipping   bool
	ShippingMethod string
	Currency       string
}

// Service assembles order totals and submits orders to the hosted backend.
type Service interface {
	Preview(ctx context.Context, customerID uuid.UUID, variantIDs []string) (*Preview, error)
	Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.OrderRecord, error)
}

type service struct {
	cfg      config.CheckoutConfig
	tx       txRunner
	carts    cart.CartRepository
	coupons  coupons.CouponRepository
	loyalty  points.PointsRepository
	orders   orders.OrderRepository
	rpc      orders.Client
	discount discounter
	quoter   pointsQuoter
	metrics  *metrics.CheckoutMetrics
	log      *logger.Logger
	now      func() time.Time
}

// Deps bundles the checkout service dependencies.
type Deps struct {
	Config        config.CheckoutConfig
	Tx            txRunner
	Carts         cart.CartRepository
	Coupons       coupons.CouponRepository
	Loyalty       points.PointsRepository
	Orders        orders.OrderRepository
	RPC           orders.Client
	CouponService discounter
	PointsService pointsQuoter
	Metrics       *metrics.CheckoutMetrics
	Logger        *logger.Logger
}

// NewService wires a checkout service from its dependencies.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, stdErrors.New("checkout: tx runner is required")
	case deps.Carts == nil:
		return nil, stdErrors.New("checkout: cart repository is required")
	case deps.Coupons == nil:
		return nil, stdErrors.New("checkout: coupon repository is required")
	case deps.Loyalty == nil:
		return nil, stdErrors.New("checkout: points repository is required")
	case deps.Orders == nil:
		return nil, stdErrors.New("checkout: order repository is required")
	case deps.RPC == nil:
		return nil, stdErrors.New("checkout: order client is required")
	case deps.CouponService == nil:
		return nil, stdErrors.New("checkout: coupon service is required")
	case deps.PointsService == nil:
		return nil, stdErrors.New("checkout: points service is required")
	case deps.Logger == nil:
		return nil, stdErrors.New("checkout: logger is required")
	}
	return &service{
		cfg:      deps.Config,
		tx:       deps.Tx,
		carts:    deps.Carts,
		coupons:  deps.Coupons,
		loyalty:  deps.Loyalty,
		orders:   deps.Orders,
		rpc:      deps.RPC,
		discount: deps.CouponService,
		quoter:   deps.PointsService,
		metrics:  deps.Metrics,
		log:      deps.Logger,
		now:      time.Now,
	}, nil
}

// priced is the intermediate state shared by Preview and Submit.
type priced struct {
	record  *models.CartRecord
	items   []models.CartItem
	preview Preview
}

func (s *service) priceRecord(ctx context.Context, customerID uuid.UUID, record *models.CartRecord, variantIDs []string) (*priced, error) {
	items := selectItems(record.Items, variantIDs)
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for checkout")
	}

	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}

	now := s.now()
	couponDiscount, err := s.discount.DiscountFor(ctx, customerID, subtotal, now)
	if err != nil {
		return nil, err
	}

	account, err := s.quoter.GetAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	quote := s.quoter.Quote(account.SelectedPoints)
	if !quote.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selected points outside the redeemable range")
	}

	shippingRate := decimal.Zero
	shippingMethod := ""
	if record.ShippingRate != nil {
		shippingRate = *record.ShippingRate
	}
	if record.ShippingMethodName != nil {
		shippingMethod = *record.ShippingMethodName
	}

	totals := ComputeTotals(TotalsInput{
		Subtotal:       subtotal,
		CouponDiscount: couponDiscount.Amount,
		FreeShipping:   couponDiscount.FreeShipping,
		PointsDiscount: quote.Discount,
		ShippingRate:   shippingRate,
		TaxRate:        s.cfg.TaxRate,
	})

	return &priced{
		record: record,
		items:  items,
		preview: Preview{
			Totals:         totals,
			CouponDiscount: couponDiscount.Amount,
			PointsDiscount: quote.Discount,
			PointsSelected: quote.Points,
			FreeShipping:   couponDiscount.FreeShipping,
			ShippingMethod: shippingMethod,
			Currency:       s.cfg.Currency,
		},
	}, nil
}

// Preview prices the current cart without submitting anything.
func (s *service) Preview(ctx context.Context, customerID uuid.UUID, variantIDs []string) (*Preview, error) {
	record, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	state, err := s.priceRecord(ctx, customerID, record, variantIDs)
	if err != nil {
		return nil, err
	}
	return &state.preview, nil
}

// Submit prices the selection, places the order remotely and clears the
// consumed cart state in one transaction. The remote call is made exactly
// once; callers needing duplicate protection send an Idempotency-Key.
func (s *service) Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.OrderRecord, error) {
	record, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncRejected()
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	state, err := s.priceRecord(ctx, customerID, record, input.VariantIDs)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			s.metrics.IncRejected()
		}
		return nil, err
	}

	lines := make([]orders.PlaceOrderItem, 0, len(state.items))
	for _, item := range state.items {
		lines = append(lines, orders.PlaceOrderItem{
			VariantID: item.VariantID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}

	totals := state.preview.Totals
	result, err := s.rpc.PlaceOrder(ctx, orders.PlaceOrderInput{
		StoreName:  s.cfg.StoreName,
		CustomerID: customerID,
		Status:     enums.OrderStatusPending.String(),
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Shipping:   totals.Shipping,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Notes:      input.Notes,
		Tags:       input.Tags,
		Items:      lines,
	})
	if err != nil {
		s.metrics.IncFailed()
		return nil, err
	}

	snapshot := &models.OrderRecord{
		CustomerID:    customerID,
		RemoteOrderID: result.OrderID,
		StoreName:     s.cfg.StoreName,
		Status:        enums.OrderStatusPending,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Notes:         input.Notes,
		Tags:          input.Tags,
	}
	for _, line := range lines {
		snapshot.Items = append(snapshot.Items, models.OrderLineItem{
			VariantID: line.VariantID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).Create(ctx, snapshot); err != nil {
			return err
		}
		if err := s.carts.WithTx(tx).UpdateStatus(ctx, state.record.ID, customerID, enums.CartStatusConverted); err != nil {
			return err
		}
		if err := s.coupons.WithTx(tx).DeleteAllApplied(ctx, customerID); err != nil {
			return err
		}
		return s.loyalty.WithTx(tx).ResetSelected(ctx, customerID)
	})
	if err != nil {
		// The remote order exists at this point. Surface the cleanup
		// failure instead of pretending the submission is consistent.
		s.log.Error(s.log.WithOrderID(ctx, result.OrderID), "order placed but local cleanup failed", err)
		s.metrics.IncFailed()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalizing order")
	}

	s.metrics.IncPlaced()
	s.log.Info(s.log.WithOrderID(ctx, result.OrderID), "order placed")
	return snapshot, nil
}

func selectItems(items []models.CartItem, variantIDs []string) []models.CartItem {
	if variantIDs == nil {
		return items
	}
	wanted := make(map[string]bool, len(variantIDs))
	for _, id := range variantIDs {
		wanted[id] = true
	}
	selected := make([]models.CartItem, 0, len(items))
	for i := range items {
		if wanted[items[i].VariantID] {
			selected = append(selected, items[i])
		}
	}
	return selected
}
