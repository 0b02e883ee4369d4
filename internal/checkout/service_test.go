package checkout

import (
	"context"
	"fmt"
	"testing"
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
	"github.com/tanawat-dev/eventshop-backend/pkg/pagination"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.calls++
	return fn(nil)
}

type fakeCartRepo struct {
	record        *models.CartRecord
	statusUpdates []enums.CartStatus
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return f }

func (f *fakeCartRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if f.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.record, nil
}

func (f *fakeCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	return record, nil
}

func (f *fakeCartRepo) SaveItem(ctx context.Context, item *models.CartItem) error { return nil }

func (f *fakeCartRepo) DeleteItem(ctx context.Context, cartID uuid.UUID, variantID string) error {
	return nil
}

func (f *fakeCartRepo) UpdateShipping(ctx context.Context, cartID uuid.UUID, methodID, methodName string, rate decimal.Decimal) error {
	return nil
}

func (f *fakeCartRepo) UpdateStatus(ctx context.Context, id, customerID uuid.UUID, status enums.CartStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

type fakeCouponRepo struct{ cleared int }

func (f *fakeCouponRepo) WithTx(tx *gorm.DB) coupons.CouponRepository { return f }

func (f *fakeCouponRepo) ListCatalog(ctx context.Context, params pagination.Params) ([]models.Coupon, error) {
	return nil, nil
}

func (f *fakeCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) AddApplied(ctx context.Context, customerID, couponID uuid.UUID) error {
	return nil
}

func (f *fakeCouponRepo) RemoveApplied(ctx context.Context, customerID, couponID uuid.UUID) error {
	return nil
}

func (f *fakeCouponRepo) ListApplied(ctx context.Context, customerID uuid.UUID) ([]models.AppliedCoupon, error) {
	return nil, nil
}

func (f *fakeCouponRepo) DeleteAllApplied(ctx context.Context, customerID uuid.UUID) error {
	f.cleared++
	return nil
}

func (f *fakeCouponRepo) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeCouponRepo) PurgeExpiredApplied(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakePointsRepo struct{ resets int }

func (f *fakePointsRepo) WithTx(tx *gorm.DB) points.PointsRepository { return f }

func (f *fakePointsRepo) Find(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePointsRepo) Upsert(ctx context.Context, account *models.LoyaltyAccount) error {
	return nil
}

func (f *fakePointsRepo) ResetSelected(ctx context.Context, customerID uuid.UUID) error {
	f.resets++
	return nil
}

type fakeOrderRepo struct{ created []*models.OrderRecord }

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) orders.OrderRepository { return f }

func (f *fakeOrderRepo) Create(ctx context.Context, record *models.OrderRecord) (*models.OrderRecord, error) {
	record.ID = uuid.New()
	f.created = append(f.created, record)
	return record, nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id, customerID uuid.UUID) (*models.OrderRecord, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.OrderRecord, error) {
	return nil, nil
}

type fakeRPC struct {
	calls int
	err   error
	last  orders.PlaceOrderInput
}

func (f *fakeRPC) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.PlaceOrderResult, error) {
	f.calls++
	f.last = input
	if f.err != nil {
		return nil, f.err
	}
	return &orders.PlaceOrderResult{OrderID: "remote-1"}, nil
}

type fakeDiscounter struct{ result coupons.Discount }

func (f *fakeDiscounter) DiscountFor(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal, now time.Time) (coupons.Discount, error) {
	return f.result, nil
}

type fakeQuoter struct {
	account models.LoyaltyAccount
	quote   points.Quote
}

func (f *fakeQuoter) GetAccount(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error) {
	copied := f.account
	return &copied, nil
}

func (f *fakeQuoter) Quote(selected int) points.Quote {
	return f.quote
}

type harness struct {
	svc     Service
	tx      *fakeTx
	carts   *fakeCartRepo
	coupons *fakeCouponRepo
	loyalty *fakePointsRepo
	orders  *fakeOrderRepo
	rpc     *fakeRPC
}

func newHarness(t *testing.T, record *models.CartRecord, discount coupons.Discount, quote points.Quote) *harness {
	t.Helper()
	h := &harness{
		tx:      &fakeTx{},
		carts:   &fakeCartRepo{record: record},
		coupons: &fakeCouponRepo{},
		loyalty: &fakePointsRepo{},
		orders:  &fakeOrderRepo{},
		rpc:     &fakeRPC{},
	}

	svc, err := NewService(Deps{
		Config: config.CheckoutConfig{
			TaxRate:   dec("0.07"),
			Currency:  "THB",
			StoreName: "demo-store",
		},
		Tx:            h.tx,
		Carts:         h.carts,
		Coupons:       h.coupons,
		Loyalty:       h.loyalty,
		Orders:        h.orders,
		RPC:           h.rpc,
		CouponService: &fakeDiscounter{result: discount},
		PointsService: &fakeQuoter{quote: quote},
		Metrics:       nil,
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func cartFixture() *models.CartRecord {
	rate := decimal.NewFromInt(40)
	name := "Standard"
	return &models.CartRecord{
		ID:                 uuid.New(),
		CustomerID:         uuid.New(),
		Status:             enums.CartStatusActive,
		ShippingRate:       &rate,
		ShippingMethodName: &name,
		Items: []models.CartItem{
			{VariantID: "var-1", Name: "Festival Tee", UnitPrice: decimal.NewFromInt(500), Quantity: 2, MaxQuantity: 9},
		},
	}
}

func validQuote(pts int, discount string) points.Quote {
	return points.Quote{Points: pts, Discount: dec(discount), Valid: true}
}

func TestSubmitFullBreakdown(t *testing.T) {
	h := newHarness(t, cartFixture(),
		coupons.Discount{Amount: dec("100")},
		validQuote(500, "50"),
	)

	snapshot, err := h.svc.Submit(context.Background(), h.carts.record.CustomerID, SubmitInput{
		Notes: &types.OrderNotes{PaymentMethod: "bank_transfer"},
		Tags:  []string{"storefront"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !snapshot.Total.Equal(dec("960")) {
		t.Fatalf("total = %s, want 960", snapshot.Total)
	}
	if !h.rpc.last.Tax.Equal(dec("70")) {
		t.Fatalf("tax = %s, want 70", h.rpc.last.Tax)
	}
	if snapshot.RemoteOrderID != "remote-1" {
		t.Fatalf("remote id = %s, want remote-1", snapshot.RemoteOrderID)
	}

	if len(h.carts.statusUpdates) != 1 || h.carts.statusUpdates[0] != enums.CartStatusConverted {
		t.Fatalf("cart status updates = %v, want one conversion", h.carts.statusUpdates)
	}
	if h.coupons.cleared != 1 {
		t.Fatalf("applied coupons cleared %d times, want 1", h.coupons.cleared)
	}
	if h.loyalty.resets != 1 {
		t.Fatalf("points reset %d times, want 1", h.loyalty.resets)
	}
	if len(h.orders.created) != 1 {
		t.Fatalf("order snapshots = %d, want 1", len(h.orders.created))
	}
}

func TestSubmitEmptyCartRejectedBeforeNetwork(t *testing.T) {
	record := cartFixture()
	record.Items = nil
	h := newHarness(t, record, coupons.Discount{Amount: decimal.Zero}, validQuote(0, "0"))

	_, err := h.svc.Submit(context.Background(), record.CustomerID, SubmitInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	if h.rpc.calls != 0 {
		t.Fatalf("rpc calls = %d, empty carts must never reach the network", h.rpc.calls)
	}
}

func TestSubmitEmptySelectionRejected(t *testing.T) {
	h := newHarness(t, cartFixture(), coupons.Discount{Amount: decimal.Zero}, validQuote(0, "0"))

	_, err := h.svc.Submit(context.Background(), h.carts.record.CustomerID, SubmitInput{
		VariantIDs: []string{"not-in-cart"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	if h.rpc.calls != 0 {
		t.Fatalf("rpc calls = %d, want 0", h.rpc.calls)
	}
}

func TestSubmitInvalidPointsWindow(t *testing.T) {
	h := newHarness(t, cartFixture(), coupons.Discount{Amount: decimal.Zero},
		points.Quote{Points: 50, Discount: dec("5"), Valid: false})

	_, err := h.svc.Submit(context.Background(), h.carts.record.CustomerID, SubmitInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
	if h.rpc.calls != 0 {
		t.Fatalf("rpc calls = %d, want 0", h.rpc.calls)
	}
}

func TestSubmitRPCFailureLeavesCartIntact(t *testing.T) {
	h := newHarness(t, cartFixture(), coupons.Discount{Amount: decimal.Zero}, validQuote(0, "0"))
	h.rpc.err = fmt.Errorf("connection refused")

	_, err := h.svc.Submit(context.Background(), h.carts.record.CustomerID, SubmitInput{})
	if err == nil {
		t.Fatalf("expected the rpc failure to surface")
	}
	if h.rpc.calls != 1 {
		t.Fatalf("rpc calls = %d, want exactly 1 with no retry", h.rpc.calls)
	}
	if h.tx.calls != 0 {
		t.Fatalf("tx calls = %d, cart state must stay untouched on failure", h.tx.calls)
	}
	if len(h.carts.statusUpdates) != 0 {
		t.Fatalf("cart status updates = %v, want none", h.carts.statusUpdates)
	}
}

func TestSubmitFreeShippingWaiver(t *testing.T) {
	h := newHarness(t, cartFixture(),
		coupons.Discount{Amount: decimal.Zero, FreeShipping: true},
		validQuote(0, "0"),
	)

	snapshot, err := h.svc.Submit(context.Background(), h.carts.record.CustomerID, SubmitInput{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !snapshot.Shipping.IsZero() {
		t.Fatalf("shipping = %s, want 0 under waiver", snapshot.Shipping)
	}
}

func TestPreviewDoesNotSubmit(t *testing.T) {
	h := newHarness(t, cartFixture(),
		coupons.Discount{Amount: dec("100")},
		validQuote(500, "50"),
	)

	preview, err := h.svc.Preview(context.Background(), h.carts.record.CustomerID, nil)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !preview.Totals.Total.Equal(dec("960")) {
		t.Fatalf("total = %s, want 960", preview.Totals.Total)
	}
	if preview.Currency != "THB" {
		t.Fatalf("currency = %s, want THB", preview.Currency)
	}
	if h.rpc.calls != 0 {
		t.Fatalf("rpc calls = %d, preview must not submit", h.rpc.calls)
	}
}
