package coupons

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/pagination"
)

// Service manages the coupon catalog and the customer's applied set, and
// evaluates the combined discount for checkout.
type Service interface {
	ListCatalog(ctx context.Context, params pagination.Params) (*CatalogPage, error)
	Apply(ctx context.Context, customerID, couponID uuid.UUID) error
	ApplyByCode(ctx context.Context, customerID uuid.UUID, code string) error
	Remove(ctx context.Context, customerID, couponID uuid.UUID) error
	ListApplied(ctx context.Context, customerID uuid.UUID) ([]models.Coupon, error)
	DiscountFor(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal, now time.Time) (Discount, error)
}

// CatalogPage is one page of the coupon catalog.
type CatalogPage struct {
	Coupons    []models.Coupon
	NextCursor string
}

type service struct {
	repo CouponRepository
	log  *logger.Logger
}

// NewService wires a coupon service from its dependencies.
func NewService(repo CouponRepository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("coupons: repository is required")
	}
	if log == nil {
		return nil, stdErrors.New("coupons: logger is required")
	}
	return &service{repo: repo, log: log}, nil
}

// ListCatalog returns a page of catalog coupons with a cursor for the next
// page when one exists.
func (s *service) ListCatalog(ctx context.Context, params pagination.Params) (*CatalogPage, error) {
	rows, err := s.repo.ListCatalog(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coupon catalog")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &CatalogPage{Coupons: rows}
	if len(rows) > limit {
		page.Coupons = rows[:limit]
		last := page.Coupons[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// Apply adds the coupon to the customer's applied set. Applying a coupon
// twice is a no-op; unknown coupons are rejected.
func (s *service) Apply(ctx context.Context, customerID, couponID uuid.UUID) error {
	if customerID == uuid.Nil || couponID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer and coupon ids are required")
	}

	if _, err := s.repo.FindByID(ctx, couponID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}

	return s.addApplied(ctx, customerID, couponID)
}

// ApplyByCode resolves a public coupon code and applies it, so customers can
// type a code instead of picking from the catalog.
func (s *service) ApplyByCode(ctx context.Context, customerID uuid.UUID, code string) error {
	if customerID == uuid.Nil || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id and coupon code are required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon code not recognized")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon by code")
	}

	return s.addApplied(ctx, customerID, coupon.ID)
}

func (s *service) addApplied(ctx context.Context, customerID, couponID uuid.UUID) error {
	if err := s.repo.AddApplied(ctx, customerID, couponID); err != nil {
		if db.IsUniqueViolation(err, "idx_applied_coupons_customer_coupon") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying coupon")
	}
	return nil
}

// Remove drops the coupon from the applied set; removing an absent coupon
// succeeds without change.
func (s *service) Remove(ctx context.Context, customerID, couponID uuid.UUID) error {
	if customerID == uuid.Nil || couponID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer and coupon ids are required")
	}
	if err := s.repo.RemoveApplied(ctx, customerID, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing coupon")
	}
	return nil
}

// ListApplied returns the catalog rows of the customer's applied coupons.
func (s *service) ListApplied(ctx context.Context, customerID uuid.UUID) ([]models.Coupon, error) {
	applied, err := s.repo.ListApplied(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing applied coupons")
	}
	coupons := make([]models.Coupon, 0, len(applied))
	for _, row := range applied {
		coupons = append(coupons, row.Coupon)
	}
	return coupons, nil
}

// DiscountFor evaluates the applied set against the subtotal.
func (s *service) DiscountFor(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal, now time.Time) (Discount, error) {
	applied, err := s.ListApplied(ctx, customerID)
	if err != nil {
		return Discount{Amount: decimal.Zero}, err
	}
	return TotalDiscount(subtotal, applied, now), nil
}
