package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/pagination"
)

// CouponRepository is the persistence surface for the coupon catalog and the
// per-customer applied set.
type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	ListCatalog(ctx context.Context, params pagination.Params) ([]models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	AddApplied(ctx context.Context, customerID, couponID uuid.UUID) error
	RemoveApplied(ctx context.Context, customerID, couponID uuid.UUID) error
	ListApplied(ctx context.Context, customerID uuid.UUID) ([]models.AppliedCoupon, error)
	DeleteAllApplied(ctx context.Context, customerID uuid.UUID) error
	ExpireOutdated(ctx context.Context, now time.Time) (int64, error)
	PurgeExpiredApplied(ctx context.Context, now time.Time) (int64, error)
}

// Repository exposes persistence operations for coupon data.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListCatalog pages through the coupon catalog by creation time.
func (r *Repository) ListCatalog(ctx context.Context, params pagination.Params) ([]models.Coupon, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// FindByID loads one catalog coupon.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode loads one catalog coupon by its public code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// AddApplied links the coupon to the customer's applied set.
func (r *Repository) AddApplied(ctx context.Context, customerID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.AppliedCoupon{
		CustomerID: customerID,
		CouponID:   couponID,
	}).Error
}

// RemoveApplied unlinks the coupon; removing an absent link is a no-op.
func (r *Repository) RemoveApplied(ctx context.Context, customerID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND coupon_id = ?", customerID, couponID).
		Delete(&models.AppliedCoupon{}).Error
}

// ListApplied returns the customer's applied coupons with catalog rows
// preloaded.
func (r *Repository) ListApplied(ctx context.Context, customerID uuid.UUID) ([]models.AppliedCoupon, error) {
	var applied []models.AppliedCoupon
	err := r.db.WithContext(ctx).
		Preload("Coupon").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&applied).Error
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// DeleteAllApplied clears the customer's applied set, used after a successful
// checkout.
func (r *Repository) DeleteAllApplied(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.AppliedCoupon{}).Error
}

// ExpireOutdated flips is_applicable off for every coupon past its validity
// window and returns how many rows changed.
func (r *Repository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("valid_until < ? AND is_applicable = ?", now, true).
		Update("is_applicable", false)
	return result.RowsAffected, result.Error
}

// PurgeExpiredApplied drops applied-set rows whose coupon can never apply
// again and returns how many rows were removed.
func (r *Repository) PurgeExpiredApplied(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("coupon_id IN (?)", r.db.
			Model(&models.Coupon{}).
			Select("id").
			Where("valid_until < ?", now)).
		Delete(&models.AppliedCoupon{})
	return result.RowsAffected, result.Error
}
