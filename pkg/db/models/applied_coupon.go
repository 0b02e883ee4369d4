package models

import (
	"time"

	"github.com/google/uuid"
)

// AppliedCoupon links a customer to a coupon they selected for their next
// checkout. The (customer_id, coupon_id) pair is unique, giving the applied
// set its set semantics.
type AppliedCoupon struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_applied_coupons_customer_coupon"`
	CouponID   uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;uniqueIndex:idx_applied_coupons_customer_coupon"`
	Coupon     Coupon    `gorm:"foreignKey:CouponID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
