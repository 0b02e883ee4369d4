package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
)

// Coupon is a catalog entry synced from the hosted backend. IsApplicable is
// the precomputed eligibility flag; the cron worker clears it once ValidUntil
// passes.
type Coupon struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string           `gorm:"column:code;not null;uniqueIndex:idx_coupons_code"`
	Description  string           `gorm:"column:description"`
	Type         enums.CouponType `gorm:"column:type;not null"`
	Value        decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	MinPurchase  *decimal.Decimal `gorm:"column:min_purchase;type:numeric(12,2)"`
	MaxDiscount  *decimal.Decimal `gorm:"column:max_discount;type:numeric(12,2)"`
	ValidUntil   time.Time        `gorm:"column:valid_until;not null"`
	IsApplicable bool             `gorm:"column:is_applicable;not null;default:true"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
