package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem snapshots a purchasable variant inside a cart. The unit price is
// the price at the time the item was added and is not re-fetched.
type CartItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant"`
	VariantID   string            `gorm:"column:variant_id;not null;uniqueIndex:idx_cart_items_cart_variant"`
	Name        string            `gorm:"column:name;not null"`
	Image       string            `gorm:"column:image"`
	UnitPrice   decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int               `gorm:"column:quantity;not null"`
	MaxQuantity int               `gorm:"column:max_quantity;not null"`
	Options     map[string]string `gorm:"column:options;type:jsonb;serializer:json"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal returns unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
