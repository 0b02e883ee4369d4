package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
)

// CartRecord is the single active cart owned by a customer. Converted carts
// are kept for traceability but never mutated again.
type CartRecord struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID         uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Status             enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	ShippingMethodID   *string          `gorm:"column:shipping_method_id"`
	ShippingMethodName *string          `gorm:"column:shipping_method_name"`
	ShippingRate       *decimal.Decimal `gorm:"column:shipping_rate;type:numeric(12,2)"`
	Items              []CartItem       `gorm:"foreignKey:CartID"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
