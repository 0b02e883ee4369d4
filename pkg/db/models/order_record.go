package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
	"github.com/tanawat-dev/eventshop-backend/pkg/types"
)

// OrderRecord snapshots a successfully submitted order. The hosted backend
// owns the authoritative order; this row backs the customer's order history.
type OrderRecord struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	RemoteOrderID string            `gorm:"column:remote_order_id;not null"`
	StoreName     string            `gorm:"column:store_name;not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null"`
	Shipping      decimal.Decimal   `gorm:"column:shipping;type:numeric(12,2);not null"`
	Tax           decimal.Decimal   `gorm:"column:tax;type:numeric(12,2);not null"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Notes         *types.OrderNotes `gorm:"column:notes;type:jsonb;serializer:json"`
	Tags          pq.StringArray    `gorm:"column:tags;type:text[]"`
	Items         []OrderLineItem   `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
