package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAccount holds the customer's point balance as last synced from the
// loyalty source, plus the amount they intend to redeem at checkout.
type LoyaltyAccount struct {
	CustomerID      uuid.UUID `gorm:"column:customer_id;type:uuid;primaryKey"`
	AvailablePoints int       `gorm:"column:available_points;not null;default:0"`
	SelectedPoints  int       `gorm:"column:selected_points;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
