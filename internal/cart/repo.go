package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
)

// CartRepository is the persistence surface consumed by the cart and
// checkout services.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, variantID string) error
	UpdateShipping(ctx context.Context, cartID uuid.UUID, methodID, methodName string, rate decimal.Decimal) error
	UpdateStatus(ctx context.Context, id, customerID uuid.UUID, status enums.CartStatus) error
}

// Repository exposes persistence operations for cart data.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByCustomer loads the latest active CartRecord for the customer.
func (r *Repository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Where("customer_id = ? AND status = ?", customerID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new CartRecord.
func (r *Repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// SaveItem inserts or updates a cart item.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes the item for the variant; deleting an absent variant is
// a no-op.
func (r *Repository) DeleteItem(ctx context.Context, cartID uuid.UUID, variantID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Delete(&models.CartItem{}).Error
}

// UpdateShipping persists the selected shipping method on the cart.
func (r *Repository) UpdateShipping(ctx context.Context, cartID uuid.UUID, methodID, methodName string, rate decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"shipping_method_id":   methodID,
			"shipping_method_name": methodName,
			"shipping_rate":        rate,
		}).Error
}

// UpdateStatus updates the status of a CartRecord owned by the customer.
func (r *Repository) UpdateStatus(ctx context.Context, id, customerID uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Update("status", status).Error
}
