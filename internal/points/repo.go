package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
)

// PointsRepository is the persistence surface for loyalty accounts.
type PointsRepository interface {
	WithTx(tx *gorm.DB) PointsRepository
	Find(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error)
	Upsert(ctx context.Context, account *models.LoyaltyAccount) error
	ResetSelected(ctx context.Context, customerID uuid.UUID) error
}

// Repository exposes persistence operations for loyalty accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a points repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) PointsRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Find loads the loyalty account for the customer.
func (r *Repository) Find(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := r.db.WithContext(ctx).
		First(&account, "customer_id = ?", customerID).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert writes the account, inserting on first contact and updating the
// balance columns afterwards.
func (r *Repository) Upsert(ctx context.Context, account *models.LoyaltyAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"available_points", "selected_points", "updated_at"}),
		}).
		Create(account).Error
}

// ResetSelected zeroes the redemption selection, used after checkout.
func (r *Repository) ResetSelected(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.LoyaltyAccount{}).
		Where("customer_id = ?", customerID).
		Update("selected_points", 0).Error
}
