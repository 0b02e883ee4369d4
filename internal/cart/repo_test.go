package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  shipping_method_id TEXT,
  shipping_method_name TEXT,
  shipping_rate NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  max_quantity INTEGER NOT NULL,
  options TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, variant_id)
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func newCartRecord(t *testing.T, db *gorm.DB, customerID uuid.UUID, status enums.CartStatus) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     status,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func newCartItem(t *testing.T, db *gorm.DB, cartID uuid.UUID, variantID string, quantity int) *models.CartItem {
	t.Helper()

	item := &models.CartItem{
		ID:          uuid.New(),
		CartID:      cartID,
		VariantID:   variantID,
		Name:        "Festival tee",
		UnitPrice:   decimal.NewFromInt(500),
		Quantity:    quantity,
		MaxQuantity: 5,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestFindActiveByCustomerSkipsConvertedCarts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	newCartRecord(t, db, customerID, enums.CartStatusConverted)
	active := newCartRecord(t, db, customerID, enums.CartStatusActive)

	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
}

func TestFindActiveByCustomerPreloadsItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	record := newCartRecord(t, db, customerID, enums.CartStatusActive)
	newCartItem(t, db, record.ID, "variant-a", 2)
	newCartItem(t, db, record.ID, "variant-b", 1)

	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
}

func TestFindActiveByCustomerMissing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindActiveByCustomer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaveItemUpdatesExistingRow(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	record := newCartRecord(t, db, customerID, enums.CartStatusActive)
	item := newCartItem(t, db, record.ID, "variant-a", 2)

	item.Quantity = 4
	require.NoError(t, repo.SaveItem(context.Background(), item))

	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 4, found.Items[0].Quantity)
}

func TestDeleteItemIsScopedToVariant(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	record := newCartRecord(t, db, customerID, enums.CartStatusActive)
	newCartItem(t, db, record.ID, "variant-a", 2)
	newCartItem(t, db, record.ID, "variant-b", 1)

	require.NoError(t, repo.DeleteItem(context.Background(), record.ID, "variant-a"))
	require.NoError(t, repo.DeleteItem(context.Background(), record.ID, "variant-missing"))

	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "variant-b", found.Items[0].VariantID)
}

func TestUpdateShippingPersistsSelection(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	record := newCartRecord(t, db, customerID, enums.CartStatusActive)
	rate := decimal.NewFromInt(40)
	require.NoError(t, repo.UpdateShipping(context.Background(), record.ID, "standard", "Standard shipping", rate))

	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.NotNil(t, found.ShippingMethodID)
	assert.Equal(t, "standard", *found.ShippingMethodID)
	require.NotNil(t, found.ShippingRate)
	assert.True(t, found.ShippingRate.Equal(rate))
}

func TestUpdateStatusRequiresOwner(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()

	record := newCartRecord(t, db, customerID, enums.CartStatusActive)

	require.NoError(t, repo.UpdateStatus(context.Background(), record.ID, uuid.New(), enums.CartStatusConverted))
	found, err := repo.FindActiveByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, found.Status)

	require.NoError(t, repo.UpdateStatus(context.Background(), record.ID, customerID, enums.CartStatusConverted))
	_, err = repo.FindActiveByCustomer(context.Background(), customerID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
