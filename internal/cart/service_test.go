package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/enums"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

type stubCartRepo struct {
	record     *models.CartRecord
	saved      []models.CartItem
	deleted    []string
	createErr  error
	findErr    error
	saveErr    error
	deleteErr  error
	createdNew bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	record.ID = uuid.New()
	s.record = record
	s.createdNew = true
	return record, nil
}

func (s *stubCartRepo) SaveItem(ctx context.Context, item *models.CartItem) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *item)
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID uuid.UUID, variantID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, variantID)
	return nil
}

func (s *stubCartRepo) UpdateShipping(ctx context.Context, cartID uuid.UUID, methodID, methodName string, rate decimal.Decimal) error {
	return nil
}

func (s *stubCartRepo) UpdateStatus(ctx context.Context, id, customerID uuid.UUID, status enums.CartStatus) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func cartWith(items ...models.CartItem) *models.CartRecord {
	return &models.CartRecord{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Items:      items,
	}
}

func TestGetActiveCartCreatesOnFirstUse(t *testing.T) {
	repo := &stubCartRepo{}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	customerID := uuid.New()
	record, err := svc.GetActiveCart(context.Background(), customerID)
	if err != nil {
		t.Fatalf("GetActiveCart: %v", err)
	}
	if !repo.createdNew {
		t.Fatalf("expected a new cart to be created")
	}
	if record.CustomerID != customerID {
		t.Fatalf("cart owner = %s, want %s", record.CustomerID, customerID)
	}
}

func TestAddItemMergesByVariant(t *testing.T) {
	existing := models.CartItem{
		VariantID:   "var-1",
		UnitPrice:   decimal.NewFromInt(250),
		Quantity:    2,
		MaxQuantity: 5,
	}
	repo := &stubCartRepo{record: cartWith(existing)}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.AddItem(context.Background(), repo.record.CustomerID, AddItemInput{
		VariantID:   "var-1",
		UnitPrice:   decimal.NewFromInt(250),
		Quantity:    2,
		MaxQuantity: 5,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("items = %d, want 1 merged line", len(record.Items))
	}
	if record.Items[0].Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", record.Items[0].Quantity)
	}
}

func TestAddItemClampsToMaxQuantity(t *testing.T) {
	existing := models.CartItem{VariantID: "var-1", Quantity: 4, MaxQuantity: 5}
	repo := &stubCartRepo{record: cartWith(existing)}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.AddItem(context.Background(), repo.record.CustomerID, AddItemInput{
		VariantID:   "var-1",
		Quantity:    10,
		MaxQuantity: 5,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if record.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want clamp at 5", record.Items[0].Quantity)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	repo := &stubCartRepo{record: cartWith()}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.AddItem(context.Background(), repo.record.CustomerID, AddItemInput{
		VariantID:   "var-9",
		Name:        "Festival Tee",
		UnitPrice:   decimal.NewFromInt(590),
		MaxQuantity: 10,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if record.Items[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", record.Items[0].Quantity)
	}
}

func TestUpdateQuantityIgnoresNonPositive(t *testing.T) {
	existing := models.CartItem{VariantID: "var-1", Quantity: 3, MaxQuantity: 5}
	repo := &stubCartRepo{record: cartWith(existing)}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.UpdateQuantity(context.Background(), repo.record.CustomerID, "var-1", 0)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if record.Items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want unchanged 3", record.Items[0].Quantity)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("expected no writes for non-positive quantity")
	}
}

func TestUpdateQuantityClampsToMax(t *testing.T) {
	existing := models.CartItem{VariantID: "var-1", Quantity: 1, MaxQuantity: 5}
	repo := &stubCartRepo{record: cartWith(existing)}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.UpdateQuantity(context.Background(), repo.record.CustomerID, "var-1", 99)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if record.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want clamp at 5", record.Items[0].Quantity)
	}
}

func TestUpdateQuantityMissingVariant(t *testing.T) {
	repo := &stubCartRepo{record: cartWith()}
	svc, _ := NewService(repo, testLogger())

	_, err := svc.UpdateQuantity(context.Background(), repo.record.CustomerID, "ghost", 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	repo := &stubCartRepo{record: cartWith()}
	svc, _ := NewService(repo, testLogger())

	record, err := svc.RemoveItem(context.Background(), repo.record.CustomerID, "absent")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(record.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(record.Items))
	}
}

func TestTotalsWithSelection(t *testing.T) {
	record := cartWith(
		models.CartItem{VariantID: "a", UnitPrice: decimal.NewFromInt(100), Quantity: 2, MaxQuantity: 9},
		models.CartItem{VariantID: "b", UnitPrice: decimal.NewFromInt(350), Quantity: 1, MaxQuantity: 9},
	)
	svc, _ := NewService(&stubCartRepo{record: record}, testLogger())

	if got := svc.TotalItems(record, nil); got != 3 {
		t.Fatalf("TotalItems all = %d, want 3", got)
	}
	if got := svc.TotalPrice(record, nil); !got.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("TotalPrice all = %s, want 550", got)
	}
	if got := svc.TotalItems(record, []string{"a"}); got != 2 {
		t.Fatalf("TotalItems subset = %d, want 2", got)
	}
	if got := svc.TotalPrice(record, []string{"b"}); !got.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("TotalPrice subset = %s, want 350", got)
	}
	if got := svc.TotalItems(record, []string{}); got != 0 {
		t.Fatalf("TotalItems empty selection = %d, want 0", got)
	}
}
