package cart

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// Service owns the active cart of a customer: item merging, quantity rules
// and line totals. Pricing beyond line totals lives in checkout.
type Service interface {
	GetActiveCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, customerID uuid.UUID, variantID string, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, variantID string) (*models.CartRecord, error)
	TotalItems(record *models.CartRecord, variantIDs []string) int
	TotalPrice(record *models.CartRecord, variantIDs []string) decimal.Decimal
}

// AddItemInput carries the variant snapshot taken when the customer adds a
// product to the cart.
type AddItemInput struct {
	VariantID   string
	Name        string
	Image       string
	UnitPrice   decimal.Decimal
	Quantity    int
	MaxQuantity int
	Options     map[string]string
}

type service struct {
	repo CartRepository
	log  *logger.Logger
}

// NewService wires a cart service from its dependencies.
func NewService(repo CartRepository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("cart: repository is required")
	}
	if log == nil {
		return nil, stdErrors.New("cart: logger is required")
	}
	return &service{repo: repo, log: log}, nil
}

// GetActiveCart returns the customer's active cart, creating an empty one on
// first use.
func (s *service) GetActiveCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return record, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading active cart")
	}

	created, err := s.repo.Create(ctx, &models.CartRecord{CustomerID: customerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	s.log.Info(s.log.WithCartID(ctx, created.ID.String()), "created active cart")
	return created, nil
}

// AddItem puts a variant in the cart. Adding a variant already present merges
// into the existing line instead of creating a duplicate. Quantities are
// clamped to [1, maxQuantity].
func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if input.VariantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if input.MaxQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max quantity must be at least 1")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}

	record, err := s.GetActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	increment := input.Quantity
	if increment < 1 {
		increment = 1
	}

	if existing := findItem(record, input.VariantID); existing != nil {
		existing.Quantity = clampQuantity(existing.Quantity+increment, existing.MaxQuantity)
		if err := s.repo.SaveItem(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}
		return record, nil
	}

	item := models.CartItem{
		CartID:      record.ID,
		VariantID:   input.VariantID,
		Name:        input.Name,
		Image:       input.Image,
		UnitPrice:   input.UnitPrice,
		Quantity:    clampQuantity(increment, input.MaxQuantity),
		MaxQuantity: input.MaxQuantity,
		Options:     input.Options,
	}
	if err := s.repo.SaveItem(ctx, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
	}
	record.Items = append(record.Items, item)
	return record, nil
}

// UpdateQuantity sets the quantity of an existing line. Zero and negative
// quantities are ignored; removal goes through RemoveItem. Values above the
// line's max are clamped silently.
func (s *service) UpdateQuantity(ctx context.Context, customerID uuid.UUID, variantID string, quantity int) (*models.CartRecord, error) {
	if variantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	record, err := s.GetActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return record, nil
	}

	item := findItem(record, variantID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not in cart")
	}

	next := clampQuantity(quantity, item.MaxQuantity)
	if next == item.Quantity {
		return record, nil
	}
	item.Quantity = next
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}
	return record, nil
}

// RemoveItem deletes the line for the variant. Removing a variant that is not
// in the cart succeeds without change.
func (s *service) RemoveItem(ctx context.Context, customerID uuid.UUID, variantID string) (*models.CartRecord, error) {
	if variantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	record, err := s.GetActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, record.ID, variantID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}

	kept := record.Items[:0]
	for i := range record.Items {
		if record.Items[i].VariantID != variantID {
			kept = append(kept, record.Items[i])
		}
	}
	record.Items = kept
	return record, nil
}

// TotalItems sums line quantities. A non-nil variantIDs slice restricts the
// sum to the listed variants.
func (s *service) TotalItems(record *models.CartRecord, variantIDs []string) int {
	if record == nil {
		return 0
	}
	selected := selection(variantIDs)
	total := 0
	for i := range record.Items {
		if selected != nil && !selected[record.Items[i].VariantID] {
			continue
		}
		total += record.Items[i].Quantity
	}
	return total
}

// TotalPrice sums line totals. A non-nil variantIDs slice restricts the sum
// to the listed variants.
func (s *service) TotalPrice(record *models.CartRecord, variantIDs []string) decimal.Decimal {
	total := decimal.Zero
	if record == nil {
		return total
	}
	selected := selection(variantIDs)
	for i := range record.Items {
		if selected != nil && !selected[record.Items[i].VariantID] {
			continue
		}
		total = total.Add(record.Items[i].LineTotal())
	}
	return total
}

func findItem(record *models.CartRecord, variantID string) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].VariantID == variantID {
			return &record.Items[i]
		}
	}
	return nil
}

func clampQuantity(quantity, max int) int {
	if quantity < 1 {
		return 1
	}
	if max >= 1 && quantity > max {
		return max
	}
	return quantity
}

func selection(variantIDs []string) map[string]bool {
	if variantIDs == nil {
		return nil
	}
	set := make(map[string]bool, len(variantIDs))
	for _, id := range variantIDs {
		set[id] = true
	}
	return set
}
