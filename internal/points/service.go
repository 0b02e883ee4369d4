package points

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

// Service manages loyalty point balances and the redemption selection made
// before checkout.
type Service interface {
	GetAccount(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error)
	SyncBalance(ctx context.Context, customerID uuid.UUID, availablePoints int) (*models.LoyaltyAccount, error)
	SetSelectedPoints(ctx context.Context, customerID uuid.UUID, selected int) (*models.LoyaltyAccount, error)
	Quote(selected int) Quote
}

// Quote prices a redemption selection. Valid is false when the selection
// falls outside the configured redeem window; the discount is still reported
// so callers can show what the customer asked for.
type Quote struct {
	Points   int
	Discount decimal.Decimal
	Valid    bool
}

type service struct {
	repo PointsRepository
	cfg  config.PointsConfig
	log  *logger.Logger
}

// NewService wires a points service from its dependencies.
func NewService(repo PointsRepository, cfg config.PointsConfig, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("points: repository is required")
	}
	if log == nil {
		return nil, stdErrors.New("points: logger is required")
	}
	if cfg.ExchangeRate.IsNegative() {
		return nil, stdErrors.New("points: exchange rate must not be negative")
	}
	return &service{repo: repo, cfg: cfg, log: log}, nil
}

// GetAccount returns the loyalty account, creating a zero-balance one on
// first contact.
func (s *service) GetAccount(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	account, err := s.repo.Find(ctx, customerID)
	if err == nil {
		return account, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading loyalty account")
	}

	fresh := &models.LoyaltyAccount{CustomerID: customerID}
	if err := s.repo.Upsert(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating loyalty account")
	}
	return fresh, nil
}

// SyncBalance overwrites the available balance from the loyalty source. A
// selection that no longer fits the new balance is clamped down with it.
func (s *service) SyncBalance(ctx context.Context, customerID uuid.UUID, availablePoints int) (*models.LoyaltyAccount, error) {
	if availablePoints < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available points must not be negative")
	}

	account, err := s.GetAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	account.AvailablePoints = availablePoints
	if account.SelectedPoints > availablePoints {
		account.SelectedPoints = availablePoints
	}
	if err := s.repo.Upsert(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "syncing loyalty balance")
	}
	return account, nil
}

// SetSelectedPoints records how many points the customer wants to redeem.
// The selection is clamped to [0, availablePoints]; a zero balance pins the
// selection at zero.
func (s *service) SetSelectedPoints(ctx context.Context, customerID uuid.UUID, selected int) (*models.LoyaltyAccount, error) {
	account, err := s.GetAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if selected < 0 {
		selected = 0
	}
	if selected > account.AvailablePoints {
		selected = account.AvailablePoints
	}

	if selected == account.SelectedPoints {
		return account, nil
	}
	account.SelectedPoints = selected
	if err := s.repo.Upsert(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving point selection")
	}
	return account, nil
}

// Quote converts a selection into a monetary discount and checks it against
// the redeem window. A zero selection is always valid and worth nothing.
func (s *service) Quote(selected int) Quote {
	quote := Quote{
		Points:   selected,
		Discount: decimal.NewFromInt(int64(selected)).Mul(s.cfg.ExchangeRate),
		Valid:    true,
	}
	if selected == 0 {
		quote.Discount = decimal.Zero
		return quote
	}
	if selected < s.cfg.MinRedeem {
		quote.Valid = false
	}
	if s.cfg.MaxRedeem > 0 && selected > s.cfg.MaxRedeem {
		quote.Valid = false
	}
	return quote
}
