package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/api/middleware"
	pointsvc "github.com/tanawat-dev/eventshop-backend/internal/points"
	"github.com/tanawat-dev/eventshop-backend/pkg/db/models"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func authedRequest(t *testing.T, method, target, body string, customerID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithCustomerID(req.Context(), customerID.String()))
}

type stubPointsService struct {
	account      models.LoyaltyAccount
	syncedWith   *int
	selectedWith *int
}

func (s *stubPointsService) GetAccount(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyAccount, error) {
	account := s.account
	return &account, nil
}

func (s *stubPointsService) SyncBalance(ctx context.Context, customerID uuid.UUID, availablePoints int) (*models.LoyaltyAccount, error) {
	s.syncedWith = &availablePoints
	s.account.AvailablePoints = availablePoints
	if s.account.SelectedPoints > availablePoints {
		s.account.SelectedPoints = availablePoints
	}
	account := s.account
	return &account, nil
}

func (s *stubPointsService) SetSelectedPoints(ctx context.Context, customerID uuid.UUID, selected int) (*models.LoyaltyAccount, error) {
	s.selectedWith = &selected
	s.account.SelectedPoints = selected
	account := s.account
	return &account, nil
}

func (s *stubPointsService) Quote(selected int) pointsvc.Quote {
	return pointsvc.Quote{
		Points:   selected,
		Discount: decimal.NewFromInt(int64(selected)).Mul(decimal.NewFromFloat(0.1)),
		Valid:    true,
	}
}

func TestPointsSyncBalanceReachesService(t *testing.T) {
	svc := &stubPointsService{account: models.LoyaltyAccount{SelectedPoints: 500, AvailablePoints: 500}}
	handler := PointsSyncBalance(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/v1/points/balance", `{"available_points":300}`, uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.syncedWith == nil || *svc.syncedWith != 300 {
		t.Fatalf("SyncBalance called with %v, want 300", svc.syncedWith)
	}
	if !strings.Contains(rec.Body.String(), `"selected_points":300`) {
		t.Fatalf("selection not clamped in response: %s", rec.Body.String())
	}
}

func TestPointsSyncBalanceRequiresBody(t *testing.T) {
	svc := &stubPointsService{}
	handler := PointsSyncBalance(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/v1/points/balance", `{}`, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if svc.syncedWith != nil {
		t.Fatalf("SyncBalance must not run without a balance")
	}
}

func TestPointsSyncBalanceRejectsNegative(t *testing.T) {
	svc := &stubPointsService{}
	handler := PointsSyncBalance(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/v1/points/balance", `{"available_points":-5}`, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
