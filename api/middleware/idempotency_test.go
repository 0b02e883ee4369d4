package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "es:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func checkoutRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	return req
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	var handlerRuns int
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if handlerRuns != 0 {
		t.Fatalf("handler ran without an Idempotency-Key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	var handlerRuns int
	handler := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"order":"remote-1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"tags":["a"]}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"tags":["a"]}`))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body = %q, want stored %q", second.Body.String(), first.Body.String())
	}
	if handlerRuns != 1 {
		t.Fatalf("handler runs = %d, want 1", handlerRuns)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	handler := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"tags":["a"]}`))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"tags":["b"]}`))
	if second.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for reused key", second.Code)
	}
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	var handlerRuns int
	handler := Idempotency(newMemoryStore(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if handlerRuns != 1 {
		t.Fatalf("unguarded route must pass through")
	}
}

func TestIdempotencyScopesByCustomer(t *testing.T) {
	store := newMemoryStore()
	var handlerRuns int
	handler := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRuns++
		w.WriteHeader(http.StatusCreated)
	}))

	first := checkoutRequest(`{}`)
	first = first.WithContext(WithCustomerID(first.Context(), "customer-a"))
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := checkoutRequest(`{}`)
	second = second.WithContext(WithCustomerID(second.Context(), "customer-b"))
	handler.ServeHTTP(httptest.NewRecorder(), second)

	if handlerRuns != 2 {
		t.Fatalf("handler runs = %d, different customers must not share keys", handlerRuns)
	}
}
