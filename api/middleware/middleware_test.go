package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

type fakeLimiterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeLimiterStore() *fakeLimiterStore {
	return &fakeLimiterStore{counts: map[string]int64{}}
}

func (f *fakeLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeLimiterStore) RateLimitKey(scope string) string {
	return "sf:rate_limit:" + scope
}

type fakeIdemStore struct {
	mu      sync.Mutex
	records map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{records: map[string]string{}}
}

func (f *fakeIdemStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.records[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeIdemStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key] = value.(string)
	return nil
}

func (f *fakeIdemStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	f.records[key] = value.(string)
	return true, nil
}

func (f *fakeIdemStore) IdempotencyKey(scope, id string) string {
	return "sf:idempotency:" + scope + ":" + id
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func TestRequireRoleBlocksNonAdmins(t *testing.T) {
	handler := RequireRole(enums.UserRoleAdmin, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthRateLimitPerEmail(t *testing.T) {
	store := newFakeLimiterStore()
	policy := AuthRateLimitPolicy{Name: "login", Window: time.Minute, IPLimit: 100, EmailLimit: 2}
	handler := AuthRateLimit(store, policy, nil)(okHandler())

	body := []byte(`{"email":"buyer@example.com","password":"secret123"}`)
	for attempt := 0; attempt < 2; attempt++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRateLimitPerIP(t *testing.T) {
	store := newFakeLimiterStore()
	policy := AuthRateLimitPolicy{Name: "register", Window: time.Minute, IPLimit: 1, EmailLimit: 0}
	handler := AuthRateLimit(store, policy, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdemStore()
	rules := []IdempotencyRule{{Method: http.MethodPost, Pattern: "/api/orders", TTL: time.Hour}}

	calls := 0
	handler := Idempotency(store, rules, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_number":"ORD-1"}`))
	}))

	body := []byte(`{"items":[{"product_id":"p","quantity":1}]}`)

	first := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	first.Header.Set("Idempotency-Key", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	second.Header.Set("Idempotency-Key", "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls, "handler must not run again on replay")
	assert.Equal(t, "true", rec.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, `{"order_number":"ORD-1"}`, rec.Body.String())
}

func TestIdempotencyRejectsPayloadMismatch(t *testing.T) {
	store := newFakeIdemStore()
	rules := []IdempotencyRule{{Method: http.MethodPost, Pattern: "/api/orders", TTL: time.Hour}}
	handler := Idempotency(store, rules, nil)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"qty":1}`)))
	first.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusCreated, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"qty":2}`)))
	second.Header.Set("Idempotency-Key", "key-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", envelope.Error.Code)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	store := newFakeIdemStore()
	rules := []IdempotencyRule{{Method: http.MethodPost, Pattern: "/api/orders", TTL: time.Hour}}
	handler := Idempotency(store, rules, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
