package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockGuestBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockGuestBackend() *mockGuestBackend {
	return &mockGuestBackend{data: make(map[string]string)}
}

func (m *mockGuestBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockGuestBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockGuestBackend) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockGuestBackend) GuestCartKey(token string) string {
	return "guest_cart:" + token
}

func newTestGuestStore(t *testing.T) (*GuestStore, *mockGuestBackend) {
	t.Helper()
	backend := newMockGuestBackend()
	store, err := NewGuestStore(backend, backend, time.Hour)
	if err != nil {
		t.Fatalf("new guest store: %v", err)
	}
	return store, backend
}

func TestGuestStoreCreateAndGet(t *testing.T) {
	store, _ := newTestGuestStore(t)
	ctx := context.Background()

	cart, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cart.Token == "" {
		t.Fatal("expected non-empty token")
	}

	loaded, err := store.Get(ctx, cart.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(loaded.Items))
	}
}

func TestGuestStoreAddItemMerges(t *testing.T) {
	store, _ := newTestGuestStore(t)
	ctx := context.Background()

	cart, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	productID := uuid.New()

	if _, err := store.AddItem(ctx, cart.Token, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := store.AddItem(ctx, cart.Token, productID, 3)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected merged line, got %d", len(updated.Items))
	}
	if updated.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", updated.Items[0].Quantity)
	}
}

func TestGuestStoreUpdateItemZeroRemoves(t *testing.T) {
	store, _ := newTestGuestStore(t)
	ctx := context.Background()

	cart, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	productID := uuid.New()
	if _, err := store.AddItem(ctx, cart.Token, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := store.UpdateItem(ctx, cart.Token, productID, 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Fatalf("expected line removed, got %d", len(updated.Items))
	}
}

func TestGuestStoreGetMissingToken(t *testing.T) {
	store, _ := newTestGuestStore(t)

	if _, err := store.Get(context.Background(), "nope"); err != ErrGuestCartNotFound {
		t.Fatalf("expected ErrGuestCartNotFound, got %v", err)
	}
}

func TestGuestStoreDelete(t *testing.T) {
	store, backend := newTestGuestStore(t)
	ctx := context.Background()

	cart, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, cart.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := backend.data[backend.GuestCartKey(cart.Token)]; ok {
		t.Fatal("expected key removed")
	}
}
