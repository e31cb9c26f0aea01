package cart

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const guestTokenBytes = 24

// ErrGuestCartNotFound signals a missing or expired guest cart token.
var ErrGuestCartNotFound = errors.New("guest cart not found")

type guestBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type guestKeyer interface {
	GuestCartKey(token string) string
}

// GuestLine is one product line in an anonymous cart.
type GuestLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// GuestCart is the Redis-persisted form of an anonymous cart.
type GuestCart struct {
	Token     string      `json:"token"`
	Items     []GuestLine `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// GuestStore keeps anonymous carts in Redis under a client-held token.
// Every write refreshes the TTL so an active cart never expires mid-session.
type GuestStore struct {
	store guestBackend
	keyer guestKeyer
	ttl   time.Duration
}

// NewGuestStore builds a guest cart store with the configured TTL.
func NewGuestStore(store guestBackend, keyer guestKeyer, ttl time.Duration) (*GuestStore, error) {
	if store == nil || keyer == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("guest cart ttl must be positive")
	}
	return &GuestStore{store: store, keyer: keyer, ttl: ttl}, nil
}

// Create allocates a fresh token with an empty cart.
func (g *GuestStore) Create(ctx context.Context) (*GuestCart, error) {
	token, err := newGuestToken()
	if err != nil {
		return nil, err
	}
	cart := &GuestCart{Token: token, Items: []GuestLine{}, UpdatedAt: time.Now().UTC()}
	if err := g.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get loads the cart stored under token.
func (g *GuestStore) Get(ctx context.Context, token string) (*GuestCart, error) {
	if token == "" {
		return nil, ErrGuestCartNotFound
	}
	raw, err := g.store.Get(ctx, g.keyer.GuestCartKey(token))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrGuestCartNotFound
		}
		return nil, err
	}
	var cart GuestCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	cart.Token = token
	return &cart, nil
}

// AddItem merges quantity into the line for productID, creating it if needed.
func (g *GuestStore) AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*GuestCart, error) {
	if productID == uuid.Nil || quantity <= 0 {
		return nil, fmt.Errorf("product id and positive quantity required")
	}
	cart, err := g.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, GuestLine{ProductID: productID, Quantity: quantity})
	}

	if err := g.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the quantity for a line; qty <= 0 removes it.
func (g *GuestStore) UpdateItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*GuestCart, error) {
	cart, err := g.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	next := cart.Items[:0]
	for _, line := range cart.Items {
		if line.ProductID == productID {
			if quantity <= 0 {
				continue
			}
			line.Quantity = quantity
		}
		next = append(next, line)
	}
	cart.Items = next

	if err := g.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Delete drops the cart stored under token.
func (g *GuestStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return g.store.Del(ctx, g.keyer.GuestCartKey(token))
}

func (g *GuestStore) save(ctx context.Context, cart *GuestCart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	return g.store.Set(ctx, g.keyer.GuestCartKey(cart.Token), string(payload), g.ttl)
}

func newGuestToken() (string, error) {
	bytes := make([]byte, guestTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating guest cart token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
