package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category_id TEXT,
  brand_id TEXT,
  price_cents INTEGER NOT NULL,
  original_price_cents INTEGER,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'draft',
  image_urls TEXT,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, conn.Exec(users).Error)
	require.NoError(t, conn.Exec(products).Error)
	require.NoError(t, conn.Exec(cartItems).Error)
	return conn
}

type gormProductLoader struct {
	db *gorm.DB
}

func (l gormProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func newCartService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), gormProductLoader{db: conn}, db.FromGorm(conn), nil)
	require.NoError(t, err)
	return svc
}

func newCartUser(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("cart_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user.ID
}

func newCartProduct(t *testing.T, conn *gorm.DB, priceCents, stock int, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SKU:           fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:          "Cart Product",
		PriceCents:    priceCents,
		StockQuantity: stock,
		Status:        status,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestServiceAddItemMergesQuantities(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	userID := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1500, 10, enums.ProductStatusActive)

	first, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 2, first.Items[0].Quantity)

	second, err := svc.AddItem(ctx, userID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 5, second.Items[0].Quantity)
	assert.Equal(t, 5*1500, second.SubtotalCents)

	var count int64
	require.NoError(t, conn.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestServiceAddItemRejectsInsufficientStock(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	userID := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1000, 3, enums.ProductStatusActive)

	_, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	// 2 already in the cart; 2 more would exceed the 3 in stock
	_, err = svc.AddItem(ctx, userID, product.ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
}

func TestServiceAddItemRejectsInactiveProduct(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)

	userID := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1000, 5, enums.ProductStatusDraft)

	_, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductNotFound, typed.Code())
}

func TestServiceUpdateItemZeroRemoves(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	userID := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1000, 5, enums.ProductStatusActive)

	view, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	after, err := svc.UpdateItem(ctx, userID, view.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
}

func TestServiceUpdateItemForeignItemHidden(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	owner := newCartUser(t, conn)
	other := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1000, 5, enums.ProductStatusActive)

	view, err := svc.AddItem(ctx, owner, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, other, view.Items[0].ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceGetRecomputesTotals(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	userID := newCartUser(t, conn)
	cheap := newCartProduct(t, conn, 500, 10, enums.ProductStatusActive)
	pricey := newCartProduct(t, conn, 2500, 10, enums.ProductStatusActive)

	_, err := svc.AddItem(ctx, userID, cheap.ID, 4)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, pricey.ID, 1)
	require.NoError(t, err)

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalQuantity)
	assert.Equal(t, 4*500+2500, view.SubtotalCents)
}

func TestServiceClearEmptiesCart(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	userID := newCartUser(t, conn)
	product := newCartProduct(t, conn, 1000, 5, enums.ProductStatusActive)

	_, err := svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, userID))

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
