package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'bank_transfer',
  subtotal_cents INTEGER NOT NULL,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  shipping_address TEXT,
  billing_address TEXT,
  notes TEXT,
  cancel_reason TEXT,
  payment_confirmed_at DATETIME,
  processing_started_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  total_price_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_status_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payment_records (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  method TEXT NOT NULL,
  reference TEXT,
  notes TEXT,
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newOrderService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), db.FromGorm(conn), cart.NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func newOrderUser(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("buyer_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user.ID
}

func newOrderProduct(t *testing.T, conn *gorm.DB, priceCents, stock int, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SKU:           fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:          "Order Product",
		PriceCents:    priceCents,
		StockQuantity: stock,
		Status:        status,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func testShippingAddress() types.Address {
	return types.Address{
		Name:       "Sam Buyer",
		Phone:      "081234567890",
		Province:   "West Java",
		City:       "Bandung",
		District:   "Coblong",
		Line:       "Jl. Dago 12",
		PostalCode: "40135",
	}
}

func productStock(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", id).Error)
	return product.StockQuantity
}

func TestServiceCreateOrderHappyPath(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	ctx := context.Background()

	userID := newOrderUser(t, conn)
	cheap := newOrderProduct(t, conn, 500, 10, enums.ProductStatusActive)
	pricey := newOrderProduct(t, conn, 2500, 4, enums.ProductStatusActive)

	order, err := svc.Create(ctx, CreateInput{
		UserID: userID,
		Items: []ItemInput{
			{ProductID: cheap.ID, Quantity: 2},
			{ProductID: pricey.ID, Quantity: 1},
			// duplicate line merges with the first
			{ProductID: cheap.ID, Quantity: 1},
		},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enums.PaymentMethodBankTransfer, order.PaymentMethod)
	assert.Equal(t, 3*500+2500, order.SubtotalCents)
	assert.Equal(t, order.SubtotalCents+order.TaxCents+order.ShippingCents-order.DiscountCents, order.TotalCents)

	require.Len(t, order.Items, 2)
	byProduct := map[uuid.UUID]models.OrderItem{}
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	assert.Equal(t, 3, byProduct[cheap.ID].Quantity)
	assert.Equal(t, cheap.SKU, byProduct[cheap.ID].ProductSKU)
	assert.Equal(t, 3*500, byProduct[cheap.ID].TotalPriceCents)
	assert.Equal(t, 1, byProduct[pricey.ID].Quantity)

	assert.Equal(t, 7, productStock(t, conn, cheap.ID))
	assert.Equal(t, 3, productStock(t, conn, pricey.ID))

	// billing falls back to shipping when omitted
	require.NotNil(t, order.BillingAddress)
	assert.Equal(t, "Bandung", order.BillingAddress.City)
}

func TestServiceCreateInsufficientStockRollsBack(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	ctx := context.Background()

	userID := newOrderUser(t, conn)
	plenty := newOrderProduct(t, conn, 1000, 10, enums.ProductStatusActive)
	scarce := newOrderProduct(t, conn, 2000, 1, enums.ProductStatusActive)

	_, err := svc.Create(ctx, CreateInput{
		UserID: userID,
		Items: []ItemInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
		ShippingAddress: testShippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, scarce.Name, details["product_name"])

	// the whole transaction rolled back: no rows, stock untouched
	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, 10, productStock(t, conn, plenty.ID))
	assert.Equal(t, 1, productStock(t, conn, scarce.ID))
}

func TestServiceCreateClearsCartInSameTransaction(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	ctx := context.Background()

	userID := newOrderUser(t, conn)
	product := newOrderProduct(t, conn, 1500, 5, enums.ProductStatusActive)

	cartRepo := cart.NewRepository(conn)
	_, err := cartRepo.Create(ctx, &models.CartItem{
		UserID:         userID,
		ProductID:      product.ID,
		Quantity:       2,
		UnitPriceCents: product.PriceCents,
	})
	require.NoError(t, err)

	// a failed placement rolls back and leaves the cart intact
	_, err = svc.Create(ctx, CreateInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 99}},
		ShippingAddress: testShippingAddress(),
	})
	require.Error(t, err)
	rows, err := cartRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Create(ctx, CreateInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	rows, err = cartRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceCreateRejectsUnknownProduct(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	userID := newOrderUser(t, conn)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductNotFound, typed.Code())
}

func TestServiceCreateRejectsInactiveProduct(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	userID := newOrderUser(t, conn)
	product := newOrderProduct(t, conn, 1000, 5, enums.ProductStatusArchived)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductNotFound, typed.Code())
}

func TestServiceCreateValidatesShippingAddress(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	userID := newOrderUser(t, conn)
	product := newOrderProduct(t, conn, 1000, 5, enums.ProductStatusActive)

	addr := testShippingAddress()
	addr.Phone = ""
	addr.PostalCode = " "

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:          userID,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: addr,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidAddress, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"phone", "postal_code"}, details["missing"])
}

func TestServiceCreateRejectsEmptyItems(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:          newOrderUser(t, conn),
		ShippingAddress: testShippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidItems, typed.Code())
}

func TestServiceGetEnforcesOwnership(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	ctx := context.Background()

	owner := newOrderUser(t, conn)
	stranger := newOrderUser(t, conn)
	product := newOrderProduct(t, conn, 1000, 5, enums.ProductStatusActive)

	order, err := svc.Create(ctx, CreateInput{
		UserID:          owner,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, order.ID, stranger, false)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// admins see everything
	got, err := svc.Get(ctx, order.ID, stranger, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestServiceListByUserFiltersAndCounts(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	ctx := context.Background()

	buyer := newOrderUser(t, conn)
	other := newOrderUser(t, conn)
	product := newOrderProduct(t, conn, 1000, 50, enums.ProductStatusActive)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateInput{
			UserID:          buyer,
			Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: testShippingAddress(),
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateInput{
		UserID:          other,
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	require.NoError(t, err)

	result, err := svc.List(ctx, ListInput{UserID: buyer})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 3)
	assert.Equal(t, int64(3), result.Meta.Total)

	pending := enums.OrderStatusPending
	adminResult, err := svc.AdminList(ctx, AdminListInput{Status: &pending, UserID: &buyer})
	require.NoError(t, err)
	assert.Equal(t, int64(3), adminResult.Meta.Total)

	otherResult, err := svc.AdminList(ctx, AdminListInput{UserID: &other})
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherResult.Meta.Total)
}
