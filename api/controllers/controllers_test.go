package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/internal/catalog"
	"github.com/oakmart/storefront-backend/internal/orders"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

type stubCatalogService struct {
	catalog.Service
	lastList  catalog.ListProductsInput
	product   *models.Product
	listError error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	s.lastList = input
	if s.listError != nil {
		return nil, s.listError
	}
	return &catalog.ProductListResult{
		Products: []models.Product{},
		Meta:     pagination.NewMeta(input.Pagination, 0),
	}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
	}
	return s.product, nil
}

type stubOrderService struct {
	orders.Service
	created   *orders.CreateInput
	cancelled *orders.CancelInput
	notes     *string
}

func (s *stubOrderService) Create(ctx context.Context, input orders.CreateInput) (*models.Order, error) {
	s.created = &input
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20250601-ABC123",
		UserID:      input.UserID,
		Status:      enums.OrderStatusPending,
	}, nil
}

func (s *stubOrderService) Cancel(ctx context.Context, input orders.CancelInput) (*models.Order, error) {
	s.cancelled = &input
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusCancelled}, nil
}

func (s *stubOrderService) UpdateNotes(ctx context.Context, orderID, userID uuid.UUID, notes string) (*models.Order, error) {
	s.notes = &notes
	return &models.Order{ID: orderID, Notes: &notes}, nil
}

func routeWithParam(handler http.HandlerFunc, method, pattern, path string, body []byte) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCatalogListRejectsUnknownSort(t *testing.T) {
	svc := &stubCatalogService{}
	ctrl := NewCatalogController(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products?sort=stock", nil)
	rec := httptest.NewRecorder()
	ctrl.ListProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogListParsesFilters(t *testing.T) {
	svc := &stubCatalogService{}
	ctrl := NewCatalogController(svc, nil)

	categoryID := uuid.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/products?category_id="+categoryID.String()+"&price_min=1000&price_max=5000&q=usb&sort=price&order=asc&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	ctrl.ListProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastList.Filters.CategoryID)
	assert.Equal(t, categoryID, *svc.lastList.Filters.CategoryID)
	require.NotNil(t, svc.lastList.Filters.PriceMinCents)
	assert.Equal(t, 1000, *svc.lastList.Filters.PriceMinCents)
	assert.Equal(t, "usb", svc.lastList.Filters.Query)
	assert.Equal(t, catalog.SortPrice, svc.lastList.SortBy)
	assert.False(t, svc.lastList.SortDesc)
	assert.Equal(t, 2, svc.lastList.Pagination.Page)
	assert.Equal(t, 10, svc.lastList.Pagination.Limit)
	assert.False(t, svc.lastList.AllStatuses)
}

func TestCatalogListRejectsInvertedPriceRange(t *testing.T) {
	ctrl := NewCatalogController(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products?price_min=5000&price_max=100", nil)
	rec := httptest.NewRecorder()
	ctrl.ListProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogGetProductByID(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "USB-C Cable", SKU: "SKU-1"}
	ctrl := NewCatalogController(&stubCatalogService{product: product}, nil)

	rec := routeWithParam(ctrl.GetProduct, http.MethodGet, "/api/products/{id}",
		"/api/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = routeWithParam(ctrl.GetProduct, http.MethodGet, "/api/products/{id}",
		"/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = routeWithParam(ctrl.GetProduct, http.MethodGet, "/api/products/{id}",
		"/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersCreateWithoutPaymentMethod(t *testing.T) {
	svc := &stubOrderService{}
	ctrl := NewOrdersController(svc, nil)

	body := []byte(`{
		"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],
		"shipping_address":{
			"name":"Sam Buyer","phone":"081234567890","province":"West Java",
			"city":"Bandung","district":"Coblong","line":"Jl. Dago 12","postal_code":"40135"
		}
	}`)
	rec := routeWithParam(ctrl.Create, http.MethodPost, "/api/orders", "/api/orders", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.created)
	// empty method is passed through; the service resolves the default
	assert.Empty(t, svc.created.PaymentMethod)
}

func TestOrdersCreateRejectsIncompleteAddress(t *testing.T) {
	svc := &stubOrderService{}
	ctrl := NewOrdersController(svc, nil)

	body := []byte(`{
		"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],
		"shipping_address":{
			"name":"Sam Buyer","phone":"081234567890","province":"West Java",
			"city":"Bandung","line":"Jl. Dago 12","postal_code":"40135"
		}
	}`)
	rec := routeWithParam(ctrl.Create, http.MethodPost, "/api/orders", "/api/orders", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.created)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields map[string]string `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Details.Fields, "district")
}

func TestOrdersPatchCancel(t *testing.T) {
	svc := &stubOrderService{}
	ctrl := NewOrdersController(svc, nil)
	orderID := uuid.New()

	body := []byte(`{"action":"cancel","reason":"ordered by mistake"}`)
	rec := routeWithParam(ctrl.Patch, http.MethodPatch, "/api/orders/{id}",
		"/api/orders/"+orderID.String(), body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.cancelled)
	assert.Equal(t, orderID, svc.cancelled.OrderID)
	require.NotNil(t, svc.cancelled.Reason)
	assert.Equal(t, "ordered by mistake", *svc.cancelled.Reason)
}

func TestOrdersPatchNotes(t *testing.T) {
	svc := &stubOrderService{}
	ctrl := NewOrdersController(svc, nil)
	orderID := uuid.New()

	rec := routeWithParam(ctrl.Patch, http.MethodPatch, "/api/orders/{id}",
		"/api/orders/"+orderID.String(), []byte(`{"notes":"leave at the door"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.notes)
	assert.Equal(t, "leave at the door", *svc.notes)
	assert.Nil(t, svc.cancelled)
}

func TestOrdersPatchEmptyBodyRejected(t *testing.T) {
	ctrl := NewOrdersController(&stubOrderService{}, nil)

	rec := routeWithParam(ctrl.Patch, http.MethodPatch, "/api/orders/{id}",
		"/api/orders/"+uuid.NewString(), []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
