package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/catalog"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// AdminProductsController manages the catalog from the admin surface.
type AdminProductsController struct {
	service catalog.Service
	log     *logger.Logger
}

// NewAdminProductsController wires the catalog service into the admin endpoints.
func NewAdminProductsController(service catalog.Service, log *logger.Logger) *AdminProductsController {
	return &AdminProductsController{service: service, log: log}
}

type createProductRequest struct {
	SKU                string     `json:"sku" validate:"required,max=64"`
	Name               string     `json:"name" validate:"required,max=255"`
	Description        *string    `json:"description,omitempty"`
	CategoryID         *uuid.UUID `json:"category_id,omitempty"`
	BrandID            *uuid.UUID `json:"brand_id,omitempty"`
	PriceCents         int        `json:"price_cents" validate:"gte=0"`
	OriginalPriceCents *int       `json:"original_price_cents,omitempty" validate:"omitempty,gte=0"`
	StockQuantity      int        `json:"stock_quantity" validate:"gte=0"`
	Status             *string    `json:"status,omitempty"`
	ImageURLs          []string   `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Tags               []string   `json:"tags,omitempty"`
}

type updateProductRequest struct {
	SKU                *string    `json:"sku,omitempty" validate:"omitempty,max=64"`
	Name               *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Description        *string    `json:"description,omitempty"`
	CategoryID         *uuid.UUID `json:"category_id,omitempty"`
	BrandID            *uuid.UUID `json:"brand_id,omitempty"`
	PriceCents         *int       `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	OriginalPriceCents *int       `json:"original_price_cents,omitempty" validate:"omitempty,gte=0"`
	StockQuantity      *int       `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Status             *string    `json:"status,omitempty"`
	ImageURLs          *[]string  `json:"image_urls,omitempty"`
	Tags               *[]string  `json:"tags,omitempty"`
}

// List returns products in every status with admin filters.
func (c *AdminProductsController) List(w http.ResponseWriter, r *http.Request) {
	input, err := parseProductListInput(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	input.AllStatuses = true

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseProductStatus(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown product status"))
			return
		}
		input.Filters.Status = &status
	}

	result, err := c.service.ListProducts(r.Context(), *input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"products": result.Products,
		"meta":     result.Meta,
	}, "")
}

// Get returns one product regardless of status.
func (c *AdminProductsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	product, err := c.service.GetProduct(r.Context(), id, true)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, product, "")
}

// Create inserts a new product; new products default to draft status.
func (c *AdminProductsController) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := catalog.CreateProductInput{
		SKU:                req.SKU,
		Name:               req.Name,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		BrandID:            req.BrandID,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		StockQuantity:      req.StockQuantity,
		ImageURLs:          req.ImageURLs,
		Tags:               req.Tags,
	}
	if req.Status != nil {
		status, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown product status"))
			return
		}
		input.Status = status
	}

	product, err := c.service.CreateProduct(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, product, "product created")
}

// Update applies a partial product mutation.
func (c *AdminProductsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	var req updateProductRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := catalog.UpdateProductInput{
		SKU:                req.SKU,
		Name:               req.Name,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		BrandID:            req.BrandID,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		StockQuantity:      req.StockQuantity,
		ImageURLs:          req.ImageURLs,
		Tags:               req.Tags,
	}
	if req.Status != nil {
		status, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown product status"))
			return
		}
		input.Status = &status
	}

	product, err := c.service.UpdateProduct(r.Context(), id, input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, product, "product updated")
}

// Delete archives/removes a product.
func (c *AdminProductsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	if err := c.service.DeleteProduct(r.Context(), id); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, nil, "product deleted")
}
