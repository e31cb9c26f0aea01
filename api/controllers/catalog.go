package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/catalog"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// CatalogController serves the public product browse surface.
type CatalogController struct {
	service catalog.Service
	log     *logger.Logger
}

// NewCatalogController wires the catalog service into the public endpoints.
func NewCatalogController(service catalog.Service, log *logger.Logger) *CatalogController {
	return &CatalogController{service: service, log: log}
}

// ListProducts returns a filtered, paginated page of active products.
func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	input, err := parseProductListInput(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
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

// GetProduct returns one active product by ID.
func (c *CatalogController) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	product, err := c.service.GetProduct(r.Context(), id, false)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, product, "")
}

// ListCategories returns every category.
func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.ListCategories(r.Context())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, rows, "")
}

// ListBrands returns every brand.
func (c *CatalogController) ListBrands(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.ListBrands(r.Context())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, rows, "")
}

func parseProductListInput(r *http.Request) (*catalog.ListProductsInput, error) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		return nil, err
	}

	input := catalog.ListProductsInput{Pagination: params}
	query := r.URL.Query()

	if categoryID, err := validators.ParseQueryUUID(r, "category_id"); err != nil {
		return nil, err
	} else if categoryID != nil {
		input.Filters.CategoryID = categoryID
	}
	if brandID, err := validators.ParseQueryUUID(r, "brand_id"); err != nil {
		return nil, err
	} else if brandID != nil {
		input.Filters.BrandID = brandID
	}

	if query.Get("price_min") != "" {
		priceMin, err := validators.ParseQueryInt(r, "price_min", 0, 0, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		input.Filters.PriceMinCents = &priceMin
	}
	if query.Get("price_max") != "" {
		priceMax, err := validators.ParseQueryInt(r, "price_max", 0, 0, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		input.Filters.PriceMaxCents = &priceMax
	}
	if input.Filters.PriceMinCents != nil && input.Filters.PriceMaxCents != nil &&
		*input.Filters.PriceMinCents > *input.Filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min cannot exceed price_max")
	}

	input.Filters.Query = strings.TrimSpace(query.Get("q"))

	switch sort := query.Get("sort"); sort {
	case "", catalog.SortCreatedAt:
		input.SortBy = catalog.SortCreatedAt
	case catalog.SortPrice, catalog.SortName:
		input.SortBy = sort
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort must be one of: created_at, price, name")
	}

	switch order := query.Get("order"); order {
	case "", "desc":
		input.SortDesc = true
	case "asc":
		input.SortDesc = false
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must be asc or desc")
	}

	return &input, nil
}
