package catalog

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// Sort keys accepted by the product list endpoints.
const (
	SortCreatedAt = "created_at"
	SortPrice     = "price"
	SortName      = "name"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	CategoryID    *uuid.UUID           `json:"category_id,omitempty"`
	BrandID       *uuid.UUID           `json:"brand_id,omitempty"`
	PriceMinCents *int                 `json:"price_min_cents,omitempty"`
	PriceMaxCents *int                 `json:"price_max_cents,omitempty"`
	Status        *enums.ProductStatus `json:"status,omitempty"`
	Query         string               `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter/sort products.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
	SortBy     string
	SortDesc   bool
	// AllStatuses is set on admin listings; public listings only see active rows.
	AllStatuses bool
}
