package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// Product represents a storefront listing.
type Product struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU                string              `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name               string              `gorm:"column:name;not null" json:"name"`
	Description        *string             `gorm:"column:description" json:"description,omitempty"`
	CategoryID         *uuid.UUID          `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	BrandID            *uuid.UUID          `gorm:"column:brand_id;type:uuid" json:"brand_id,omitempty"`
	PriceCents         int                 `gorm:"column:price_cents;not null" json:"price_cents"`
	OriginalPriceCents *int                `gorm:"column:original_price_cents" json:"original_price_cents,omitempty"`
	StockQuantity      int                 `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	Status             enums.ProductStatus `gorm:"column:status;not null;default:'draft'" json:"status"`
	ImageURLs          pq.StringArray      `gorm:"column:image_urls;type:text[]" json:"image_urls"`
	Tags               pq.StringArray      `gorm:"column:tags;type:text[]" json:"tags"`
	Category           *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand              *Brand              `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
