package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a product at the moment of order creation. Rows are
// immutable after insert.
type OrderItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName     string    `gorm:"column:product_name;not null" json:"product_name"`
	ProductSKU      string    `gorm:"column:product_sku;not null" json:"product_sku"`
	UnitPriceCents  int       `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity        int       `gorm:"column:quantity;not null" json:"quantity"`
	TotalPriceCents int       `gorm:"column:total_price_cents;not null" json:"total_price_cents"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
