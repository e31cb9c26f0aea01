package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// Order is the order header. Monetary fields are integer cents; the total is
// fixed at creation time and never recomputed.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber         string              `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Status              enums.OrderStatus   `gorm:"column:status;not null;default:'pending'" json:"status"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'" json:"payment_status"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;not null;default:'bank_transfer'" json:"payment_method"`
	SubtotalCents       int                 `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	TaxCents            int                 `gorm:"column:tax_cents;not null;default:0" json:"tax_cents"`
	ShippingCents       int                 `gorm:"column:shipping_cents;not null;default:0" json:"shipping_cents"`
	DiscountCents       int                 `gorm:"column:discount_cents;not null;default:0" json:"discount_cents"`
	TotalCents          int                 `gorm:"column:total_cents;not null" json:"total_cents"`
	ShippingAddress     types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shipping_address"`
	BillingAddress      *types.Address      `gorm:"column:billing_address;type:jsonb;serializer:json" json:"billing_address,omitempty"`
	Notes               *string             `gorm:"column:notes" json:"notes,omitempty"`
	CancelReason        *string             `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	PaymentConfirmedAt  *time.Time          `gorm:"column:payment_confirmed_at" json:"payment_confirmed_at,omitempty"`
	ProcessingStartedAt *time.Time          `gorm:"column:processing_started_at" json:"processing_started_at,omitempty"`
	ShippedAt           *time.Time          `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt         *time.Time          `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt         *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusLogs          []OrderStatusLog    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_logs,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
