package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// PaymentRecord tracks money movements against an order. Refunds are recorded
// as negative amounts.
type PaymentRecord struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	AmountCents int                 `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Method      enums.PaymentMethod `gorm:"column:method;not null" json:"method"`
	Reference   *string             `gorm:"column:reference" json:"reference,omitempty"`
	Notes       *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
