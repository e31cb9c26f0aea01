package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// OrderStatusLog is the append-only audit trail of status transitions.
type OrderStatusLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	FromStatus enums.OrderStatus `gorm:"column:from_status;not null" json:"from_status"`
	ToStatus   enums.OrderStatus `gorm:"column:to_status;not null" json:"to_status"`
	ActorID    uuid.UUID         `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	Notes      *string           `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
