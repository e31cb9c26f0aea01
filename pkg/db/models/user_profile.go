package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// UserProfile carries the display and authorization fields joined onto a User.
// A missing profile row is tolerated and treated as a fresh customer.
type UserProfile struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName string              `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string              `gorm:"column:last_name;not null" json:"last_name"`
	Phone     *string             `gorm:"column:phone" json:"phone,omitempty"`
	AvatarURL *string             `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Role      enums.UserRole      `gorm:"column:role;not null;default:'customer'" json:"role"`
	Status    enums.AccountStatus `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
