package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials. Profile fields are
// flattened; a user without a profile row surfaces as a fresh customer.
type UserDTO struct {
	ID          uuid.UUID           `json:"id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Phone       *string             `json:"phone,omitempty"`
	AvatarURL   *string             `json:"avatar_url,omitempty"`
	Role        enums.UserRole      `json:"role"`
	Status      enums.AccountStatus `json:"status"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreateUserDTO holds the data required to persist a new user and profile.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Role:        enums.UserRoleCustomer,
		Status:      enums.AccountStatusActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Profile != nil {
		dto.FirstName = u.Profile.FirstName
		dto.LastName = u.Profile.LastName
		dto.Phone = u.Profile.Phone
		dto.AvatarURL = u.Profile.AvatarURL
		dto.Role = u.Profile.Role
		dto.Status = u.Profile.Status
	}
	return dto
}
