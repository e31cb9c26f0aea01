package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// UpdateProfileInput carries partial profile updates; nil fields are left as-is.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}

// UpdateRoleStatusInput is the admin-side account mutation.
type UpdateRoleStatusInput struct {
	UserID uuid.UUID
	Role   *enums.UserRole
	Status *enums.AccountStatus
}

// Service exposes profile reads/writes and admin account management.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	AdminList(ctx context.Context, input ListInput) (*ListResult, error)
	UpdateRoleStatus(ctx context.Context, input UpdateRoleStatusInput) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds the users service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A user created before profiles existed gets one on first write.
	profile := user.Profile
	if profile == nil {
		profile = &models.UserProfile{
			UserID: userID,
			Role:   enums.UserRoleCustomer,
			Status: enums.AccountStatusActive,
		}
	}

	if input.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		profile.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		profile.Phone = input.Phone
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = input.AvatarURL
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	user.Profile = profile
	return FromModel(user), nil
}

func (s *service) AdminList(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	result, err := s.repo.AdminList(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return result, nil
}

func (s *service) UpdateRoleStatus(ctx context.Context, input UpdateRoleStatusInput) (*UserDTO, error) {
	if input.Role == nil && input.Status == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account status")
	}

	user, err := s.load(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	profile := user.Profile
	if profile == nil {
		profile = &models.UserProfile{
			UserID: input.UserID,
			Role:   enums.UserRoleCustomer,
			Status: enums.AccountStatusActive,
		}
	}
	if input.Role != nil {
		profile.Role = *input.Role
	}
	if input.Status != nil {
		profile.Status = *input.Status
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	user.Profile = profile
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
