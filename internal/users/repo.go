package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// Repository exposes user and profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user together with its profile row; both rows commit
// or roll back together.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	role := dto.Role
	if !role.IsValid() {
		role = enums.UserRoleCustomer
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
	}
	profile := &models.UserProfile{
		ID:        uuid.New(),
		UserID:    user.ID,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phone:     dto.Phone,
		Role:      role,
		Status:    enums.AccountStatusActive,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// FindByEmail retrieves the user (with profile) matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&user).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user (with profile) by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&user, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).
		Error
}

// UpdatePasswordHash overwrites the stored credential.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).
		Error
}

// SaveProfile upserts the profile row keyed by user_id.
func (r *Repository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateProfile applies column updates to an existing profile row.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(updates).
		Error
}

// ListInput filters the admin user listing.
type ListInput struct {
	Query      string
	Role       *enums.UserRole
	Status     *enums.AccountStatus
	Pagination pagination.Params
}

// ListResult pairs a page of users with its pagination metadata.
type ListResult struct {
	Users []models.User
	Meta  pagination.Meta
}

// AdminList returns users (with profiles) newest first, filtered by role,
// account status, and a free-text email match.
func (r *Repository) AdminList(ctx context.Context, input ListInput) (*ListResult, error) {
	params := pagination.Normalize(input.Pagination)

	qb := r.db.WithContext(ctx).Model(&models.User{})
	if query := strings.TrimSpace(input.Query); query != "" {
		qb = qb.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if input.Role != nil || input.Status != nil {
		sub := r.db.Model(&models.UserProfile{}).Select("user_id")
		if input.Role != nil {
			sub = sub.Where("role = ?", *input.Role)
		}
		if input.Status != nil {
			sub = sub.Where("status = ?", *input.Status)
		}
		qb = qb.Where("id IN (?)", sub)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.User
	err := qb.
		Preload("Profile").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	return &ListResult{Users: rows, Meta: pagination.NewMeta(params, total)}, nil
}
