package controllers

import (
	"net/http"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// ProfileController serves the signed-in user's own profile.
type ProfileController struct {
	service users.Service
	log     *logger.Logger
}

// NewProfileController wires the users service into the profile endpoints.
func NewProfileController(service users.Service, log *logger.Logger) *ProfileController {
	return &ProfileController{service: service, log: log}
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Get returns the caller's profile.
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, user, "")
}

// Update applies a partial profile update.
func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	updated, err := c.service.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), users.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, updated, "profile updated")
}
