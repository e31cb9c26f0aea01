package controllers

import (
	"net/http"
	"strings"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// AdminUsersController manages accounts from the admin surface.
type AdminUsersController struct {
	service users.Service
	log     *logger.Logger
}

// NewAdminUsersController wires the users service into the admin endpoints.
func NewAdminUsersController(service users.Service, log *logger.Logger) *AdminUsersController {
	return &AdminUsersController{service: service, log: log}
}

type updateUserRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// List returns accounts filtered by role, status, and email search.
func (c *AdminUsersController) List(w http.ResponseWriter, r *http.Request) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := users.ListInput{
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		Pagination: params,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := enums.ParseUserRole(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown role"))
			return
		}
		input.Role = &role
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseAccountStatus(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown account status"))
			return
		}
		input.Status = &status
	}

	result, err := c.service.AdminList(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	dtos := make([]*users.UserDTO, 0, len(result.Users))
	for i := range result.Users {
		dtos = append(dtos, users.FromModel(&result.Users[i]))
	}
	responses.WriteSuccess(w, map[string]any{
		"users": dtos,
		"meta":  result.Meta,
	}, "")
}

// Update changes an account's role and/or status.
func (c *AdminUsersController) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	var req updateUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := users.UpdateRoleStatusInput{UserID: userID}
	if req.Role != nil {
		role, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown role"))
			return
		}
		input.Role = &role
	}
	if req.Status != nil {
		status, err := enums.ParseAccountStatus(*req.Status)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown account status"))
			return
		}
		input.Status = &status
	}

	updated, err := c.service.UpdateRoleStatus(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, updated, "user updated")
}
