package controllers

import (
	"net/http"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/auth"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// AuthController handles registration, login, token rotation, and the
// password reset flow.
type AuthController struct {
	service auth.Service
	log     *logger.Logger
}

// NewAuthController wires the auth service into HTTP handlers.
func NewAuthController(service auth.Service, log *logger.Logger) *AuthController {
	return &AuthController{service: service, log: log}
}

// Register creates an account and returns the new user.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	user, err := c.service.Register(r.Context(), req)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, user, "account created")
}

// Login verifies credentials and issues a token pair.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	resp, err := c.service.Login(r.Context(), req)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, resp, "")
}

// Logout revokes the caller's session.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	accessID := middleware.AccessIDFromContext(r.Context())
	if accessID == "" {
		responses.WriteError(w, r, c.log,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := c.service.Logout(r.Context(), accessID); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, nil, "logged out")
}

// Refresh rotates a refresh token and mints a fresh access token.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	resp, err := c.service.Refresh(r.Context(), req)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, resp, "")
}

// ForgotPassword issues a reset token. The response is identical whether the
// email exists or not.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	if err := c.service.ForgotPassword(r.Context(), req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, nil, "if the account exists, a reset link has been sent")
}

// ResetPassword consumes a reset token and sets a new password.
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	if err := c.service.ResetPassword(r.Context(), req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, nil, "password updated")
}
