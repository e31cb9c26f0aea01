package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/security"
)

const invalidResetTokenMessage = "reset token is invalid or expired"

type resetStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PasswordResetKey(token string) string
}

// ForgotPassword issues a single-use reset token. The response is identical
// whether or not the email exists, so the endpoint cannot be used to probe
// for accounts. Delivery is out of scope; the token is logged for the
// operator to relay.
func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if s.resets == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "password reset is not configured")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}

	ttl := s.passwordCfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if err := s.resets.Set(ctx, s.resets.PasswordResetKey(token), user.ID.String(), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	logCtx := s.log.WithFields(ctx, map[string]any{
		"user_id":     user.ID.String(),
		"reset_token": token,
	})
	s.log.Info(logCtx, "password reset token issued")
	return nil
}

// ResetPassword consumes the token and replaces the credential.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if s.resets == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "password reset is not configured")
	}
	if strings.TrimSpace(req.Token) == "" || strings.TrimSpace(req.NewPassword) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token and new password are required")
	}

	key := s.resets.PasswordResetKey(req.Token)
	stored, err := s.resets.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reset token")
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	// Single use: the token dies with the first successful reset.
	if err := s.resets.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume reset token")
	}
	return nil
}
