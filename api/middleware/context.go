package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "role"
	ctxAccessID contextKey = "access_id"
)

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext returns the authenticated user's ID, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithRole stores the authenticated user's role on the context.
func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// RoleFromContext returns the authenticated user's role, or "".
func RoleFromContext(ctx context.Context) enums.UserRole {
	if role, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return role
	}
	return ""
}

// WithAccessID stores the access token's JTI on the context. Logout uses it
// to revoke the matching session.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// AccessIDFromContext returns the access token's JTI, or "".
func AccessIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxAccessID).(string); ok {
		return id
	}
	return ""
}
