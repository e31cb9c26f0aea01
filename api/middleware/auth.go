package middleware

import (
	"net/http"
	"strings"

	"github.com/oakmart/storefront-backend/api/responses"
	pkgauth "github.com/oakmart/storefront-backend/pkg/auth"
	"github.com/oakmart/storefront-backend/pkg/auth/session"
	"github.com/oakmart/storefront-backend/pkg/config"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// Auth validates the bearer token, confirms the session is still live in
// Redis, and seeds the request context with the caller's identity.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				responses.WriteError(w, r, log, err)
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(w, r, log,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(w, r, log,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if verifier != nil {
				alive, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(w, r, log,
						pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session"))
					return
				}
				if !alive {
					responses.WriteError(w, r, log,
						pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked"))
					return
				}
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithRole(ctx, claims.Role)
			ctx = WithAccessID(ctx, claims.ID)
			if log != nil {
				ctx = log.WithUserID(ctx, claims.UserID.String())
				ctx = log.WithActorRole(ctx, string(claims.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header must be a bearer token")
	}
	return parts[1], nil
}
